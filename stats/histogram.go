package stats

import "fmt"

// Histogram
//
// 用來快速定位樣本值 -> 計數位置 O(1)
//
// 等寬分桶，外加左右溢出桶：
//   - bin 0:        (-inf, lo)
//   - bin 1..n:     [lo, hi) 均分 n 段
//   - bin n+1:      [hi, +inf)
type Histogram struct {
	lo     float64
	hi     float64
	width  float64
	bins   int
	labels []string
}

// NewHistogram 建立等寬直方圖。lo >= hi 或 bins < 1 視為呼叫端缺陷。
func NewHistogram(lo, hi float64, bins int) (*Histogram, error) {
	if bins < 1 {
		return nil, fmt.Errorf("histogram bins must be >= 1, got %d", bins)
	}
	if lo >= hi {
		return nil, fmt.Errorf("histogram range invalid: lo %v >= hi %v", lo, hi)
	}
	h := &Histogram{
		lo:    lo,
		hi:    hi,
		width: (hi - lo) / float64(bins),
		bins:  bins,
	}
	h.labels = make([]string, bins+2)
	h.labels[0] = fmt.Sprintf("(-inf,%.4g)", lo)
	for i := 0; i < bins; i++ {
		a := lo + float64(i)*h.width
		h.labels[i+1] = fmt.Sprintf("[%.4g,%.4g)", a, a+h.width)
	}
	h.labels[bins+1] = fmt.Sprintf("[%.4g,+inf)", hi)
	return h, nil
}

// Buckets 回傳總桶數（含左右溢出桶）。
func (h *Histogram) Buckets() int {
	return h.bins + 2
}

func (h *Histogram) Labels() []string {
	return append([]string(nil), h.labels...)
}

func (h *Histogram) Lo() float64 { return h.lo }
func (h *Histogram) Hi() float64 { return h.hi }
func (h *Histogram) Bins() int   { return h.bins }

// Index 回傳 x 所屬的桶位置。
func (h *Histogram) Index(x float64) int {
	if x < h.lo {
		return 0
	}
	if x >= h.hi {
		return h.bins + 1
	}
	idx := int((x-h.lo)/h.width) + 1
	// 浮點邊界保護
	if idx > h.bins {
		idx = h.bins
	}
	return idx
}

// Same 檢查兩個直方圖的分桶是否一致（合併前提）。
func (h *Histogram) Same(o *Histogram) bool {
	return h.lo == o.lo && h.hi == o.hi && h.bins == o.bins
}
