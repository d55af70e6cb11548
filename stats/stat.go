package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/distlab/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// MomentReport 分布取樣統計報告
type MomentReport struct {
	Summary *SummaryReport `json:"Summary"`
	Moments *MomentsReport `json:"Moments"`
	Hist    *HistReport    `json:"Hist,omitzero"`
	isDone  bool
}

type SummaryReport struct {
	DistName string      `json:"DistName"`
	DistId   spec.DID    `json:"DistId"`
	Family   spec.Family `json:"Family"`
	Kind     string      `json:"Kind"`
	Draws    int         `json:"Draws"`
	Mean     float64     `json:"Mean"`
	MeanCI   CI          `json:"MeanCI"`
	Std      float64     `json:"Std"`
	Cv       float64     `json:"Cv"`
	Min      float64     `json:"Min"`
	Max      float64     `json:"Max"`
}

// MomentsReport 動差統計
//
// 紀錄時只累積冪和，避免逐筆計算成本。紀錄完成後 Done() 會將結果整理填入
type MomentsReport struct {
	Sum        float64 `json:"Sum"`
	SqSum      float64 `json:"SqSum"`      // 平方和
	CubeSum    float64 `json:"CubeSum"`    // 立方和
	QuadSum    float64 `json:"QuadSum"`    // 四次方和
	Mean       float64 `json:"Mean"`
	Variance   float64 `json:"Variance"`
	Std        float64 `json:"Std"`
	Skew       float64 `json:"Skew"`
	ExKurtosis float64 `json:"ExKurtosis"`
}

// HistReport 樣本值落點統計
type HistReport struct {
	Labels  []string  `json:"Labels"`
	Counts  []int     `json:"Counts"`
	Density []float64 `json:"Density"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將累積冪和轉換為最終統計結果並鎖定 isDone 標記。
//
// 取樣過程因為性能原因只累積冪和與極值，統計完成後
//
// 請使用 Done 一次性計算所有衍生統計量
func (s *MomentReport) Done() {
	if s.isDone {
		return
	}
	// Moments
	s.Moments.Mean = s.Mean()
	s.Moments.Variance = s.Variance()
	s.Moments.Std = s.Std()
	s.Moments.Skew = s.Skew()
	s.Moments.ExKurtosis = s.ExKurtosis()

	// Summary
	s.Summary.Mean = s.Moments.Mean
	s.Summary.MeanCI = s.Ci()
	s.Summary.Std = s.Moments.Std
	s.Summary.Cv = s.Cv()

	// Hist
	if s.Hist != nil && s.Summary.Draws > 0 {
		d := make([]float64, len(s.Hist.Counts))
		n := float64(s.Summary.Draws)
		for i, c := range s.Hist.Counts {
			d[i] = float64(c) / n
		}
		s.Hist.Density = d
	}

	s.isDone = true
}

// Mean 回傳樣本均值
func (s *MomentReport) Mean() float64 {
	if s.Summary.Draws == 0 {
		return 0
	}
	return s.Moments.Sum / float64(s.Summary.Draws)
}

// Variance 回傳樣本變異數（無偏估計）
func (s *MomentReport) Variance() float64 {
	n := float64(s.Summary.Draws)
	if s.Summary.Draws < 2 {
		return 0
	}
	mean := s.Mean()
	variance := (s.Moments.SqSum - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return variance
}

// Std 回傳樣本標準差
func (s *MomentReport) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Skew 回傳樣本偏度（動差法）
func (s *MomentReport) Skew() float64 {
	n := float64(s.Summary.Draws)
	if s.Summary.Draws < 2 {
		return 0
	}
	mean := s.Mean()
	m2 := s.Moments.SqSum/n - mean*mean
	if m2 <= 0 {
		return 0
	}
	m3 := s.Moments.CubeSum/n - 3*mean*s.Moments.SqSum/n + 2*mean*mean*mean
	return m3 / math.Pow(m2, 1.5)
}

// ExKurtosis 回傳樣本超額峰度（動差法）
func (s *MomentReport) ExKurtosis() float64 {
	n := float64(s.Summary.Draws)
	if s.Summary.Draws < 2 {
		return 0
	}
	mean := s.Mean()
	m2 := s.Moments.SqSum/n - mean*mean
	if m2 <= 0 {
		return 0
	}
	m4 := s.Moments.QuadSum/n -
		4*mean*s.Moments.CubeSum/n +
		6*mean*mean*s.Moments.SqSum/n -
		3*mean*mean*mean*mean
	return m4/(m2*m2) - 3
}

// Cv 回傳變異係數
func (s *MomentReport) Cv() float64 {
	mean := s.Mean()
	if mean == 0 {
		return 0
	}
	return s.Std() / math.Abs(mean)
}

// Ci 回傳(95% Mean)信賴區間
func (s *MomentReport) Ci() CI {
	mean := s.Mean()
	se := float64(0)
	if s.Summary.Draws > 1 {
		se = s.Std() / math.Sqrt(float64(s.Summary.Draws))
	}
	return CI{
		Lo: mean - 1.96*se,
		Hi: mean + 1.96*se,
	}
}

func (s *MomentReport) WriteWith(w io.Writer, rep MomentReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

func (s *MomentReport) StdOut(ut time.Duration) {
	s.Done()
	formatDuration(ut, s.Summary.Draws)
	sk, sm := s.fmtBasic()
	str := fmtTable(s.Summary.DistName, sk, sm)
	fmt.Println(str)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, draws int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	dps := int(float64(draws) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\ndps : %d draws/sec\n", sec, dps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		s = s % 60
		p.Printf("used: %dm %ds\ndps : %d draws/sec\n", m, s, dps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\ndps : %d draws/sec\n", h, m, s, dps)
}

// StdOut

func (s *MomentReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Dist Name":    p.Sprintf("%s", s.Summary.DistName),
		"Dist ID":      fmt.Sprintf("%d", s.Summary.DistId),
		"Family":       fmt.Sprintf("%s", s.Summary.Family),
		"Kind":         fmt.Sprintf("%s", s.Summary.Kind),
		"Total Draws":  p.Sprintf("%d", s.Summary.Draws),
		"Mean":         p.Sprintf("%.5f", s.Summary.Mean),
		"Mean 95% CI":  p.Sprintf("[%.5f,%.5f]", s.Summary.MeanCI.Lo, s.Summary.MeanCI.Hi),
		"STD":          p.Sprintf("%.5f", s.Summary.Std),
		"CV":           p.Sprintf("%.3f", s.Summary.Cv),
		"Skew":         p.Sprintf("%.4f", s.Moments.Skew),
		"Ex. Kurtosis": p.Sprintf("%.4f", s.Moments.ExKurtosis),
		"Min":          p.Sprintf("%.5f", s.Summary.Min),
		"Max":          p.Sprintf("%.5f", s.Summary.Max),
	}
	keys := []string{"Dist Name", "Dist ID", "Family", "Kind", "Total Draws", "Mean", "Mean 95% CI", "STD", "CV", "Skew", "Ex. Kurtosis", "Min", "Max"}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
