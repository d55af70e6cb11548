// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package recorder

import (
	"fmt"
	"math"

	"github.com/zintix-labs/distlab/errs"
	"github.com/zintix-labs/distlab/spec"
	"github.com/zintix-labs/distlab/stats"
)

// DrawRecorder 取樣紀錄員
//
// DrawRecorder 負責紀錄取樣結果，並透過Done輸出統計報表
type DrawRecorder struct {
	DistName string
	DistId   spec.DID
	Family   spec.Family
	Kind     string
	Moments  *MomentRecord
	Hist     *HistRecord
}

// MomentRecord 冪和累積紀錄
//
// 紀錄時只累積冪和與極值，衍生統計量由 Done 一次計算
type MomentRecord struct {
	Draws   int
	Sum     float64
	SqSum   float64 // 平方和
	CubeSum float64 // 立方和
	QuadSum float64 // 四次方和
	Min     float64
	Max     float64
}

// HistRecord 樣本值落點統計
type HistRecord struct {
	Bucket  *stats.Histogram
	Collect []int
}

// NewDrawRecorder 依分布設定建立紀錄員。
// 直方圖範圍由理論動差推得（均值 ±4 標準差）；
// 理論動差不存在時只累積冪和，不做落點統計。
func NewDrawRecorder(ds *spec.DistSetting) (*DrawRecorder, error) {
	if ds == nil {
		return nil, errs.NewFatal("nil dist setting")
	}
	if ds.DistName == "" {
		return nil, errs.NewFatal(fmt.Sprintf("dist_id: %d err:empty dist_name", ds.DistID))
	}

	r := &DrawRecorder{
		DistName: ds.DistName,
		DistId:   ds.DistID,
		Family:   ds.Family,
		Kind:     ds.Kind,
		Moments: &MomentRecord{
			Min: math.Inf(1),
			Max: math.Inf(-1),
		},
	}

	if h := histFor(ds); h != nil {
		r.Hist = &HistRecord{
			Bucket:  h,
			Collect: make([]int, h.Buckets()),
		}
	}

	return r, nil
}

// MergeDrawRecorder 合併多個並行紀錄員的結果（多核模擬用）。
// 所有紀錄員必須出自相同的分布設定。
func MergeDrawRecorder(r []*DrawRecorder) (*DrawRecorder, error) {
	if len(r) == 0 {
		return nil, errs.NewFatal("merge draw record err : empty input")
	}
	r0 := r[0]
	s := &DrawRecorder{
		DistName: r0.DistName,
		DistId:   r0.DistId,
		Family:   r0.Family,
		Kind:     r0.Kind,
		Moments: &MomentRecord{
			Min: math.Inf(1),
			Max: math.Inf(-1),
		},
	}
	if r0.Hist != nil {
		s.Hist = &HistRecord{
			Bucket:  r0.Hist.Bucket,
			Collect: make([]int, len(r0.Hist.Collect)),
		}
	}
	for _, v := range r {
		if v.DistName != r0.DistName || v.DistId != r0.DistId {
			return nil, errs.NewFatal("merge draw record err : different dist")
		}
		if v.Kind != r0.Kind || v.Family != r0.Family {
			return nil, errs.NewFatal("merge draw record err : different kind")
		}
		s.Moments.Draws += v.Moments.Draws
		s.Moments.Sum += v.Moments.Sum
		s.Moments.SqSum += v.Moments.SqSum
		s.Moments.CubeSum += v.Moments.CubeSum
		s.Moments.QuadSum += v.Moments.QuadSum
		if v.Moments.Min < s.Moments.Min {
			s.Moments.Min = v.Moments.Min
		}
		if v.Moments.Max > s.Moments.Max {
			s.Moments.Max = v.Moments.Max
		}

		// 整合Hist
		if s.Hist != nil {
			if v.Hist == nil || !v.Hist.Bucket.Same(s.Hist.Bucket) {
				return nil, errs.NewFatal("merge draw record err : different histogram")
			}
			for i := range v.Hist.Collect {
				s.Hist.Collect[i] += v.Hist.Collect[i]
			}
		}
	}
	return s, nil
}

// Record 以單次取樣結果更新統計
func (r *DrawRecorder) Record(x float64) {
	m := r.Moments
	m.Draws++
	m.Sum += x
	x2 := x * x
	m.SqSum += x2
	m.CubeSum += x2 * x
	m.QuadSum += x2 * x2
	if x < m.Min {
		m.Min = x
	}
	if x > m.Max {
		m.Max = x
	}

	if r.Hist != nil {
		r.Hist.Collect[r.Hist.Bucket.Index(x)]++
	}
}

func (r *DrawRecorder) Done() *stats.MomentReport {
	mn, mx := r.Moments.Min, r.Moments.Max
	if r.Moments.Draws == 0 {
		mn, mx = 0, 0
	}

	report := &stats.MomentReport{
		Summary: &stats.SummaryReport{
			DistName: r.DistName,
			DistId:   r.DistId,
			Family:   r.Family,
			Kind:     r.Kind,
			Draws:    r.Moments.Draws,
			Min:      mn,
			Max:      mx,
		},
		Moments: &stats.MomentsReport{
			Sum:     r.Moments.Sum,
			SqSum:   r.Moments.SqSum,
			CubeSum: r.Moments.CubeSum,
			QuadSum: r.Moments.QuadSum,
		},
	}

	if r.Hist != nil {
		report.Hist = &stats.HistReport{
			Labels: r.Hist.Bucket.Labels(),
			Counts: append([]int(nil), r.Hist.Collect...),
		}
	}

	report.Done()
	return report
}

// histFor 由理論動差推得直方圖範圍。
func histFor(ds *spec.DistSetting) *stats.Histogram {
	// 離散 uniform 直接用 outcome 範圍；過寬時退回動差範圍
	if ds.Family == spec.FamilyDiscrete && ds.Kind == spec.KindUniform {
		span := ds.Outcome.Max - ds.Outcome.Min + 1
		if span > 0 && span <= 4096 {
			h, err := stats.NewHistogram(float64(ds.Outcome.Min), float64(ds.Outcome.Max)+1, int(span))
			if err != nil {
				return nil
			}
			return h
		}
	}

	exp := stats.Expected(ds)
	if !exp.Known {
		return nil
	}
	sd := math.Sqrt(exp.Variance)
	if sd <= 0 {
		return nil
	}
	h, err := stats.NewHistogram(exp.Mean-4*sd, exp.Mean+4*sd, 40)
	if err != nil {
		return nil
	}
	return h
}
