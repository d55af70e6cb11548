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

package stats

import (
	"fmt"
	"math"

	"github.com/zintix-labs/distlab/spec"
	"gonum.org/v1/gonum/stat/distuv"
)

// ============================================================
// ** 結構宣告 **
// ============================================================

// ExpectedStat 理論動差
//
// Known 為 false 表示該 kind 沒有（有限的）理論動差可對標，
// 例如 shape <= 1 的 pareto 均值不存在。
type ExpectedStat struct {
	Mean     float64 `json:"Mean"`
	Variance float64 `json:"Variance"`
	Known    bool    `json:"Known"`
}

// Verdict 觀測值對理論值的檢定結果
type Verdict struct {
	Expected ExpectedStat `json:"Expected"`
	MeanZ    float64      `json:"MeanZ"`    // (觀測均值-理論均值)/SE
	MeanOK   bool         `json:"MeanOK"`   // |MeanZ| <= 4
	VarRatio float64      `json:"VarRatio"` // 觀測變異數/理論變異數
}

// ============================================================
// ** 對外 : 理論動差 **
// ============================================================

// Expected 回傳設定檔對應分布的理論均值與變異數。
//
// 連續分布走 gonum/stat/distuv 的閉式解；離散 uniform 用閉式公式。
// gamma 以 shape/rate 參數化對應 distuv.Gamma{Alpha: shape, Beta: rate}，
// lognormal 的 mean/sd 是底層常態的參數。
func Expected(ds *spec.DistSetting) ExpectedStat {
	get := func(k string) float64 { v, _ := ds.Param(k); return v }

	switch ds.Family {
	case spec.FamilyContinuous:
		switch ds.Kind {
		case spec.KindUniform:
			d := distuv.Uniform{Min: get("lower"), Max: get("upper")}
			return known(d.Mean(), d.Variance())
		case spec.KindGaussian:
			d := distuv.Normal{Mu: get("mean"), Sigma: get("sd")}
			return known(d.Mean(), d.Variance())
		case spec.KindLogNormal:
			d := distuv.LogNormal{Mu: get("mean"), Sigma: get("sd")}
			return known(d.Mean(), d.Variance())
		case spec.KindExponential:
			d := distuv.Exponential{Rate: get("rate")}
			return known(d.Mean(), d.Variance())
		case spec.KindPareto:
			d := distuv.Pareto{Xm: get("scale"), Alpha: get("shape")}
			if d.Alpha <= 2 { // 變異數在 alpha <= 2 時發散
				return ExpectedStat{}
			}
			return known(d.Mean(), d.Variance())
		case spec.KindWeibull:
			d := distuv.Weibull{Lambda: get("scale"), K: get("shape")}
			return known(d.Mean(), d.Variance())
		case spec.KindGamma:
			d := distuv.Gamma{Alpha: get("shape"), Beta: get("rate")}
			return known(d.Mean(), d.Variance())
		case spec.KindBeta:
			d := distuv.Beta{Alpha: get("shape1"), Beta: get("shape2")}
			return known(d.Mean(), d.Variance())
		}
	case spec.FamilyDiscrete:
		switch ds.Kind {
		case spec.KindBernoulli:
			d := distuv.Bernoulli{P: get("prob")}
			return known(d.Mean(), d.Variance())
		case spec.KindBinomial:
			d := distuv.Binomial{N: get("trials"), P: get("prob")}
			return known(d.Mean(), d.Variance())
		case spec.KindGeometric:
			p := get("prob")
			if p <= 0 {
				return ExpectedStat{}
			}
			// 失敗次數版本（support 0,1,2,...）
			return known((1-p)/p, (1-p)/(p*p))
		case spec.KindPoisson:
			d := distuv.Poisson{Lambda: get("freq")}
			return known(d.Mean(), d.Variance())
		case spec.KindUniform:
			a, b := float64(ds.Outcome.Min), float64(ds.Outcome.Max)
			span := b - a + 1
			return known((a+b)/2, (span*span-1)/12)
		}
	}
	return ExpectedStat{}
}

// Check 以理論動差對觀測報告做粗檢（均值 z 分數與變異數比值）。
func (s *MomentReport) Check(ds *spec.DistSetting) *Verdict {
	s.Done()
	exp := Expected(ds)
	v := &Verdict{Expected: exp}
	if !exp.Known || s.Summary.Draws < 2 {
		return v
	}
	se := math.Sqrt(exp.Variance / float64(s.Summary.Draws))
	if se > 0 {
		v.MeanZ = (s.Summary.Mean - exp.Mean) / se
	}
	v.MeanOK = math.Abs(v.MeanZ) <= 4
	if exp.Variance > 0 {
		v.VarRatio = s.Moments.Variance / exp.Variance
	}
	return v
}

func known(mean, variance float64) ExpectedStat {
	return ExpectedStat{Mean: mean, Variance: variance, Known: true}
}

// ============================================================
// ** 內部統計函數 **
// ============================================================

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func ProportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	// Beta PPF 映射，處理邊界
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}

// ============================================================
// ** 輸出函數 **
// ============================================================

func (v *Verdict) Out() {
	keys := []string{"Expected Mean", "Expected Var", "Mean Z", "Mean OK", "Var Ratio"}
	msg := map[string]string{
		"Expected Mean": fmt.Sprintf("%.5f", v.Expected.Mean),
		"Expected Var":  fmt.Sprintf("%.5f", v.Expected.Variance),
		"Mean Z":        fmt.Sprintf("%.3f", v.MeanZ),
		"Mean OK":       fmt.Sprintf("%t", v.MeanOK),
		"Var Ratio":     fmt.Sprintf("%.4f", v.VarRatio),
	}
	if !v.Expected.Known {
		fmt.Println("theoretical moments unavailable for this setting")
		return
	}
	fmt.Println(fmtTable("Moment Check", keys, msg))
}
