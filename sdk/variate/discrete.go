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

package variate

// DiscKind 標記離散分布的種類。
type DiscKind uint8

const (
	DiscUniform DiscKind = iota + 1
	DiscBernoulli
	DiscBinomial
	DiscGeometric
	DiscPoisson
)

var discKindNames = map[DiscKind]string{
	DiscUniform:   "uniform",
	DiscBernoulli: "bernoulli",
	DiscBinomial:  "binomial",
	DiscGeometric: "geometric",
	DiscPoisson:   "poisson",
}

func (k DiscKind) String() string {
	if s, ok := discKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Discrete 離散分布描述子（immutable tagged variant）。
//
// 結果型別 N 與機率參數型別 P 彼此獨立：
// 常見組合是整數結果 + 浮點機率。
//
// 欄位語意依 Kind 而定，請一律走建構子：
//   - Prob：bernoulli/binomial/geometric 的成功率；poisson 的頻率 λ
//   - Trials：binomial 的試驗次數
//   - Min/Max：uniform 的閉區間
type Discrete[N Count, P Real] struct {
	Kind   DiscKind
	Prob   P
	Trials int
	Min    N
	Max    N
}

// Bernoulli 單次二元試驗。要求 p 在機率型別的 canonical 區間 [0,1]。
func Bernoulli[N Count, P Real](p P) Discrete[N, P] {
	mustProb(p)
	return Discrete[N, P]{Kind: DiscBernoulli, Prob: p}
}

// Binomial n 次獨立 bernoulli(p) 的總和。要求 trials >= 0。
func Binomial[N Count, P Real](trials int, p P) Discrete[N, P] {
	if trials < 0 {
		panic("variate: binomial trials must be non-negative")
	}
	mustProb(p)
	return Discrete[N, P]{Kind: DiscBinomial, Prob: p, Trials: trials}
}

// Geometric 第一次成功前的失敗次數。
// p 趨近 0 時迴圈無上限（呼叫端責任）。
func Geometric[N Count, P Real](p P) Discrete[N, P] {
	mustProb(p)
	return Discrete[N, P]{Kind: DiscGeometric, Prob: p}
}

// Poisson Knuth 遞推。要求 λ > 0。
// λ 極大時 exp(-λ) 往型別的零下溢，精度靜默劣化而非失敗。
func Poisson[N Count, P Real](freq P) Discrete[N, P] {
	if !(freq > 0) {
		panic("variate: poisson frequency must be positive")
	}
	return Discrete[N, P]{Kind: DiscPoisson, Prob: freq}
}

// IntUniform 結果型別自己的閉區間 [min,max] 均勻取樣。
func IntUniform[N Count, P Real](min, max N) Discrete[N, P] {
	if min > max {
		panic("variate: uniform min > max")
	}
	return Discrete[N, P]{Kind: DiscUniform, Min: min, Max: max}
}

func mustProb[P Real](p P) {
	if p < 0 || p > 1 {
		panic("variate: probability out of [0,1]")
	}
}

// DrawDiscrete 依描述子取一個離散變量。
//
// 結果型別多了一個型別參數，Go 的方法不能新增型別參數，
// 所以這層是頂層函數而不是 Source 的方法。
func DrawDiscrete[N Count, P Real](s *Source[P], d Discrete[N, P]) N {
	switch d.Kind {
	case DiscUniform:
		return N(s.c.Int64Range(int64(d.Min), int64(d.Max)))

	case DiscBernoulli:
		return bernoulli[N](s, d.Prob)

	case DiscBinomial:
		var x N
		for i := 0; i < d.Trials; i++ {
			x += bernoulli[N](s, d.Prob)
		}
		return x

	case DiscGeometric:
		// 累計失敗（canonical one 累加），直到第一次成功
		var x N
		for bernoulli[N](s, d.Prob) == 0 {
			x += 1
		}
		return x

	case DiscPoisson:
		return poisson[N](s, d.Prob)

	default:
		panic("variate: unknown discrete kind")
	}
}

// bernoulli 是離散層的原語：
// 在機率型別的 canonical 閉區間 [0,1] 取一次 draw，
// x < p 回傳 canonical one，否則 canonical zero。
func bernoulli[N Count, P Real](s *Source[P], p P) N {
	if s.unit() < p {
		return 1
	}
	return 0
}

// poisson Knuth 遞推：
//
//	p = exp(-λ), s = p, x = 0
//	取一次 u ~ U[0,1]；while u > s: x++, p *= λ/x, s += p
//
// x 同時以結果型別（回傳值）與機率型別（除數 xD）各累加一份，
// 避免每輪在兩個型別間轉換。
func poisson[N Count, P Real](s *Source[P], freq P) N {
	p := exp(-freq)
	sum := p
	var x N
	var xD P
	u := s.unit()
	for u > sum {
		x += 1
		xD += 1
		p *= freq / xD
		sum += p
	}
	return x
}
