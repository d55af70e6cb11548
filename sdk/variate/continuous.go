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

// ContKind 標記連續分布的種類。
type ContKind uint8

const (
	ContUniform ContKind = iota + 1
	ContGaussian
	ContLogNormal
	ContExponential
	ContPareto
	ContWeibull
	ContGamma
	ContBeta
)

var contKindNames = map[ContKind]string{
	ContUniform:     "uniform",
	ContGaussian:    "gaussian",
	ContLogNormal:   "lognormal",
	ContExponential: "exponential",
	ContPareto:      "pareto",
	ContWeibull:     "weibull",
	ContGamma:       "gamma",
	ContBeta:        "beta",
}

func (k ContKind) String() string {
	if s, ok := contKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Continuous 連續分布描述子（immutable tagged variant）。
//
// A/B 的語意依 Kind 而定，請一律走建構子：
//
//	uniform(min,max)  gaussian(mean,sd)  lognormal(mean,sd)
//	exponential(rate,-)  pareto(scale,shape)  weibull(scale,shape)
//	gamma(rate,shape)  beta(shape1,shape2)
type Continuous[F Real] struct {
	Kind ContKind
	A, B F
}

// Uniform 閉區間 [min,max] 均勻分布。
func Uniform[F Real](min, max F) Continuous[F] {
	return Continuous[F]{Kind: ContUniform, A: min, B: max}
}

// Gaussian 常態分布 N(mean, sd²)。
func Gaussian[F Real](mean, sd F) Continuous[F] {
	return Continuous[F]{Kind: ContGaussian, A: mean, B: sd}
}

// LogNormal 對數常態：exp(N(mean, sd²))。
func LogNormal[F Real](mean, sd F) Continuous[F] {
	return Continuous[F]{Kind: ContLogNormal, A: mean, B: sd}
}

// Exponential 指數分布。要求 rate > 0。
func Exponential[F Real](rate F) Continuous[F] {
	if !(rate > 0) {
		panic("variate: exponential rate must be positive")
	}
	return Continuous[F]{Kind: ContExponential, A: rate}
}

// Pareto 帕雷托分布。要求 scale > 0 且 shape > 0。
func Pareto[F Real](scale, shape F) Continuous[F] {
	if !(scale > 0) || !(shape > 0) {
		panic("variate: pareto scale/shape must be positive")
	}
	return Continuous[F]{Kind: ContPareto, A: scale, B: shape}
}

// Weibull 韋伯分布。要求 scale > 0 且 shape > 0。
func Weibull[F Real](scale, shape F) Continuous[F] {
	if !(scale > 0) || !(shape > 0) {
		panic("variate: weibull scale/shape must be positive")
	}
	return Continuous[F]{Kind: ContWeibull, A: scale, B: shape}
}

// Gamma 伽瑪分布（rate/shape 參數化）。要求 rate > 0 且 shape >= 1。
//
// 取樣走指數包絡拒絕法，接受率隨 shape 遠離 1 而下降（無迭代上限）。
func Gamma[F Real](rate, shape F) Continuous[F] {
	if !(rate > 0) || !(shape >= 1) {
		panic("variate: gamma requires rate > 0 and shape >= 1")
	}
	return Continuous[F]{Kind: ContGamma, A: rate, B: shape}
}

// Beta 貝他分布。要求 shape1 > 1 且 shape2 > 1
// （mode 包絡在 shape <= 1 時發散，無法作為拒絕上界）。
func Beta[F Real](shape1, shape2 F) Continuous[F] {
	if !(shape1 > 1) || !(shape2 > 1) {
		panic("variate: beta requires both shapes > 1")
	}
	return Continuous[F]{Kind: ContBeta, A: shape1, B: shape2}
}

// Draw 依描述子取一個連續變量。
//
// 單一 exhaustive switch；每個分支就是該分布的取樣演算法。
// 除了 gaussian/lognormal 會動到 Source 的 spare，其餘分支無狀態。
func (s *Source[F]) Draw(d Continuous[F]) F {
	switch d.Kind {
	case ContUniform:
		return s.Uniform(d.A, d.B)

	case ContGaussian:
		// mean + Z*sd；Z 來自 norm()（可能直接消耗 spare）
		return d.A + s.norm()*d.B

	case ContLogNormal:
		return exp(d.A + s.norm()*d.B)

	case ContExponential:
		// u==0 時 ln(0) = -Inf，結果 +Inf 照 IEEE 傳播
		u := s.unit()
		return -(1 / d.A) * ln(u)

	case ContPareto:
		u := s.unit()
		return d.A * pow(1-u, -1/d.B)

	case ContWeibull:
		u := s.unit()
		return d.A * pow(-ln(1-u), 1/d.B)

	case ContGamma:
		return s.gamma(d.A, d.B)

	case ContBeta:
		return s.beta(d.A, d.B)

	default:
		panic("variate: unknown continuous kind")
	}
}

// gamma 指數包絡拒絕法。
//
// 以 rate lambda = rate/shape 的指數分布作為候選來源，
// 接受條件 (shape-1)*exp(1-lambda*v) >= u。
// shape == 1 時退化為指數分布本體，直接走捷徑。
func (s *Source[F]) gamma(rate, shape F) F {
	lambda := rate / shape
	if shape == 1 {
		u := s.unit()
		return -(1 / lambda) * ln(u)
	}
	for {
		u := s.unit()
		v := -(1 / lambda) * ln(s.unit())
		if (shape-1)*exp(1-lambda*v) >= u {
			return v
		}
	}
}

// beta mode 包絡拒絕法。
//
// maxValue 是未正規化密度 x^(a-1)*(1-x)^(b-1) 在 mode
// x* = (a-1)/(a+b-2) 的值，作為垂直包絡；
// 候選 u1 ~ U[0,1]、高度 u2 ~ U[0,maxValue]，
// u2 落在密度曲線下方則接受。
func (s *Source[F]) beta(shape1, shape2 F) F {
	mode := (shape1 - 1) / (shape1 + shape2 - 2)
	maxValue := pow(mode, shape1-1) * pow(1-mode, shape2-1)
	for {
		u1 := s.unit()
		u2 := s.Uniform(0, maxValue)
		if u2 <= pow(u1, shape1-1)*pow(1-u1, shape2-1) {
			return u1
		}
	}
}
