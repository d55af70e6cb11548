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

import (
	"math"
	"testing"

	"github.com/zintix-labs/distlab/sdk/core"
	"gonum.org/v1/gonum/stat"
)

const trials = 10000

// -----------------------------------------------------------------------------
// Helper Functions
// -----------------------------------------------------------------------------

func newSrc(seed int64) *Source[float64] {
	return NewSource[float64](core.New(core.Default().New(seed)))
}

// drawN 取 n 個連續樣本
func drawN(s *Source[float64], d Continuous[float64], n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = s.Draw(d)
	}
	return xs
}

// drawDiscN 取 n 個離散樣本（轉 float64 方便統計）
func drawDiscN(s *Source[float64], d Discrete[int64, float64], n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(DrawDiscrete(s, d))
	}
	return xs
}

// checkClose 驗證統計量落在容差內
func checkClose(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if diff := math.Abs(got - want); diff > tol {
		t.Errorf("[%s] got %.5f, want %.5f (diff %.5f > tol %.5f)", name, got, want, diff, tol)
	}
}

// assertPanic 驗證函數是否如預期觸發 panic
func assertPanic(t *testing.T, f func(), msg string) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for %s, but got none", msg)
		}
	}()
	f()
}

// countingPRNG 包裝 PRNG 並計算 Uint64 消耗次數，
// 用於驗證高斯備用值確實省掉整輪 Box-Muller。
type countingPRNG struct {
	core.PRNG
	draws int
}

func (c *countingPRNG) Uint64() uint64 {
	c.draws++
	return c.PRNG.Uint64()
}

// -----------------------------------------------------------------------------
// Continuous: gaussian / lognormal
// -----------------------------------------------------------------------------

// TestGaussianMoments N(0,1) 一萬次：均值、偏度、超額峰度四捨五入皆為 0
func TestGaussianMoments(t *testing.T) {
	s := newSrc(1)
	xs := drawN(s, Gaussian(0.0, 1.0), trials)

	checkClose(t, "gaussian mean", stat.Mean(xs, nil), 0, 0.1)

	if sk := math.Round(stat.Skew(xs, nil)); sk != 0 {
		t.Errorf("rounded skewness = %v, want 0", sk)
	}
	if ek := math.Round(stat.ExKurtosis(xs, nil)); ek != 0 {
		t.Errorf("rounded excess kurtosis = %v, want 0", ek)
	}
}

// TestGaussianScaling 參數縮放在取出備用值「之後」才套用
func TestGaussianScaling(t *testing.T) {
	a := newSrc(77)
	b := newSrc(77)

	// 兩個同 seed 的 Source：第一 draw 用相同參數，確保 spare 相同
	_ = a.Draw(Gaussian(0.0, 1.0))
	_ = b.Draw(Gaussian(0.0, 1.0))

	// 第二 draw 消耗同一個 raw spare，但 b 用不同的 mean/sd
	za := a.Draw(Gaussian(0.0, 1.0))
	zb := b.Draw(Gaussian(5.0, 2.0))
	checkClose(t, "spare rescale", zb, 5+za*2, 1e-12)
}

// TestGaussianSpareSavesDraws 兩次連續 gaussian 只允許一輪 Box-Muller
func TestGaussianSpareSavesDraws(t *testing.T) {
	p := &countingPRNG{PRNG: core.Default().New(3)}
	s := NewSource[float64](core.New(p))

	_ = s.Draw(Gaussian(0.0, 1.0))
	afterFirst := p.draws
	if afterFirst < 2 || afterFirst%2 != 0 {
		t.Fatalf("first draw consumed %d uniforms, want positive even count", afterFirst)
	}

	_ = s.Draw(Gaussian(0.0, 1.0))
	if p.draws != afterFirst {
		t.Fatalf("second draw consumed %d extra uniforms, want 0", p.draws-afterFirst)
	}

	// 第三 draw 需要新的一輪
	_ = s.Draw(Gaussian(0.0, 1.0))
	if p.draws == afterFirst {
		t.Fatalf("third draw should run a fresh rejection loop")
	}
}

// TestLogNormalMoments LN(0, 0.5)：均值 exp(σ²/2)
func TestLogNormalMoments(t *testing.T) {
	s := newSrc(5)
	xs := drawN(s, LogNormal(0.0, 0.5), trials)
	for _, x := range xs {
		if x <= 0 {
			t.Fatalf("lognormal produced non-positive value %v", x)
		}
	}
	checkClose(t, "lognormal mean", stat.Mean(xs, nil), math.Exp(0.125), 0.03)
}

// -----------------------------------------------------------------------------
// Continuous: inversion samplers
// -----------------------------------------------------------------------------

// TestExponentialMoments Exp(5)：均值 1/λ、變異數 1/λ²
func TestExponentialMoments(t *testing.T) {
	const rate = 5.0
	s := newSrc(7)
	xs := drawN(s, Exponential(rate), trials)

	checkClose(t, "exponential mean", stat.Mean(xs, nil), 1/rate, 0.01)
	checkClose(t, "exponential variance", stat.Variance(xs, nil), 1/(rate*rate), 0.01)
}

// TestParetoMoments Pareto(1,3)：均值 shape/(shape-1)，且所有樣本 >= scale
func TestParetoMoments(t *testing.T) {
	s := newSrc(11)
	xs := drawN(s, Pareto(1.0, 3.0), trials)
	for _, x := range xs {
		if x < 1 {
			t.Fatalf("pareto produced value below scale: %v", x)
		}
	}
	checkClose(t, "pareto mean", stat.Mean(xs, nil), 1.5, 0.05)
}

// TestWeibullMoments Weibull(1,2)：均值 Γ(1.5)
func TestWeibullMoments(t *testing.T) {
	s := newSrc(13)
	xs := drawN(s, Weibull(1.0, 2.0), trials)
	for _, x := range xs {
		if x < 0 {
			t.Fatalf("weibull produced negative value %v", x)
		}
	}
	checkClose(t, "weibull mean", stat.Mean(xs, nil), math.Gamma(1.5), 0.02)
}

// TestUniformMoments U[-2,3]：均值 0.5，所有樣本在閉區間內
func TestUniformMoments(t *testing.T) {
	s := newSrc(17)
	xs := drawN(s, Uniform(-2.0, 3.0), trials)
	for _, x := range xs {
		if x < -2 || x > 3 {
			t.Fatalf("uniform out of bounds: %v", x)
		}
	}
	checkClose(t, "uniform mean", stat.Mean(xs, nil), 0.5, 0.06)
}

// -----------------------------------------------------------------------------
// Continuous: rejection samplers
// -----------------------------------------------------------------------------

// TestGammaShapeOne shape==1 退化為 Exp(rate)
func TestGammaShapeOne(t *testing.T) {
	const rate = 2.0
	s := newSrc(19)
	xs := drawN(s, Gamma(rate, 1.0), trials)
	checkClose(t, "gamma(rate,1) mean", stat.Mean(xs, nil), 1/rate, 0.02)
}

// TestGammaPositive 拒絕迴圈只會回傳正值且對固定 seed 可重現
func TestGammaPositive(t *testing.T) {
	s1 := newSrc(23)
	s2 := newSrc(23)
	d := Gamma(2.0, 3.0)
	for i := 0; i < 1000; i++ {
		v1 := s1.Draw(d)
		v2 := s2.Draw(d)
		if v1 < 0 {
			t.Fatalf("gamma produced negative value %v", v1)
		}
		if v1 != v2 {
			t.Fatalf("gamma not deterministic for same seed at step %d", i)
		}
	}
}

// TestBetaMoments Beta(2,2)：均值 a/(a+b)=0.5，樣本都在 [0,1]
func TestBetaMoments(t *testing.T) {
	s := newSrc(29)
	xs := drawN(s, Beta(2.0, 2.0), trials)
	for _, x := range xs {
		if x < 0 || x > 1 {
			t.Fatalf("beta out of [0,1]: %v", x)
		}
	}
	checkClose(t, "beta mean", stat.Mean(xs, nil), 0.5, 0.01)
	checkClose(t, "beta variance", stat.Variance(xs, nil), 0.05, 0.01)
}

// TestBetaAsymmetric Beta(4,2)：均值 4/6
func TestBetaAsymmetric(t *testing.T) {
	s := newSrc(31)
	xs := drawN(s, Beta(4.0, 2.0), trials)
	checkClose(t, "beta(4,2) mean", stat.Mean(xs, nil), 4.0/6.0, 0.01)
}

// -----------------------------------------------------------------------------
// Discrete
// -----------------------------------------------------------------------------

// TestBernoulliMoments bernoulli(0.05)：結果只有 0/1，均值與變異數貼近理論
func TestBernoulliMoments(t *testing.T) {
	const p = 0.05
	s := newSrc(37)
	xs := drawDiscN(s, Bernoulli[int64](p), trials)
	for _, x := range xs {
		if x != 0 && x != 1 {
			t.Fatalf("bernoulli outcome not in {0,1}: %v", x)
		}
	}
	checkClose(t, "bernoulli mean", stat.Mean(xs, nil), p, 0.007)
	checkClose(t, "bernoulli variance", stat.Variance(xs, nil), p*(1-p), 0.007)
}

// TestBinomialMoments binomial(10, 0.05)：均值 kp、變異數 kp(1-p)
func TestBinomialMoments(t *testing.T) {
	const (
		k = 10
		p = 0.05
	)
	s := newSrc(41)
	xs := drawDiscN(s, Binomial[int64](k, p), trials)
	for _, x := range xs {
		if x < 0 || x > k {
			t.Fatalf("binomial outcome out of [0,%d]: %v", k, x)
		}
	}
	checkClose(t, "binomial mean", stat.Mean(xs, nil), k*p, k*0.007)
	checkClose(t, "binomial variance", stat.Variance(xs, nil), k*p*(1-p), k*0.007)
}

// TestBinomialZeroTrials n=0 恆為 0
func TestBinomialZeroTrials(t *testing.T) {
	s := newSrc(43)
	d := Binomial[int64](0, 0.5)
	for i := 0; i < 100; i++ {
		if v := DrawDiscrete(s, d); v != 0 {
			t.Fatalf("binomial with 0 trials returned %d", v)
		}
	}
}

// TestGeometricMoments geometric(0.3)：失敗次數均值 (1-p)/p
func TestGeometricMoments(t *testing.T) {
	const p = 0.3
	s := newSrc(47)
	xs := drawDiscN(s, Geometric[int64](p), trials)
	for _, x := range xs {
		if x < 0 {
			t.Fatalf("geometric produced negative count %v", x)
		}
	}
	checkClose(t, "geometric mean", stat.Mean(xs, nil), (1-p)/p, 0.12)
}

// TestGeometricCertainSuccess p=1 時永遠零失敗
func TestGeometricCertainSuccess(t *testing.T) {
	s := newSrc(53)
	d := Geometric[int64](1.0)
	for i := 0; i < 100; i++ {
		if v := DrawDiscrete(s, d); v != 0 {
			t.Fatalf("geometric(1) returned %d failures", v)
		}
	}
}

// TestPoissonMoments poisson(4)：均值與變異數都貼近 λ
func TestPoissonMoments(t *testing.T) {
	const freq = 4.0
	s := newSrc(59)
	xs := drawDiscN(s, Poisson[int64](freq), trials)
	for _, x := range xs {
		if x < 0 {
			t.Fatalf("poisson produced negative count %v", x)
		}
	}
	checkClose(t, "poisson mean", stat.Mean(xs, nil), freq, 0.1)
	checkClose(t, "poisson variance", stat.Variance(xs, nil), freq, 0.3)
}

// TestIntUniform 閉區間骰子：六面都出現且均值貼近 3.5
func TestIntUniform(t *testing.T) {
	s := newSrc(61)
	d := IntUniform[int64, float64](1, 6)
	seen := map[int64]int{}
	sum := 0.0
	for i := 0; i < trials; i++ {
		v := DrawDiscrete(s, d)
		if v < 1 || v > 6 {
			t.Fatalf("die roll out of [1,6]: %d", v)
		}
		seen[v]++
		sum += float64(v)
	}
	for face := int64(1); face <= 6; face++ {
		if seen[face] == 0 {
			t.Errorf("face %d never rolled", face)
		}
	}
	checkClose(t, "die mean", sum/trials, 3.5, 0.06)
}

// -----------------------------------------------------------------------------
// Contract panics
// -----------------------------------------------------------------------------

func TestConstructorContracts(t *testing.T) {
	assertPanic(t, func() { Exponential(0.0) }, "exponential rate=0")
	assertPanic(t, func() { Pareto(0.0, 1.0) }, "pareto scale=0")
	assertPanic(t, func() { Weibull(1.0, -1.0) }, "weibull shape<0")
	assertPanic(t, func() { Gamma(1.0, 0.5) }, "gamma shape<1")
	assertPanic(t, func() { Beta(1.0, 2.0) }, "beta shape1<=1")
	assertPanic(t, func() { Bernoulli[int64](1.5) }, "probability>1")
	assertPanic(t, func() { Binomial[int64](-1, 0.5) }, "negative trials")
	assertPanic(t, func() { Poisson[int64](0.0) }, "poisson freq=0")
	assertPanic(t, func() { IntUniform[int64, float64](3, 1) }, "uniform min>max")
}

// -----------------------------------------------------------------------------
// Width genericity
// -----------------------------------------------------------------------------

// TestFloat32Source 同一套演算法跑 float32 寬度
func TestFloat32Source(t *testing.T) {
	s := NewSource[float32](core.New(core.Default().New(67)))
	sum := 0.0
	for i := 0; i < trials; i++ {
		v := s.Draw(Gaussian[float32](0, 1))
		if math.IsNaN(float64(v)) {
			t.Fatalf("float32 gaussian produced NaN")
		}
		sum += float64(v)
	}
	checkClose(t, "float32 gaussian mean", sum/trials, 0, 0.1)

	u := s.Draw(Uniform[float32](-1, 1))
	if u < -1 || u > 1 {
		t.Fatalf("float32 uniform out of bounds: %v", u)
	}
}

// -----------------------------------------------------------------------------
// Stream
// -----------------------------------------------------------------------------

// TestStreamBounded count=K 恰好 K 個後耗盡；count=0 立即耗盡
func TestStreamBounded(t *testing.T) {
	s := newSrc(71)

	st := s.StreamN(Uniform(0.0, 1.0), 5)
	for i := 0; i < 5; i++ {
		if _, ok := st.Next(); !ok {
			t.Fatalf("bounded stream exhausted early at %d", i)
		}
	}
	if _, ok := st.Next(); ok {
		t.Fatalf("bounded stream yielded more than count items")
	}
	// 耗盡後持續回報耗盡
	if _, ok := st.Next(); ok {
		t.Fatalf("exhausted stream resurrected")
	}

	empty := s.StreamN(Uniform(0.0, 1.0), 0)
	if _, ok := empty.Next(); ok {
		t.Fatalf("count=0 stream must be immediately exhausted")
	}
}

// TestStreamUnbounded 無界序列任意有限次 pull 都不耗盡
func TestStreamUnbounded(t *testing.T) {
	s := newSrc(73)
	st := s.Stream(Exponential(1.0))
	if st.Bounded() {
		t.Fatalf("stream should be unbounded")
	}
	if st.Remaining() != -1 {
		t.Fatalf("unbounded Remaining() = %d, want -1", st.Remaining())
	}
	for i := 0; i < trials; i++ {
		if _, ok := st.Next(); !ok {
			t.Fatalf("unbounded stream exhausted at pull %d", i)
		}
	}
}

// TestStreamCollect 外部 collection-builder：固定長度有序收集
func TestStreamCollect(t *testing.T) {
	s := newSrc(79)
	d := IntUniform[int64, float64](0, 9)

	xs := DiscreteStreamN(s, d, 100).Collect()
	if len(xs) != 100 {
		t.Fatalf("collected %d items, want 100", len(xs))
	}

	// 收集順序必須等於逐次 pull 的順序（同 seed 重建）
	s2 := newSrc(79)
	st := DiscreteStreamN(s2, d, 100)
	for i, want := range xs {
		got, ok := st.Next()
		if !ok || got != want {
			t.Fatalf("order mismatch at %d: got %d want %d", i, got, want)
		}
	}

	assertPanic(t, func() { s.Stream(Uniform(0.0, 1.0)).Collect() }, "collect on unbounded")
}

// TestStreamSeq for-range 橋接
func TestStreamSeq(t *testing.T) {
	s := newSrc(83)
	st := s.StreamN(Gaussian(0.0, 1.0), 7)
	n := 0
	for range st.Seq() {
		n++
	}
	if n != 7 {
		t.Fatalf("ranged %d items, want 7", n)
	}
}
