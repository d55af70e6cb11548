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

package stats_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/zintix-labs/distlab/spec"
	"github.com/zintix-labs/distlab/stats"
)

// buildMomentReport constructs a MomentReport from raw samples.
func buildMomentReport(samples []float64) *stats.MomentReport {
	m := &stats.MomentsReport{}
	mn, mx := math.Inf(1), math.Inf(-1)
	for _, x := range samples {
		m.Sum += x
		m.SqSum += x * x
		m.CubeSum += x * x * x
		m.QuadSum += x * x * x * x
		if x < mn {
			mn = x
		}
		if x > mx {
			mx = x
		}
	}
	rep := &stats.MomentReport{
		Summary: &stats.SummaryReport{
			DistName: "TestDist",
			DistId:   spec.DID(0),
			Family:   spec.FamilyContinuous,
			Kind:     spec.KindUniform,
			Draws:    len(samples),
			Min:      mn,
			Max:      mx,
		},
		Moments: m,
	}
	rep.Done()
	return rep
}

func TestMomentReportCoreMetrics(t *testing.T) {
	rep := buildMomentReport([]float64{1, 2, 3, 4})

	if got := rep.Mean(); math.Abs(got-2.5) > 1e-12 {
		t.Fatalf("Mean got %.12f want 2.5", got)
	}

	// 無偏變異數: sum((x-2.5)^2)/3 = 5/3
	wantVar := 5.0 / 3.0
	if got := rep.Variance(); math.Abs(got-wantVar) > 1e-12 {
		t.Fatalf("Variance got %.12f want %.12f", got, wantVar)
	}
	wantStd := math.Sqrt(wantVar)
	if got := rep.Std(); math.Abs(got-wantStd) > 1e-12 {
		t.Fatalf("Std got %.12f want %.12f", got, wantStd)
	}

	// 對稱樣本偏度為 0
	if got := rep.Skew(); math.Abs(got) > 1e-9 {
		t.Fatalf("Skew got %.12f want 0", got)
	}

	ci := rep.Ci()
	if ci.Lo > 2.5 || ci.Hi < 2.5 {
		t.Fatalf("CI [%f,%f] does not cover the mean", ci.Lo, ci.Hi)
	}

	rep.Done() // idempotent
	if rep.Summary.Mean != 2.5 {
		t.Fatalf("Mean changed after second Done")
	}
}

func TestExpectedMoments(t *testing.T) {
	cases := []struct {
		name     string
		ds       spec.DistSetting
		mean     float64
		variance float64
	}{
		{
			"gaussian",
			spec.DistSetting{Family: spec.FamilyContinuous, Kind: spec.KindGaussian,
				Params: map[string]float64{"mean": 2, "sd": 3}},
			2, 9,
		},
		{
			"exponential",
			spec.DistSetting{Family: spec.FamilyContinuous, Kind: spec.KindExponential,
				Params: map[string]float64{"rate": 4}},
			0.25, 0.0625,
		},
		{
			"beta",
			spec.DistSetting{Family: spec.FamilyContinuous, Kind: spec.KindBeta,
				Params: map[string]float64{"shape1": 2, "shape2": 2}},
			0.5, 0.05,
		},
		{
			"binomial",
			spec.DistSetting{Family: spec.FamilyDiscrete, Kind: spec.KindBinomial,
				Params: map[string]float64{"trials": 10, "prob": 0.3}},
			3, 2.1,
		},
		{
			"geometric",
			spec.DistSetting{Family: spec.FamilyDiscrete, Kind: spec.KindGeometric,
				Params: map[string]float64{"prob": 0.5}},
			1, 2,
		},
		{
			"die",
			spec.DistSetting{Family: spec.FamilyDiscrete, Kind: spec.KindUniform,
				Outcome: spec.OutcomeSetting{Min: 1, Max: 6}},
			3.5, 35.0 / 12.0,
		},
	}
	for _, c := range cases {
		got := stats.Expected(&c.ds)
		if !got.Known {
			t.Errorf("[%s] expected moments should be known", c.name)
			continue
		}
		if math.Abs(got.Mean-c.mean) > 1e-9 {
			t.Errorf("[%s] mean got %.9f want %.9f", c.name, got.Mean, c.mean)
		}
		if math.Abs(got.Variance-c.variance) > 1e-9 {
			t.Errorf("[%s] variance got %.9f want %.9f", c.name, got.Variance, c.variance)
		}
	}

	// 發散的 pareto 變異數
	heavy := spec.DistSetting{Family: spec.FamilyContinuous, Kind: spec.KindPareto,
		Params: map[string]float64{"scale": 1, "shape": 1.5}}
	if stats.Expected(&heavy).Known {
		t.Errorf("pareto with shape <= 2 should report unknown moments")
	}
}

func TestCheckVerdict(t *testing.T) {
	// 均值 0.5 的均勻樣本串，對 U[0,1] 對標應該通過
	samples := make([]float64, 1000)
	for i := range samples {
		samples[i] = float64(i%100)/100.0 + 0.005
	}
	rep := buildMomentReport(samples)
	ds := spec.DistSetting{
		Family: spec.FamilyContinuous, Kind: spec.KindUniform,
		Params: map[string]float64{"lower": 0, "upper": 1},
	}
	v := rep.Check(&ds)
	if !v.Expected.Known {
		t.Fatalf("expected moments should be known")
	}
	if !v.MeanOK {
		t.Fatalf("mean check failed: z=%.3f", v.MeanZ)
	}
	if v.VarRatio < 0.8 || v.VarRatio > 1.2 {
		t.Fatalf("variance ratio %.4f outside sanity band", v.VarRatio)
	}
}

func TestProportionCICP(t *testing.T) {
	hat, ci := stats.ProportionCICP(50, 100, 0.95)
	if hat != 0.5 {
		t.Fatalf("pHat got %f want 0.5", hat)
	}
	if ci.Lo >= 0.5 || ci.Hi <= 0.5 {
		t.Fatalf("CI [%f,%f] must straddle 0.5", ci.Lo, ci.Hi)
	}

	// 邊界
	_, ci0 := stats.ProportionCICP(0, 10, 0.95)
	if ci0.Lo != 0 {
		t.Fatalf("k=0 lower bound must be 0")
	}
	_, ciN := stats.ProportionCICP(10, 10, 0.95)
	if ciN.Hi != 1 {
		t.Fatalf("k=n upper bound must be 1")
	}
}

func TestHistogram(t *testing.T) {
	h, err := stats.NewHistogram(0, 10, 5)
	if err != nil {
		t.Fatalf("new histogram: %v", err)
	}
	if h.Buckets() != 7 {
		t.Fatalf("buckets got %d want 7", h.Buckets())
	}
	cases := []struct {
		x    float64
		want int
	}{
		{-1, 0}, {0, 1}, {1.99, 1}, {2, 2}, {9.99, 5}, {10, 6}, {100, 6},
	}
	for _, c := range cases {
		if got := h.Index(c.x); got != c.want {
			t.Errorf("Index(%v) got %d want %d", c.x, got, c.want)
		}
	}
	if _, err := stats.NewHistogram(5, 5, 3); err == nil {
		t.Errorf("expected error for empty range")
	}
	if _, err := stats.NewHistogram(0, 1, 0); err == nil {
		t.Errorf("expected error for zero bins")
	}
}

func TestRenderers(t *testing.T) {
	rep := buildMomentReport([]float64{1, 2, 3})

	var jbuf bytes.Buffer
	if err := rep.WriteWith(&jbuf, &stats.JsonMomentReportRender{}); err != nil {
		t.Fatalf("json render: %v", err)
	}
	if !strings.Contains(jbuf.String(), `"DistName":"TestDist"`) {
		t.Fatalf("json output missing dist name: %s", jbuf.String())
	}

	var ybuf bytes.Buffer
	if err := rep.WriteWith(&ybuf, &stats.YAMLMomentReportRender{}); err != nil {
		t.Fatalf("yaml render: %v", err)
	}
	if !strings.Contains(ybuf.String(), "DistName: TestDist") {
		t.Fatalf("yaml output missing dist name: %s", ybuf.String())
	}
}
