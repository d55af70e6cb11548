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

package recorder_test

import (
	"math"
	"testing"

	"github.com/zintix-labs/distlab/recorder"
	"github.com/zintix-labs/distlab/spec"
)

func gaussSetting() *spec.DistSetting {
	return &spec.DistSetting{
		DistName: "gauss",
		DistID:   1,
		Family:   spec.FamilyContinuous,
		Kind:     spec.KindGaussian,
		Params:   map[string]float64{"mean": 0, "sd": 1},
	}
}

func TestRecordAndDone(t *testing.T) {
	r, err := recorder.NewDrawRecorder(gaussSetting())
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	for _, x := range []float64{-1, 0, 1, 2} {
		r.Record(x)
	}

	rep := r.Done()
	if rep.Summary.Draws != 4 {
		t.Fatalf("draws got %d want 4", rep.Summary.Draws)
	}
	if math.Abs(rep.Summary.Mean-0.5) > 1e-12 {
		t.Fatalf("mean got %f want 0.5", rep.Summary.Mean)
	}
	if rep.Summary.Min != -1 || rep.Summary.Max != 2 {
		t.Fatalf("min/max got %f/%f", rep.Summary.Min, rep.Summary.Max)
	}

	// 直方圖計數總和等於取樣數
	if rep.Hist == nil {
		t.Fatalf("histogram missing for gaussian setting")
	}
	total := 0
	for _, c := range rep.Hist.Counts {
		total += c
	}
	if total != 4 {
		t.Fatalf("hist total got %d want 4", total)
	}
}

func TestMerge(t *testing.T) {
	ds := gaussSetting()
	a, _ := recorder.NewDrawRecorder(ds)
	b, _ := recorder.NewDrawRecorder(ds)

	for _, x := range []float64{1, 2} {
		a.Record(x)
	}
	for _, x := range []float64{3, 4} {
		b.Record(x)
	}

	m, err := recorder.MergeDrawRecorder([]*recorder.DrawRecorder{a, b})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	rep := m.Done()
	if rep.Summary.Draws != 4 {
		t.Fatalf("merged draws got %d want 4", rep.Summary.Draws)
	}
	if math.Abs(rep.Summary.Mean-2.5) > 1e-12 {
		t.Fatalf("merged mean got %f want 2.5", rep.Summary.Mean)
	}
	if rep.Summary.Min != 1 || rep.Summary.Max != 4 {
		t.Fatalf("merged min/max got %f/%f", rep.Summary.Min, rep.Summary.Max)
	}
}

func TestMergeRejectsDifferentDist(t *testing.T) {
	a, _ := recorder.NewDrawRecorder(gaussSetting())

	other := gaussSetting()
	other.DistID = 2
	other.DistName = "other"
	b, _ := recorder.NewDrawRecorder(other)

	if _, err := recorder.MergeDrawRecorder([]*recorder.DrawRecorder{a, b}); err == nil {
		t.Fatalf("expected merge error for different dists")
	}
	if _, err := recorder.MergeDrawRecorder(nil); err == nil {
		t.Fatalf("expected merge error for empty input")
	}
}

func TestDiscreteUniformHistogram(t *testing.T) {
	ds := &spec.DistSetting{
		DistName: "die",
		DistID:   3,
		Family:   spec.FamilyDiscrete,
		Kind:     spec.KindUniform,
		Outcome:  spec.OutcomeSetting{Min: 1, Max: 6},
	}
	r, err := recorder.NewDrawRecorder(ds)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	for face := 1; face <= 6; face++ {
		r.Record(float64(face))
	}
	rep := r.Done()

	// 六個面各落一次，無溢出
	if rep.Hist == nil {
		t.Fatalf("histogram missing")
	}
	if rep.Hist.Counts[0] != 0 || rep.Hist.Counts[len(rep.Hist.Counts)-1] != 0 {
		t.Fatalf("overflow buckets must be empty: %v", rep.Hist.Counts)
	}
	for i := 1; i <= 6; i++ {
		if rep.Hist.Counts[i] != 1 {
			t.Fatalf("face bucket %d got %d want 1", i, rep.Hist.Counts[i])
		}
	}
}

func TestEmptyRecorder(t *testing.T) {
	r, _ := recorder.NewDrawRecorder(gaussSetting())
	rep := r.Done()
	if rep.Summary.Draws != 0 {
		t.Fatalf("draws got %d want 0", rep.Summary.Draws)
	}
	if rep.Summary.Mean != 0 || rep.Summary.Min != 0 || rep.Summary.Max != 0 {
		t.Fatalf("empty report must be all zero")
	}
}
