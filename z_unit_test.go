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

package distlab

import (
	"context"
	"math"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/distlab/dto"
	"github.com/zintix-labs/distlab/sdk/core"
	"github.com/zintix-labs/distlab/spec"
)

const gaussYAML = `dist_name: gauss
dist_id: 1
family: continuous
kind: gaussian
params:
  mean: 0.0
  sd: 1.0
`

const dieYAML = `dist_name: die
dist_id: 2
family: discrete
kind: uniform
outcome:
  min: 1
  max: 6
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"gauss.yaml": &fstest.MapFile{Data: []byte(gaussYAML)},
		"die.yaml":   &fstest.MapFile{Data: []byte(dieYAML)},
	}
}

func newTestLab(t *testing.T) *Distlab {
	t.Helper()
	lab, err := NewAuto(core.Default(), Configs(testFS()))
	if err != nil {
		t.Fatalf("new lab: %v", err)
	}
	return lab
}

func TestLabRegisterAllAndSummary(t *testing.T) {
	lab := newTestLab(t)

	ids := lab.IDs()
	if len(ids) != 2 {
		t.Fatalf("ids = %v, want 2 entries", ids)
	}
	if _, ok := lab.EntryById(1); !ok {
		t.Fatal("gauss entry missing")
	}
	if _, ok := lab.EntryByName("DIE"); !ok {
		t.Fatal("name lookup should be case-insensitive")
	}

	sum, err := lab.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	byID := map[spec.DID]string{}
	for _, s := range sum {
		byID[s.DID] = s.Kind
	}
	if byID[1] != spec.KindGaussian || byID[2] != spec.KindUniform {
		t.Fatalf("summary kinds = %v", byID)
	}
}

func TestLabRejectsDuplicateID(t *testing.T) {
	fs := testFS()
	fs["copy.yaml"] = &fstest.MapFile{Data: []byte(gaussYAML)}
	if _, err := NewAuto(core.Default(), Configs(fs)); err == nil {
		t.Fatal("duplicate dist id should fail registration")
	}
}

func TestSamplerSeedDeterminism(t *testing.T) {
	lab := newTestLab(t)

	a, err := lab.NewSamplerWithSeed(1, 42)
	if err != nil {
		t.Fatalf("sampler a: %v", err)
	}
	b, err := lab.NewSamplerWithSeed(1, 42)
	if err != nil {
		t.Fatalf("sampler b: %v", err)
	}
	for i := 0; i < 100; i++ {
		va, vb := a.DrawInternal(), b.DrawInternal()
		if va != vb {
			t.Fatalf("draw %d: %v != %v", i, va, vb)
		}
	}
}

func TestSamplerDrawDefaultsAndValidation(t *testing.T) {
	lab := newTestLab(t)
	s, err := lab.NewSamplerWithSeed(2, 7)
	if err != nil {
		t.Fatalf("sampler: %v", err)
	}

	res, err := s.Draw(&dto.DrawRequest{DistId: 2})
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if res.Count != 1 || len(res.Values) != 1 {
		t.Fatalf("default count: got %d values", len(res.Values))
	}
	v := res.Values[0]
	if v != math.Trunc(v) || v < 1 || v > 6 {
		t.Fatalf("die value out of range: %v", v)
	}
	if res.State.StartCoreSnapB64U == "" || res.State.AfterCoreSnapB64U == "" {
		t.Fatal("draw state snapshots must be present")
	}

	if _, err := s.Draw(&dto.DrawRequest{DistId: 99}); err == nil {
		t.Fatal("mismatched dist id should fail")
	}
	if _, err := s.Draw(&dto.DrawRequest{DistId: 2, Count: -1}); err == nil {
		t.Fatal("negative count should fail")
	}
	if _, err := s.Draw(&dto.DrawRequest{DistId: 2, Count: maxDrawCount + 1}); err == nil {
		t.Fatal("oversized count should fail")
	}
	if _, err := s.Draw(&dto.DrawRequest{}); err == nil {
		t.Fatal("request without dist id or name should fail")
	}
}

func TestSamplerDrawReplay(t *testing.T) {
	lab := newTestLab(t)
	s, err := lab.NewSamplerWithSeed(1, 99)
	if err != nil {
		t.Fatalf("sampler: %v", err)
	}

	first, err := s.Draw(&dto.DrawRequest{DistId: 1, Count: 5})
	if err != nil {
		t.Fatalf("first draw: %v", err)
	}
	second, err := s.Draw(&dto.DrawRequest{DistId: 1, Count: 5})
	if err != nil {
		t.Fatalf("second draw: %v", err)
	}

	// 回放第一批：帶入第一批的 start 快照，結果必須逐位一致
	replay, err := s.Draw(&dto.DrawRequest{
		DistId: 1,
		Count:  5,
		StartState: &dto.StartState{
			StartCoreSnapB64U: first.State.StartCoreSnapB64U,
		},
	})
	if err != nil {
		t.Fatalf("replay draw: %v", err)
	}
	for i := range first.Values {
		if replay.Values[i] != first.Values[i] {
			t.Fatalf("replay value %d: %v != %v", i, replay.Values[i], first.Values[i])
		}
	}
	if replay.State.StartCoreSnapB64U != first.State.StartCoreSnapB64U {
		t.Fatal("replay must echo the requested start snapshot")
	}

	// 回放不得污染本機流水：下一批 fresh draw 必須接在 second 之後
	third, err := s.Draw(&dto.DrawRequest{DistId: 1, Count: 5})
	if err != nil {
		t.Fatalf("third draw: %v", err)
	}
	if third.State.StartCoreSnapB64U != second.State.AfterCoreSnapB64U {
		t.Fatal("replay leaked into the local stream")
	}
}

func TestSamplerDrawResume(t *testing.T) {
	lab := newTestLab(t)
	s, err := lab.NewSamplerWithSeed(1, 5)
	if err != nil {
		t.Fatalf("sampler: %v", err)
	}

	first, err := s.Draw(&dto.DrawRequest{DistId: 1, Count: 4})
	if err != nil {
		t.Fatalf("first draw: %v", err)
	}
	second, err := s.Draw(&dto.DrawRequest{DistId: 1, Count: 4})
	if err != nil {
		t.Fatalf("second draw: %v", err)
	}

	// 續抽：上一批的 after 當作下一批的 start，結果要和 fresh 的第二批一致
	resume, err := s.Draw(&dto.DrawRequest{
		DistId: 1,
		Count:  4,
		StartState: &dto.StartState{
			StartCoreSnapB64U: first.State.AfterCoreSnapB64U,
		},
	})
	if err != nil {
		t.Fatalf("resume draw: %v", err)
	}
	for i := range second.Values {
		if resume.Values[i] != second.Values[i] {
			t.Fatalf("resume value %d: %v != %v", i, resume.Values[i], second.Values[i])
		}
	}
}

func TestSamplerStream(t *testing.T) {
	lab := newTestLab(t)
	s, err := lab.NewSamplerWithSeed(2, 11)
	if err != nil {
		t.Fatalf("sampler: %v", err)
	}
	st := s.Stream(10)
	got := st.Collect()
	if len(got) != 10 {
		t.Fatalf("stream collected %d values", len(got))
	}
	for _, v := range got {
		if v < 1 || v > 6 {
			t.Fatalf("die stream value out of range: %v", v)
		}
	}
	if s.Stream(-1).Remaining() != -1 {
		t.Fatal("negative count should mean unbounded stream")
	}
}

func TestSimulatorSim(t *testing.T) {
	lab := newTestLab(t)
	sim, err := lab.NewSimulatorWithSeed(1, 1234)
	if err != nil {
		t.Fatalf("simulator: %v", err)
	}

	const rounds = 20000
	st, _, err := sim.Sim(rounds, false)
	if err != nil {
		t.Fatalf("sim: %v", err)
	}
	if st.Summary.Draws != rounds {
		t.Fatalf("draws = %d, want %d", st.Summary.Draws, rounds)
	}
	if math.Abs(st.Summary.Mean) > 0.05 {
		t.Fatalf("gaussian mean drifted: %v", st.Summary.Mean)
	}
	if math.Abs(st.Summary.Std-1) > 0.05 {
		t.Fatalf("gaussian std drifted: %v", st.Summary.Std)
	}

	if _, _, err := sim.Sim(0, false); err == nil {
		t.Fatal("round 0 should fail")
	}
}

func TestSimulatorSimMP(t *testing.T) {
	lab := newTestLab(t)
	sim, err := lab.NewSimulatorWithSeed(2, 77)
	if err != nil {
		t.Fatalf("simulator: %v", err)
	}

	const rounds, workers = 5000, 4
	st, _, err := sim.SimMP(rounds, workers, false)
	if err != nil {
		t.Fatalf("simmp: %v", err)
	}
	if st.Summary.Draws != rounds*workers {
		t.Fatalf("merged draws = %d, want %d", st.Summary.Draws, rounds*workers)
	}
	// die 期望值 3.5
	if math.Abs(st.Summary.Mean-3.5) > 0.1 {
		t.Fatalf("die mean drifted: %v", st.Summary.Mean)
	}
	if st.Summary.Min < 1 || st.Summary.Max > 6 {
		t.Fatalf("die range [%v,%v]", st.Summary.Min, st.Summary.Max)
	}

	if _, _, err := sim.SimMP(10, 0, false); err == nil {
		t.Fatal("zero workers should fail")
	}
}

func TestSeedMakerUniqueNonNegative(t *testing.T) {
	sm := newSeedMaker(424242)
	seen := make(map[int64]bool, 1000)
	for i := 0; i < 1000; i++ {
		s := sm.next()
		if s < 0 {
			t.Fatalf("seed %d is negative", s)
		}
		if seen[s] {
			t.Fatalf("seed %d repeated", s)
		}
		seen[s] = true
	}
}

func TestBuildRuntimeDraw(t *testing.T) {
	lab := newTestLab(t)
	rt, err := lab.BuildRuntime(2)
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}
	defer rt.Close()

	ctx := context.Background()
	res, err := rt.Draw(ctx, &dto.DrawRequest{DistId: 1, Count: 3})
	if err != nil {
		t.Fatalf("runtime draw: %v", err)
	}
	if len(res.Values) != 3 || res.Kind != spec.KindGaussian {
		t.Fatalf("unexpected result: %+v", res)
	}

	// 只帶名稱也要能路由
	res, err = rt.Draw(ctx, &dto.DrawRequest{DistName: "die", Count: 2})
	if err != nil {
		t.Fatalf("runtime draw by name: %v", err)
	}
	if res.DistID != 2 {
		t.Fatalf("routed to wrong dist: %d", res.DistID)
	}

	if _, err := rt.Draw(ctx, &dto.DrawRequest{DistId: 404, Count: 1}); err == nil {
		t.Fatal("unknown dist id should fail")
	}

	ms := rt.Metrics()
	if len(ms) != 2 {
		t.Fatalf("metrics for %d pools", len(ms))
	}
	for _, m := range ms {
		if m.PoolSize != 2 {
			t.Fatalf("pool size = %d", m.PoolSize)
		}
	}

	rt.Close()
	if _, err := rt.Draw(ctx, &dto.DrawRequest{DistId: 1, Count: 1}); err == nil {
		t.Fatal("closed runtime should refuse draws")
	}
}

func TestDevSimulatorReplay(t *testing.T) {
	lab := newTestLab(t)
	dev, err := lab.NewDevSimulator(1, 31337)
	if err != nil {
		t.Fatalf("dev simulator: %v", err)
	}

	first, err := dev.Draws(10)
	if err != nil {
		t.Fatalf("draws: %v", err)
	}
	if first.Round != 10 || len(first.Results) != 10 {
		t.Fatalf("report round = %d results = %d", first.Round, len(first.Results))
	}

	replay, err := dev.RestoreDraws(first.Before, 10)
	if err != nil {
		t.Fatalf("restore draws: %v", err)
	}
	for i := range first.Results {
		if replay.Results[i].Values[0] != first.Results[i].Values[0] {
			t.Fatalf("replay draw %d mismatch", i)
		}
	}

	if _, err := dev.Draws(0); err == nil {
		t.Fatal("round 0 should fail")
	}
	if _, err := dev.Draws(5001); err == nil {
		t.Fatal("round above cap should fail")
	}
}
