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
	"encoding/base64"
	"math"

	"github.com/zintix-labs/distlab/corefmt"
	"github.com/zintix-labs/distlab/dto"
	"github.com/zintix-labs/distlab/errs"
	"github.com/zintix-labs/distlab/spec"
	"github.com/zintix-labs/distlab/stats"
)

// NewDevSimulator
//
// 注意只能由 Distlab 起
// 只提供給 Dev 模式使用的模擬器，重點是保持單機台模式所以保持可重現性
func (p *Distlab) NewDevSimulator(id spec.DID, seed int64) (*DevSimulator, error) {
	sim, err := p.NewSimulatorWithSeed(id, seed)
	if err != nil {
		return nil, err
	}
	m, err := p.NewSamplerWithSeed(id, seed)
	if err != nil {
		return nil, err
	}
	simBe, err := sim.mBuf[0].SnapshotCore()
	if err != nil {
		return nil, err
	}
	mBe, err := m.SnapshotCore()
	if err != nil {
		return nil, err
	}
	simBe64 := base64.StdEncoding.EncodeToString(simBe)
	mBe64 := base64.StdEncoding.EncodeToString(mBe)
	if mBe64 != simBe64 {
		return nil, errs.NewFatal("seeds are not equal")
	}
	dev := &DevSimulator{
		sim:      sim,
		m:        m,
		before:   mBe,
		before64: mBe64,
	}
	return dev, nil
}

// DevSimulator
//
// 只提供給 Dev 模式使用的模擬器，單線(不併發)，重點在可審計、可重現
type DevSimulator struct {
	sim      *Simulator // 只開放 Sim 功能
	m        *Sampler   // 同步 seed
	before   []byte
	after    []byte
	before64 string
	after64  string
}

type DevDrawReport struct {
	Before  string           `json:"start_b64u"`
	After   string           `json:"after_b64u"`
	Round   int              `json:"round"`
	Mean    float64          `json:"mean"`
	Min     float64          `json:"min"`
	Max     float64          `json:"max"`
	Results []dto.DrawResult `json:"results"`
}

func (d *DevSimulator) drawOne() (dto.DrawResult, error) {
	req := &dto.DrawRequest{
		DistName: d.m.distName,
		DistId:   d.m.distId,
		Count:    1,
	}
	return d.m.Draw(req)
}

func (d *DevSimulator) Draws(round int) (DevDrawReport, error) {
	// 限制檢查
	if round < 1 || round > 5000 {
		return DevDrawReport{}, errs.NewWarn("round must be between 1 and 5,000")
	}

	// draw
	ds := make([]dto.DrawResult, 0, round)
	for range round {
		result, err := d.drawOne()
		if err != nil {
			return DevDrawReport{}, errs.Wrap(err, "draw error")
		}
		ds = append(ds, result)
	}
	// 統計
	sum, mn, mx, n := 0.0, math.Inf(1), math.Inf(-1), 0
	for _, r := range ds {
		for _, v := range r.Values {
			sum += v
			mn = math.Min(mn, v)
			mx = math.Max(mx, v)
			n++
		}
	}

	de := DevDrawReport{
		Before:  ds[0].State.StartCoreSnapB64U,
		After:   ds[len(ds)-1].State.AfterCoreSnapB64U,
		Round:   len(ds),
		Mean:    sum / float64(n),
		Min:     mn,
		Max:     mx,
		Results: ds,
	}
	return de, nil
}

func (d *DevSimulator) RestoreDraws(be64 string, round int) (DevDrawReport, error) {
	// 限制檢查
	if round < 1 || round > 5000 {
		return DevDrawReport{}, errs.NewWarn("round must be between 1 and 5,000")
	}
	// 解析 snap
	be, err := corefmt.DecodeBase64URL(be64)
	if err != nil {
		return DevDrawReport{}, errs.NewWarn("decode snap failed" + err.Error())
	}
	// restore
	if err := d.m.RestoreCore(be); err != nil {
		return DevDrawReport{}, errs.NewWarn("sampler restore failed")
	}
	d.m.src.Reset()
	return d.Draws(round)
}

type DevSimReport struct {
	Before string              `json:"before"`
	After  string              `json:"after"`
	Stat   *stats.MomentReport `json:"statistic"`
}

func (d *DevSimulator) Sim(round int) (DevSimReport, error) {
	// 先存 before 快照
	m := d.sim.mBuf[0]
	be, err := m.SnapshotCore()
	if err != nil {
		return DevSimReport{}, err
	}
	be64 := corefmt.EncodeBase64URL(be)
	d.before = be
	d.before64 = be64

	if round < 1 || round > 3_000_000 {
		return DevSimReport{}, errs.NewWarn("round must be between 1 and 3,000,000")
	}
	stat, _, err := d.sim.Sim(round, false)
	if err != nil {
		return DevSimReport{}, errs.Wrap(err, "sim failed")
	}

	// 再存 after 快照
	af, err := m.SnapshotCore()
	if err != nil {
		return DevSimReport{}, err
	}
	af64 := corefmt.EncodeBase64URL(af)
	d.after = af
	d.after64 = af64

	return DevSimReport{
		Before: be64,
		After:  af64,
		Stat:   stat,
	}, nil
}

func (d *DevSimulator) RestoreSim(be64 string, round int) (DevSimReport, error) {
	// 反解析 string -> []byte
	be, err := corefmt.DecodeBase64URL(be64)
	if err != nil {
		return DevSimReport{}, errs.Wrap(err, "decode snap failed")
	}
	d.before = be
	d.before64 = be64

	// restore
	if err := d.sim.mBuf[0].RestoreCore(be); err != nil {
		return DevSimReport{}, errs.Wrap(err, "restore simulator failed")
	}
	d.sim.mBuf[0].src.Reset()

	return d.Sim(round)
}
