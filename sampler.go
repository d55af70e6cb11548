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
	"fmt"
	"strings"
	"sync"

	"github.com/zintix-labs/distlab/dto"
	"github.com/zintix-labs/distlab/errs"
	"github.com/zintix-labs/distlab/sdk/core"
	"github.com/zintix-labs/distlab/sdk/variate"
	"github.com/zintix-labs/distlab/spec"
)

// maxDrawCount 限制單次 Draw 的取樣上限，避免一個請求吃光服務資源。
const maxDrawCount = 1 << 16

// Sampler 封裝一台「可對外提供 Draw」的取樣機台。
//
// 你可以把 Sampler 視為分布的「外殼（shell）」：
//   - 對外：提供 Draw 入口（HTTP/模擬器通常只操作 Sampler）。
//   - 對內：持有 RNG（Core）與真正執行取樣演算法的核心（sdk/variate.Source）。
//
// 並發語意：
//   - Sampler 不是 lock-free 結構；它內含可重用的取樣上下文（Source 的 Box-Muller spare
//     屬於可變狀態），因此同一台 Sampler 不應被多 goroutine 同時 Draw。
//   - Draw 本身有 mutex 保護；DrawInternal（熱路徑）沒有，由更高層建立多台 Sampler
//     分散到不同 worker 並管理其生命週期。
//
// initseed 用於記錄出生時的 seed（追溯/重現的基礎資訊）；完整審計仍以 Core 的 Snapshot/Restore 為準。
type Sampler struct {
	distName string                              // 分布名稱（來自 DistSetting.DistName，主要用於觀測/日誌）
	distId   spec.DID                            // 分布 ID（Catalog 內唯一；用於路由與查表）
	family   spec.Family                         // continuous / discrete
	kind     string                              // 分布 kind（gaussian / poisson / ...）
	core     *core.Core                          // RNG 核心（PRNG + Snapshot/Restore 合約；熱路徑會頻繁取樣）
	src      *variate.Source[float64]            // 取樣上下文（持有 Box-Muller spare；每台 Sampler 一份）
	cont     variate.Continuous[float64]         // 連續分布描述子（family == continuous 時有效）
	disc     variate.Discrete[int64, float64]    // 離散分布描述子（family == discrete 時有效）
	mu       sync.Mutex                          // 防併發鎖：保護 Source 可變狀態與核心狀態一致性
	initseed int64                               // 出生 seed（便於追溯；完整重現請用 Snapshot/Restore）
}

// newSampler 以「隨機 seed」建立 Sampler。
//
// 這裡使用 crypto/rand 產生 seed 是為了：
//   - 在對外服務情境避免可預測 RNG
//   - 同時保留可追溯性（seed 會被記錄在 Sampler.initseed）
//
// seed 只保證了新建的 Sampler 起點，如果需要在任意批後將機台"重設"到任意 Core 節點，請利用 Snapshot Restore 來操作
func newSampler(ds *spec.DistSetting, cf core.PRNGFactory) (*Sampler, error) {
	seed, err := cryptoSeed()
	if err != nil {
		return nil, err
	}
	return newSamplerWithSeed(ds, cf, seed)
}

// newSamplerWithSeed 以指定 seed 建立 Sampler。
//
// 這是最常用的「可重現」入口：同一份 DistSetting + 同一個 seed，應能得到一致的隨機序列（取決於 Core 實作）。
//
// 建立流程（概念）：
//  1. core.New(cf.New(seed)) 建出 RNG 核心
//  2. variate.NewSource 綁定取樣上下文
//  3. 依 family/kind 把 DistSetting 的參數轉成取樣描述子
func newSamplerWithSeed(ds *spec.DistSetting, cf core.PRNGFactory, seed int64) (*Sampler, error) {
	s := &Sampler{
		distName: ds.DistName,
		distId:   ds.DistID,
		family:   ds.Family,
		kind:     ds.Kind,
		core:     core.New(cf.New(seed)),
		initseed: seed,
	}
	s.src = variate.NewSource[float64](s.core)

	var err error
	switch ds.Family {
	case spec.FamilyContinuous:
		s.cont, err = buildContinuous(ds)
	case spec.FamilyDiscrete:
		s.disc, err = buildDiscrete(ds)
	default:
		err = errs.NewFatal(fmt.Sprintf("unknown family: %q", ds.Family))
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// buildContinuous 把已通過 spec 校驗的設定轉成連續分布描述子。
//
// 參數名稱是設定檔合約的一部分（spec 的校驗器與這裡必須一致）。
// variate 的建構子在參數非法時會 panic；設定檔在載入期已經過相同條件的
// 校驗，因此這裡的 panic 代表「校驗器與建構子失去同步」的程式錯誤。
func buildContinuous(ds *spec.DistSetting) (variate.Continuous[float64], error) {
	p := ds.Params
	switch ds.Kind {
	case spec.KindUniform:
		return variate.Uniform(p["lower"], p["upper"]), nil
	case spec.KindGaussian:
		return variate.Gaussian(p["mean"], p["sd"]), nil
	case spec.KindLogNormal:
		return variate.LogNormal(p["mean"], p["sd"]), nil
	case spec.KindExponential:
		return variate.Exponential(p["rate"]), nil
	case spec.KindPareto:
		return variate.Pareto(p["scale"], p["shape"]), nil
	case spec.KindWeibull:
		return variate.Weibull(p["scale"], p["shape"]), nil
	case spec.KindGamma:
		return variate.Gamma(p["rate"], p["shape"]), nil
	case spec.KindBeta:
		return variate.Beta(p["shape1"], p["shape2"]), nil
	default:
		return variate.Continuous[float64]{}, errs.NewFatal(fmt.Sprintf("unknown continuous kind: %q", ds.Kind))
	}
}

// buildDiscrete 把已通過 spec 校驗的設定轉成離散分布描述子。
func buildDiscrete(ds *spec.DistSetting) (variate.Discrete[int64, float64], error) {
	p := ds.Params
	switch ds.Kind {
	case spec.KindBernoulli:
		return variate.Bernoulli[int64](p["prob"]), nil
	case spec.KindBinomial:
		return variate.Binomial[int64](int(p["trials"]), p["prob"]), nil
	case spec.KindGeometric:
		return variate.Geometric[int64](p["prob"]), nil
	case spec.KindPoisson:
		return variate.Poisson[int64](p["freq"]), nil
	case spec.KindUniform:
		return variate.IntUniform[int64, float64](ds.Outcome.Min, ds.Outcome.Max), nil
	default:
		return variate.Discrete[int64, float64]{}, errs.NewFatal(fmt.Sprintf("unknown discrete kind: %q", ds.Kind))
	}
}

// Draw 為主要公開入口，會驗證取樣請求，執行取樣並回傳結果。
//
// 狀態語意（與 DrawState 的 Start/After 對應）：
//  1. 每批取樣前先 Reset 取樣上下文（丟棄 Box-Muller spare），讓整批結果
//     成為「純粹由 Core 起始狀態決定」的函數。
//  2. 取 start snapshot；若請求帶入 start_b64u，改以該快照 restore 後再取樣（回放/續抽）。
//  3. 取樣 count 次，取 after snapshot。
//  4. 若是回放批，取樣後把 Core 還原回進入前的狀態，不讓回放污染本機流水。
func (s *Sampler) Draw(r *dto.DrawRequest) (dto.DrawResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 1. 校驗請求合法性
	if err := s.valid(r); err != nil {
		return dto.DrawResult{}, err
	}
	count := r.Count
	if count == 0 {
		count = 1
	}

	// 2. 整批取樣必須可由 start snapshot 完整重現
	s.src.Reset()

	// 3. get start snapshot
	startsnap, err := s.SnapshotCore()
	if err != nil {
		return dto.DrawResult{}, errs.NewFatal("before snapshot error " + err.Error())
	}
	rem := startsnap
	replay := r.StartState.HasPayload()
	if replay {
		snap, err := r.StartState.Snap()
		if err != nil {
			return dto.DrawResult{}, err
		}
		startsnap = snap
		if err := s.RestoreCore(snap); err != nil {
			return dto.DrawResult{}, errs.NewWarn("restore core err " + err.Error())
		}
	}

	// 4. sample
	values := make([]float64, count)
	switch s.family {
	case spec.FamilyContinuous:
		for i := range values {
			values[i] = s.src.Draw(s.cont)
		}
	case spec.FamilyDiscrete:
		for i := range values {
			values[i] = float64(variate.DrawDiscrete(s.src, s.disc))
		}
	}

	// 5. get after snapshot
	aftersnap, err := s.SnapshotCore()
	if err != nil {
		if e := s.RestoreCore(rem); e != nil {
			return dto.DrawResult{}, errs.NewFatal("fall back err " + e.Error())
		}
		return dto.DrawResult{}, errs.NewWarn("after snapshot error " + err.Error())
	}

	// 6. restore if needed
	if replay {
		s.src.Reset()
		if err := s.RestoreCore(rem); err != nil {
			return dto.DrawResult{}, errs.NewFatal("restore core back err " + err.Error())
		}
	}

	// 7. dto
	return dto.DrawResult{
		DistName: s.distName,
		DistID:   s.distId,
		Family:   s.family,
		Kind:     s.kind,
		Count:    count,
		Values:   values,
		State:    dto.NewDrawState(startsnap, aftersnap),
	}, nil
}

// DrawInternal 直接取得一筆內部取樣值；常用於模擬器或測試
//
// 請勿在正式環境使用
//
// 此行為跳過所有檢查與快照，離散結果以 float64 回傳
func (s *Sampler) DrawInternal() float64 {
	if s.family == spec.FamilyDiscrete {
		return float64(variate.DrawDiscrete(s.src, s.disc))
	}
	return s.src.Draw(s.cont)
}

func (s *Sampler) valid(req *dto.DrawRequest) error {
	if req == nil {
		return errs.NewWarn("nil request")
	}
	if req.DistId != 0 && s.distId != req.DistId {
		return errs.NewWarn("dist id is not matched")
	}
	if req.DistName != "" && !strings.EqualFold(s.distName, req.DistName) {
		return errs.NewWarn("dist name is not matched")
	}
	if req.DistId == 0 && req.DistName == "" {
		return errs.NewWarn("dist id or dist name required")
	}
	if req.Count < 0 {
		return errs.NewWarn("count must be >= 0")
	}
	if req.Count > maxDrawCount {
		return errs.NewWarn(fmt.Sprintf("count out of range (max: %d)", maxDrawCount))
	}
	return nil
}

// DistName 回傳分布名稱。
func (s *Sampler) DistName() string { return s.distName }

// DistId 回傳分布 ID。
func (s *Sampler) DistId() spec.DID { return s.distId }

// Family 回傳分布族。
func (s *Sampler) Family() spec.Family { return s.family }

// Kind 回傳分布 kind。
func (s *Sampler) Kind() string { return s.kind }

// InitSeed 回傳出生 seed。
func (s *Sampler) InitSeed() int64 { return s.initseed }

// Stream 以本機台的分布建立惰性取樣流。
//
// count < 0 代表無界流（Remaining() == -1）；count >= 0 代表抽滿 count 筆即耗盡。
// Stream 與 Sampler 共用同一個 Core 與 Source，因此不可與 Draw 併發使用。
func (s *Sampler) Stream(count int) *variate.Stream[float64] {
	draw := s.DrawInternal
	if count < 0 {
		return variate.NewStream(draw)
	}
	return variate.NewBoundedStream(draw, count)
}

// SnapshotCore 取得 Core 狀態暫存 當前僅提供取得 Core 狀態
//
// 之後要實作斷線重連時候提供 checkpoint 加入必要恢復資訊時實作
// SnapShot() <- 保留語意
func (s *Sampler) SnapshotCore() ([]byte, error) {
	return s.core.Snapshot()
}

// RestoreCore 恢復 Core 狀態暫存 當前僅提供恢復 Core 狀態
//
// 還原後呼叫端應自行確保取樣上下文已 Reset（Draw 的回放路徑會處理）。
func (s *Sampler) RestoreCore(src []byte) error {
	return s.core.Restore(src)
}
