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

// Package distlab 提供 Distlab 引擎的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// 你可以把 Distlab 視為一個「可被後端/模擬器使用的 runtime」，它負責把下列兩個必需的地基組裝在一起，並提供建立 Sampler 的入口：
//  1. Catalog：分布目錄（Single Source of Truth / SSOT），定義有哪些分布、各自對應的設定檔名稱（ConfigName）。
//  2. PRNGFactory：亂數核心工廠，保證可重現（reproducible）與可審計（auditable）。
//
// 設計重點：
//   - Distlab 本身不綁定任何「檔案路徑」概念：設定檔來源一律以 fs.FS 的形式注入。
//   - Distlab 會持有一份 Catalog（你要跑哪一批分布/設定檔）。
//   - Sampler 是對外提供 Draw 的最小單位；取樣演算法本身位於 sdk/variate。
//
// 典型使用情境：
//   - 後端服務（HTTP）：由 Distlab 建立 Sampler，Sampler 對外提供 Draw。
//   - 模擬器（sim）：由 Distlab 建立多台 Sampler 進行大量取樣與統計驗證。
package distlab

import (
	"crypto/rand"
	"fmt"
	"io/fs"
	"math"
	"math/big"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/distlab/catalog"
	"github.com/zintix-labs/distlab/errs"
	"github.com/zintix-labs/distlab/sdk/core"
	"github.com/zintix-labs/distlab/spec"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 為什麼是 fs.FS：
//   - 你可以用 go:embed 把 configs 直接編進 binary（部署最穩定，不依賴工作目錄）。
//   - 也可以用 os.DirFS 在本機開發時讀取目錄。
//
// Distlab 不解析「路徑」：它只依賴 fs.FS + ConfigName（檔名）來取得設定內容。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Distlab 是「組裝器（assembler）」與「運行入口（runtime entry）」。
//
// 使用流程通常分成兩階段：
//   - 註冊/組裝階段（registration/build）：建立 catalog、檢查重複與缺漏。
//   - 執行階段（runtime）：依據分布 ID 產生 Sampler，並在 Sampler 上執行 Draw。
//
// 重要設計原則：
//   - Catalog 的 ID 唯一性只保證在「同一個 Distlab instance」內。
//   - 你要跑哪一批分布、哪一套設定檔，必須由 New() 的參數明確決定。
//   - runtime 一旦開始（例如已建立 Sampler 並對外服務），不建議再變更 Catalog。
type Distlab struct {
	cat *catalog.Catalog
	cf  core.PRNGFactory
	sum []catalog.Summary
}

// New 建立一個 Distlab instance。
//
// 這是「組裝階段（registration/build）」的入口：
//   - 會建立 Catalog（通常同時做檔名存在性/重複性檢查，避免 runtime 才爆）。
//   - 會保存 PRNGFactory，確保由這個 Distlab 建出來的 Sampler 在 RNG 行為上具有一致性。
//
// 參數要求（是合約的一部分）：
//   - cf 不能為 nil：沒有 RNG 工廠就無法建立可重現/可審計的核心。
//   - cfgs 至少一個：沒有設定檔來源，Catalog 無法解析 DistSetting。
func New(cf core.PRNGFactory, cfgs []fs.FS) (*Distlab, error) {
	if cf == nil {
		return nil, errs.NewFatal("prng factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	lab := &Distlab{
		cat: cata,
		cf:  cf,
	}
	return lab, nil
}

// NewAuto 建立一個直接進入執行階段的 Distlab instance。
func NewAuto(cf core.PRNGFactory, cfgs []fs.FS) (*Distlab, error) {
	lab, err := New(cf, cfgs)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

func (p *Distlab) Register(ents ...catalog.Entry) error {
	return p.cat.Register(ents...)
}

// RegisterAll
//
// 會掃描 catalog 持有的設定檔來源（fs.FS），把所有可辨識的設定檔（.yaml/.yml/.json）嘗試解析成
// *spec.DistSetting，並用設定檔內宣告的 DistID/DistName 產生對應的 catalog.Entry 來批次註冊。
//
// 行為特性（重要）：
//  1. Fail-fast：任何一個檔案讀取/解析/基本檢查失敗，都會立刻回傳 error（不會忽略、也不會繼續掃完）。
//  2. 原子性：只有當「全部檔案」都成功解析並通過基本檢查時，才會呼叫 Register(...) 一次性寫入。
//     因此不會出現只註冊了一半、導致 catalog 處於半完成狀態的情況。
//  3. 穩定性：會依檔名排序後再處理，確保行為 determinism（方便重現與除錯）。
func (p *Distlab) RegisterAll() error {
	cfgs := p.cat.Cfg()
	sources := cfgs.Sources()
	if len(sources) == 0 {
		return errs.NewFatal("configs required")
	}

	entries := make([]catalog.Entry, 0, 64)
	seenID := map[spec.DID]string{}
	seenName := map[string]string{}

	for _, src := range sources {
		walkErr := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("configs must be flat (no subdir): %q", path))
			}

			base := filepath.Base(path)
			if strings.Contains(path, "/") && path != base {
				return errs.NewFatal(fmt.Sprintf("configs must be flat (nested path): %q", path))
			}
			if strings.HasPrefix(base, ".") {
				return nil
			}

			ext := strings.ToLower(filepath.Ext(base))
			if ext != ".yaml" && ext != ".yml" && ext != ".json" {
				return nil
			}

			raw, rerr := fs.ReadFile(src, path)
			if rerr != nil {
				return errs.NewFatal(fmt.Sprintf("read config failed: %s", base))
			}

			var (
				ds   *spec.DistSetting
				derr error
			)
			switch ext {
			case ".yaml", ".yml":
				ds, derr = spec.GetDistSettingByYAML(raw)
			case ".json":
				ds, derr = spec.GetDistSettingByJSON(raw)
			default:
				return errs.NewFatal(fmt.Sprintf("unsupported config format: %q", base))
			}
			if derr != nil {
				return errs.NewFatal(fmt.Sprintf("parse distsetting failed: %s", base))
			}

			name := strings.TrimSpace(ds.DistName)
			if name == "" {
				return errs.NewFatal(fmt.Sprintf("dist name required: %s", base))
			}

			id := ds.DistID
			if prev, ok := seenID[id]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate dist id: %d (config=%s and %s)", id, prev, base))
			}
			if _, ok := p.cat.GetByID(id); ok {
				return errs.NewFatal(fmt.Sprintf("dist id already registered: %d (config=%s)", id, base))
			}
			seenID[id] = base

			nameKey := strings.ToLower(name)
			if prev, ok := seenName[nameKey]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate dist name: %s (config=%s and %s)", nameKey, prev, base))
			}
			if _, ok := p.cat.GetByName(name); ok {
				return errs.NewFatal(fmt.Sprintf("dist name already registered: %s (config=%s)", name, base))
			}
			seenName[nameKey] = base

			entries = append(entries, catalog.Entry{
				DID:        id,
				Name:       name,
				ConfigName: base,
			})
			return nil
		})
		if walkErr != nil {
			return walkErr
		}
	}

	if len(entries) == 0 {
		return errs.NewFatal("no config files found to register")
	}

	return p.cat.Register(entries...)
}

func (p *Distlab) Freeze() {
	p.cat.Freeze()
}

func (p *Distlab) EntryById(id spec.DID) (catalog.Entry, bool) {
	return p.cat.GetByID(id)
}

func (p *Distlab) EntryByName(name string) (catalog.Entry, bool) {
	return p.cat.GetByName(name)
}

func (p *Distlab) IDs() []spec.DID {
	return p.cat.IDs()
}

func (p *Distlab) All() []catalog.Entry {
	return p.cat.All()
}

func (p *Distlab) SettingById(id spec.DID) (*spec.DistSetting, error) {
	return p.cat.DistSettingById(id)
}

func (p *Distlab) Summary() ([]catalog.Summary, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	if p.sum != nil {
		return p.sum, nil
	}
	ids := p.cat.IDs()
	cs := make([]catalog.Summary, 0, len(ids))
	for _, id := range ids {
		ds, err := p.cat.DistSettingById(id)
		if err != nil {
			return nil, errs.NewFatal("parse dist setting failed")
		}
		s := catalog.Summary{
			DID:    id,
			Name:   ds.DistName,
			Family: ds.Family,
			Kind:   ds.Kind,
		}
		cs = append(cs, s)
	}
	p.sum = cs
	return p.sum, nil
}

// NewSampler 依據 Catalog 內的分布 ID 建立一台 Sampler。
//
// 行為：
//  1. 由 Catalog 取得對應的 DistSetting（通常來自 fs.FS 內的 YAML/JSON）。
//  2. 以 PRNGFactory 產生 RNG 核心（seed 由 crypto/rand 產生）。
//  3. 依 DistSetting 的 family/kind 組出取樣描述子。
//
// 注意：seed 會被記錄在 Sampler 內（initseed），用於追溯/重現；真正的可審計能力以 Core 的 Snapshot/Restore 合約為準。
func (p *Distlab) NewSampler(id spec.DID) (*Sampler, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	ds, err := p.cat.DistSettingById(id)
	if err != nil {
		return nil, err
	}
	return newSampler(ds, p.cf)
}

// NewSamplerWithSeed 與 NewSampler 相同，但由呼叫端指定初始 seed。
//
// 使用情境：
//   - 可重現的測試：同一份設定 + 同一個 seed，應產生一致的隨機序列（取決於 Core 實作）。
//
// 注意：seed 只是「出生入口」。若要在任意時間點完整重現，請使用 Core 的 Snapshot/Restore（以 []byte 交換狀態）。
func (p *Distlab) NewSamplerWithSeed(id spec.DID, seed int64) (*Sampler, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	ds, err := p.cat.DistSettingById(id)
	if err != nil {
		return nil, err
	}
	return newSamplerWithSeed(ds, p.cf, seed)
}

func (p *Distlab) NewSamplerByJSON(raw []byte, seed int64) (*Sampler, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetDistSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validCfg(cfg); err != nil {
		return nil, err
	}
	return newSamplerWithSeed(cfg, p.cf, seed)
}

func (p *Distlab) NewSamplerByYAML(raw []byte, seed int64) (*Sampler, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetDistSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validCfg(cfg); err != nil {
		return nil, err
	}
	return newSamplerWithSeed(cfg, p.cf, seed)
}

func (p *Distlab) validCfg(cfg *spec.DistSetting) error {
	ent, ok := p.cat.GetByID(cfg.DistID)
	if !ok {
		return errs.NewWarn("did not exist")
	}
	ent2, ok := p.cat.GetByName(cfg.DistName)
	if !ok {
		return errs.NewWarn("dist name not exist")
	}
	if ent.DID != ent2.DID {
		return errs.NewWarn("dist id is not matched dist name")
	}
	return nil
}

func (p *Distlab) NewSimulator(id spec.DID) (*Simulator, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	ds, err := p.cat.DistSettingById(id)
	if err != nil {
		return nil, err
	}
	return newSimulator(ds, p.cf)
}

func (p *Distlab) NewSimulatorWithSeed(id spec.DID, seed int64) (*Simulator, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	ds, err := p.cat.DistSettingById(id)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(ds, p.cf, seed)
}

func (p *Distlab) NewSimulatorByJSON(raw []byte, seed int64) (*Simulator, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetDistSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validCfg(cfg); err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(cfg, p.cf, seed)
}

func (p *Distlab) NewSimulatorByYAML(raw []byte, seed int64) (*Simulator, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetDistSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validCfg(cfg); err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(cfg, p.cf, seed)
}

// BuildRuntime 建立對外服務用的 DrawRuntime：每個已註冊分布各建一個大小為 poolSize 的 SamplerPool。
//
// 行為：
//  1. 進入 runtime 前，catalog 必須 Freeze（這裡會代為 Freeze）。
//  2. fail-fast：任何一個池建立失敗，整個 BuildRuntime 失敗。
func (p *Distlab) BuildRuntime(poolSize int) (*DrawRuntime, error) {
	// 1. 進入 runtime 前，catalog 必須 Freeze
	p.Freeze()

	ids := p.cat.IDs()
	if len(ids) == 0 {
		return nil, errs.NewFatal("no dists registered")
	}

	rt := &DrawRuntime{
		lab:      p,
		pools:    make(map[spec.DID]*SamplerPool, len(ids)),
		ids:      ids,
		done:     make(chan struct{}),
		poolSize: max(1, poolSize),
	}
	rt.reason.Store("")

	// 2. 先全建好（fail-fast + cleanup）
	for _, id := range ids {
		ds, err := p.cat.DistSettingById(id)
		if err != nil {
			return nil, err
		}

		seed, err := cryptoSeed()
		if err != nil {
			return nil, err
		}
		mp, err := newSamplerPool(rt.poolSize, ds, p.cf, seed)
		if err != nil {
			return nil, err
		}
		rt.pools[id] = mp
	}
	return rt, nil
}

// cryptoSeed 以 crypto/rand 產生非負 seed（對外服務避免可預測 RNG）。
func cryptoSeed() (int64, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0, errs.Wrap(err, "new crypto seed error in go std lib")
	}
	return seed.Int64(), nil
}
