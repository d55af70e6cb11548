// Package dev 提供 Distlab 的「內部 Dev Panel」HTTP endpoints。
//
// 目的（ explain the why ）：
//   - 給數學家 / 後端在開發期快速驗證：指定分布、Seed / Snap，然後執行 Draw 或 Sim。
//   - 支援可回放（replay）：把 Snapshot（Snap）以字串形式在前端顯示，並可貼回後端做 Restore。
//
// 注意（ contract ）：
//   - 這不是 production API；它偏向 debug / tooling，行為允許更寬鬆，但仍需維持 deterministic concludes。
//   - 這裡的錯誤處理走 `httperr.Errs`（以 errs.Warn/errs.Fatal 對應 HTTP response）。
//   - Seed/Snap 的互斥與優先級由前端 + 後端共同保證（Snap takes precedence）。
package dev

import (
	"crypto/rand"
	"embed"
	"encoding/json"
	"math"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/zintix-labs/distlab"
	"github.com/zintix-labs/distlab/catalog"
	"github.com/zintix-labs/distlab/errs"
	"github.com/zintix-labs/distlab/server/httperr"
	"github.com/zintix-labs/distlab/server/netsvr"
	"github.com/zintix-labs/distlab/server/svrcfg"
	"github.com/zintix-labs/distlab/spec"
)

// devRequest 是 Dev Panel 的「輸入 payload」。
//
// 兼容性（backward compatibility）：
//   - 同時保留 `rounds` 與舊欄位 `round`。
//   - `did` 與 `dist` 兩者擇一即可；若兩者同時存在，後端會優先使用 did 做解析。
//
// Seed / Snap：
//   - Seed（int64 string）用於 deterministic 起始；若為空字串則自動生成（crypto/rand）。
//   - Snap（base64url string）代表 core snapshot；若提供 Snap，則後端以 Snap Restore 為準（Snap precedence）。
//
// 注意：
//   - 這個 struct 是 API 邊界用的 DTO；不要把它滲透到 variate / math domain。
type devRequest struct {
	DID    int64  `json:"did"`
	Dist   string `json:"dist"`
	Rounds int    `json:"rounds"`
	Round  int    `json:"round"`
	Seed   string `json:"seed"`
	Snap   string `json:"snap"`
}

// round() 將 rounds/round 做兼容合併：優先 rounds，其次 round；若都未提供則回 0。
func (r devRequest) round() int {
	if r.Rounds > 0 {
		return r.Rounds
	}
	if r.Round > 0 {
		return r.Round
	}
	return 0
}

// Register 掛載 Dev Panel routes：頁面、favicon、meta、draw、sim。
func Register(svr netsvr.NetSvr, cfg *svrcfg.SvrCfg) {
	svr.Get("/dev", devPage)
	svr.Get("/favicon.svg", favicon)
	svr.Get("/dev/meta", devMeta(cfg))
	svr.Post("/dev/draw", devDraw(cfg))
	svr.Post("/dev/sim", devSim(cfg))
}

// devPage 回傳內嵌 HTML（single page）。這裡不做 templating，降低 dev tool 維護成本。
func devPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(devPageHTML))
}

// favicon 提供 Dev Panel 的 favicon.svg。
func favicon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write([]byte(faviconSVG))
}

// devMeta 回傳 Catalog summary（JSON）。
//
// 前端依賴欄位：
//   - did
//   - name / dist
//   - family / kind
func devMeta(cfg *svrcfg.SvrCfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		lab, ok := getDistlab(cfg)
		if !ok {
			httperr.Errs(w, errs.NewFatal("distlab is required"))
			return
		}
		sum, err := lab.Summary()
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sum)
	}
}

// devDraw 執行「可回放」的 Draw。
//
// 流程（high level）：
//  1. decode devRequest（JSON body）
//  2. resolve dist（did/name）→ catalog.Summary
//  3. resolve seed（empty = auto）
//  4. 建立 DevSimulator → Draws() 或 RestoreDraws()
//
// Snap precedence：若 snap 非空，會走 RestoreDraws(snap, ...)。
func devDraw(cfg *svrcfg.SvrCfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		req := new(devRequest)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
			return
		}
		lab, ok := getDistlab(cfg)
		if !ok {
			httperr.Errs(w, errs.NewFatal("distlab is required"))
			return
		}
		sum, err := resolveSummary(lab, req)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		round := req.round()
		if round < 1 {
			httperr.Errs(w, errs.NewWarn("round is required"))
			return
		}
		snap := strings.TrimSpace(req.Snap)
		seed, err := resolveSeed(req.Seed)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		sim, err := lab.NewDevSimulator(sum.DID, seed)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		var report distlab.DevDrawReport
		if snap != "" {
			report, err = sim.RestoreDraws(snap, round)
		} else {
			report, err = sim.Draws(round)
		}
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(report)
	}
}

// devSim 執行統計模擬（simulation）。
//
// 和 devDraw 的差異：
//   - devSim 不回逐筆 results（降低 response size），僅回 DevSimReport（statistic）。
//   - 若提供 snap，會走 RestoreSim(snap, ...)。
func devSim(cfg *svrcfg.SvrCfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		req := new(devRequest)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
			return
		}
		lab, ok := getDistlab(cfg)
		if !ok {
			httperr.Errs(w, errs.NewFatal("distlab is required"))
			return
		}
		sum, err := resolveSummary(lab, req)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		round := req.round()
		if round < 1 {
			httperr.Errs(w, errs.NewWarn("round is required"))
			return
		}
		snap := strings.TrimSpace(req.Snap)
		seed, err := resolveSeed(req.Seed)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		sim, err := lab.NewDevSimulator(sum.DID, seed)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		var report distlab.DevSimReport
		if snap != "" {
			report, err = sim.RestoreSim(snap, round)
		} else {
			report, err = sim.Sim(round)
		}
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(report)
	}
}

// getDistlab 從 server config 取得已組裝的 Distlab instance。
// Dev routes 不負責組裝（assembler），只負責使用（runtime entry）。
func getDistlab(cfg *svrcfg.SvrCfg) (*distlab.Distlab, bool) {
	if cfg == nil || cfg.Distlab == nil {
		return nil, false
	}
	return cfg.Distlab, true
}

// resolveSummary 解析使用者指定的分布：
//   - 若 did > 0：以 did 精準匹配（fast path）。
//   - 否則若 dist(name) 非空：先做 case-insensitive name 匹配；也允許把 dist 當作數字字串解析成 did。
func resolveSummary(lab *distlab.Distlab, req *devRequest) (catalog.Summary, error) {
	sums, err := lab.Summary()
	if err != nil {
		return catalog.Summary{}, err
	}
	if req.DID > 0 {
		did := spec.DID(req.DID)
		for _, s := range sums {
			if s.DID == did {
				return s, nil
			}
		}
		return catalog.Summary{}, errs.NewWarn("did not found")
	}
	name := strings.TrimSpace(req.Dist)
	if name != "" {
		for _, s := range sums {
			if strings.EqualFold(s.Name, name) {
				return s, nil
			}
		}
		if did, err := strconv.ParseUint(name, 10, 32); err == nil {
			sd := spec.DID(did)
			for _, s := range sums {
				if s.DID == sd {
					return s, nil
				}
			}
		}
		return catalog.Summary{}, errs.NewWarn("dist not found")
	}
	return catalog.Summary{}, errs.NewWarn("dist is required")
}

// resolveSeed 解析 seed（int64 string）。
//   - 空字串：自動生成 seed（crypto/rand），方便快速測試。
//   - 非空：必須為合法 int64。
func resolveSeed(seed string) (int64, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return randomSeed()
	}
	v, err := strconv.ParseInt(seed, 10, 64)
	if err != nil {
		return 0, errs.NewWarn("seed must be int64")
	}
	return v, nil
}

// randomSeed 使用 crypto/rand 產生 [0, MaxInt64) 的種子。
// 目的：避免 math/rand 的 deterministic 來源造成 seed 品質偏差（dev tool 也要可依賴）。
func randomSeed() (int64, error) {
	rnd, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0, errs.NewWarn("seed generate failed")
	}
	return rnd.Int64(), nil
}

//go:embed favicon.svg
var faviconSVG string

// keep embed imported even if only used for directives
var _ embed.FS
