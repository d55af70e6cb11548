package v1

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/distlab/recorder"
	"github.com/zintix-labs/distlab/spec"
	"github.com/zintix-labs/distlab/stats"
)

// DistStat 承載外部送入的原始取樣批：由設定 + 數值序列重建統計報表。
// 用途：別處（例如離線模擬、其他服務）產生的取樣，送來套用同一套動差/直方圖分析。
type DistStat struct {
	// DistSetting
	Cfg json.RawMessage `json:"cfg"`
	// 原始取樣值（離散結果也以 float64 傳）
	Values []float64 `json:"values"`
	// 是否附帶理論動差比對
	Check bool `json:"check,omitempty"`
}

func Stat(w http.ResponseWriter, r *http.Request) {
	// Post方法限定
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// 嘗試解析
	dst := new(DistStat)
	r.Body = http.MaxBytesReader(w, r.Body, 32<<20) // 32MB：原始取樣批可能很大
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(dst.Values) < 1 {
		http.Error(w, "values must not be empty", http.StatusBadRequest)
		return
	}

	ds, err := spec.GetDistSettingByJSON(dst.Cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := recorder.NewDrawRecorder(ds)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for _, v := range dst.Values {
		rec.Record(v)
	}
	st := rec.Done()

	type StatResponse struct {
		Stats   *stats.MomentReport `json:"stats"`
		Verdict *stats.Verdict      `json:"verdict,omitempty"`
	}
	resp := StatResponse{Stats: st}
	if dst.Check {
		resp.Verdict = st.Check(ds)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
}
