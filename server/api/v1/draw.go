package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/zintix-labs/distlab"
	"github.com/zintix-labs/distlab/dto"
	"github.com/zintix-labs/distlab/errs"
	"github.com/zintix-labs/distlab/server/httperr"
	"github.com/zintix-labs/distlab/server/svrcfg"
)

func (c *DrawHandler) Draw(w http.ResponseWriter, q *http.Request) {
	// 請求方法、結構體校驗
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := dto.DecodeDrawRequest(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// 請求解析完成，設置超時 context
	ctx := q.Context()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// 開始 Draw
	result, err := c.rt.Draw(ctx, req)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		httperr.Errs(w, err)
		return
	}
}

// Metrics 回傳各 SamplerPool 的觀測快照（拉取式）。
func (c *DrawHandler) Metrics(w http.ResponseWriter, q *http.Request) {
	if q.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(c.rt.Metrics()); err != nil {
		httperr.Errs(w, err)
		return
	}
}

// ============================================================
// ** DrawHandler **
// ============================================================

type DrawHandler struct {
	rt *distlab.DrawRuntime
}

func NewDrawHandler(sCfg *svrcfg.SvrCfg) (*DrawHandler, error) {
	rt, err := sCfg.Distlab.BuildRuntime(sCfg.SamplerBufSize)
	if err != nil {
		return nil, errs.Wrap(err, "build draw handler error")
	}
	return &DrawHandler{rt: rt}, nil
}
