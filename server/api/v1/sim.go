package v1

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"net/http"
	"strconv"

	"github.com/zintix-labs/distlab"
	"github.com/zintix-labs/distlab/errs"
	"github.com/zintix-labs/distlab/server/httperr"
	"github.com/zintix-labs/distlab/spec"
	"github.com/zintix-labs/distlab/stats"
)

type SimHandler struct {
	Distlab *distlab.Distlab
}

func NewSimHandler(lab *distlab.Distlab) (*SimHandler, error) {
	return &SimHandler{Distlab: lab}, nil
}

func (sh *SimHandler) Sim(w http.ResponseWriter, q *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type SimRequestBody struct {
		DID   spec.DID `json:"did"`
		Round int      `json:"round"`
		Check bool     `json:"check,omitempty"`
		Seed  *int64   `json:"seed,omitempty"`
	}
	// 內部結構 不影響外部 也不被外部使用
	type SimResponse struct {
		Stats    *stats.MomentReport `json:"stats"`
		Verdict  *stats.Verdict      `json:"verdict,omitempty"`
		UsedTime int64               `json:"used_ms"`
	}
	// ---
	req := new(SimRequestBody)
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if q.Method == http.MethodGet {
		// did
		if s := q.URL.Query().Get("did"); s != "" {
			u, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("did must be non-negative integer"))
				return
			}
			req.DID = spec.DID(u)
		} else {
			// 直接空值
			httperr.Errs(w, errs.NewWarn("did is required"))
			return
		}

		// round
		if r := q.URL.Query().Get("round"); r != "" {
			u, err := strconv.ParseInt(r, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("round must be integer"))
				return
			}
			req.Round = int(u)
		} else {
			httperr.Errs(w, errs.NewWarn("round is required"))
			return
		}

		// check
		if c := q.URL.Query().Get("check"); c != "" {
			b, err := strconv.ParseBool(c)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("check must be bool"))
				return
			}
			req.Check = b
		}

		// seed
		if s := q.URL.Query().Get("seed"); s != "" {
			u, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("seed must be int64"))
				return
			}
			v := u
			req.Seed = &v
		}
	}
	if q.Method == http.MethodPost {
		if err := json.NewDecoder(q.Body).Decode(req); err != nil {
			httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
			return
		}
	}
	// 業務檢驗
	_, ok := sh.Distlab.EntryById(req.DID)
	if !ok {
		httperr.Errs(w, errs.NewWarn("did not found"))
		return
	}
	if req.Round < 1 || req.Round > 1000000 {
		httperr.Errs(w, errs.NewWarn("round must be between 1 to 1,000,000"))
		return
	}
	if req.Seed == nil {
		rnd, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			httperr.Errs(w, errs.NewWarn("seed generate failed"))
			return
		}
		v := rnd.Int64()
		req.Seed = &v
	}
	sim, err := sh.Distlab.NewSimulatorWithSeed(req.DID, *req.Seed)
	if err != nil {
		// 這裡的錯誤是來自 distlab 尊重錯誤分級
		httperr.Errs(w, errs.Wrap(err, fmt.Sprintf("build simulator err: %d", req.DID)))
		return
	}
	st, used, err := sim.Sim(req.Round, false)
	if err != nil {
		// 這裡的錯誤來自 simulator 尊重錯誤分級
		httperr.Errs(w, errs.Wrap(err, "simulate err"))
		return
	}
	resp := SimResponse{
		Stats:    st,
		UsedTime: used.Milliseconds(),
	}
	if req.Check {
		resp.Verdict = st.Check(sim.Setting())
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
