package middleware

import (
	"net/http"

	chimid "github.com/go-chi/chi/v5/middleware"
)

// Recover 委派 chi 的 Recoverer：handler panic 時回 500 並把 stack 寫進 log，
// 不讓單一 request 弄死整個 server。
// Sampler 借還層自己也有 recover，這裡是最外圈的保險絲。
func Recover(next http.Handler) http.Handler {
	return chimid.Recoverer(next)
}
