// Package index 提供服務根路徑的 landing page：列出可用的 API 入口，方便人工探索。
package index

import "net/http"

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Distlab</title></head>
<body style="font-family:monospace;background:#10131a;color:#d7dce5;padding:24px">
<h1 style="color:#4da3ff">Distlab</h1>
<p>distribution sampling service</p>
<ul>
  <li><a href="/dev" style="color:#4da3ff">/dev</a> dev panel</li>
  <li>GET/POST /v1/draw  (dist | did, count, start_state)</li>
  <li>GET/POST /v1/sim   (did, round, check, seed)</li>
  <li>POST /v1/simbycfg  (cfg, round, seed)</li>
  <li>POST /v1/stat      (cfg, values, check)</li>
  <li>GET /v1/metrics    (sampler pool snapshots)</li>
</ul>
</body>
</html>`

// IndexHandlerFn 回傳靜態 landing page。
func IndexHandlerFn(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}
