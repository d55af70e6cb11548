package middleware

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression 依 Accept-Encoding 以 zstd 或 gzip 壓縮回應。
// draw/sim 的 JSON 回應帶大量 float64 值，壓縮率很可觀，
// 所以預設掛在整條 router 上而不是只掛特定路由。

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade") ||
		r.Header.Get("Upgrade") != ""
}

func isNoBodyStatus(code int) bool {
	// 204 No Content / 304 Not Modified / 1xx 都不該有 body
	return (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified
}

// CompressConfig 控制兩種 encoder 的壓縮等級。
type CompressConfig struct {
	GzipLevel int
	ZstdLevel zstd.EncoderLevel
}

// DefaultCompressConfig 偏速度：數值 JSON 的重複樣式多，最快檔位就夠划算。
var DefaultCompressConfig = CompressConfig{
	GzipLevel: gzip.DefaultCompression,
	ZstdLevel: zstd.SpeedFastest,
}

// encoder 池：避免每個 request 重建壓縮器
var (
	gzipPool sync.Pool
	zstdPool sync.Pool
)

func getZstdWriter(w io.Writer) *zstd.Encoder {
	if v := zstdPool.Get(); v != nil {
		zw := v.(*zstd.Encoder)
		zw.Reset(w)
		return zw
	}
	zw, err := zstd.NewWriter(w,
		zstd.WithEncoderLevel(DefaultCompressConfig.ZstdLevel),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		panic(err)
	}
	return zw
}

func releaseZstdWriter(zw *zstd.Encoder) {
	_ = zw.Close()
	zstdPool.Put(zw)
}

func getGzipWriter(w io.Writer) *gzip.Writer {
	if v := gzipPool.Get(); v != nil {
		gw := v.(*gzip.Writer)
		gw.Reset(w)
		return gw
	}
	gw, _ := gzip.NewWriterLevel(w, DefaultCompressConfig.GzipLevel)
	return gw
}

func releaseGzipWriter(gw *gzip.Writer) {
	_ = gw.Close()
	gzipPool.Put(gw)
}

// compressResponseWriter 把壓縮器插在 handler 與底層 ResponseWriter 之間。
// disabled 代表 WriteHeader 階段判定本回應不該有 body，之後全部直寫底層。
type compressResponseWriter struct {
	http.ResponseWriter
	w        io.Writer
	disabled bool
}

func (crw *compressResponseWriter) Write(b []byte) (int, error) {
	if crw.disabled {
		return crw.ResponseWriter.Write(b)
	}

	// 壓縮後長度未知，Content-Length 一律拔掉
	crw.Header().Del("Content-Length")

	if crw.Header().Get("Content-Type") == "" {
		crw.Header().Set("Content-Type", http.DetectContentType(b))
	}

	return crw.w.Write(b)
}

func (crw *compressResponseWriter) WriteHeader(code int) {
	crw.Header().Del("Content-Length")

	// 204/304/1xx 不能帶壓縮 footer，當場停用
	if isNoBodyStatus(code) {
		crw.disabled = true
		crw.Header().Del("Content-Encoding")
		crw.Header().Del("Vary")
	}

	crw.ResponseWriter.WriteHeader(code)
}

func (crw *compressResponseWriter) Flush() {
	if !crw.disabled {
		if f, ok := crw.w.(interface{ Flush() error }); ok {
			_ = f.Flush()
		}
	}
	if f, ok := crw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (crw *compressResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := crw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support Hijacker")
	}
	return hj.Hijack()
}

func (crw *compressResponseWriter) Push(target string, opts *http.PushOptions) error {
	if p, ok := crw.ResponseWriter.(http.Pusher); ok {
		return p.Push(target, opts)
	}
	return errors.New("underlying response writer does not support Pusher")
}

// Compression 是 middleware 入口。zstd 優先於 gzip，兩者都不支援就原樣通過。
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// HEAD 與 WebSocket upgrade 不壓
		if r.Method == http.MethodHead || isWebSocketUpgrade(r) {
			next.ServeHTTP(w, r)
			return
		}

		// 上游已經壓過就不疊第二層
		if w.Header().Get("Content-Encoding") != "" {
			next.ServeHTTP(w, r)
			return
		}

		encoding := r.Header.Get("Accept-Encoding")

		if strings.Contains(encoding, "zstd") {
			w.Header().Set("Content-Encoding", "zstd")
			w.Header().Add("Vary", "Accept-Encoding")

			zw := getZstdWriter(w)
			crw := &compressResponseWriter{ResponseWriter: w, w: zw}
			defer func() {
				// disabled 時把 encoder 指到 Discard，Close 產的 footer 不會
				// 污染 204/304 回應
				if crw.disabled {
					zw.Reset(io.Discard)
				}
				releaseZstdWriter(zw)
			}()

			next.ServeHTTP(crw, r)
			return
		}

		if strings.Contains(encoding, "gzip") {
			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Add("Vary", "Accept-Encoding")

			gw := getGzipWriter(w)
			crw := &compressResponseWriter{ResponseWriter: w, w: gw}
			defer func() {
				if crw.disabled {
					gw.Reset(io.Discard)
				}
				releaseGzipWriter(gw)
			}()

			next.ServeHTTP(crw, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}
