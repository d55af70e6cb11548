// Package app 定義管理長期運行元件的最小生命週期抽象。
package app

import "context"

// Component 抽象任何「可啟動 / 可關閉」的長生命週期元件。
//   - Run() 必須阻塞到元件停止為止（正常或錯誤）。
//   - Shutdown(ctx) 要求優雅關閉；實作方應尊重 ctx 的 deadline/cancel。
//
// 本專案的典型實例是 HTTP server（netsvr.ChiAdapter）；
// 之後若把 DrawRuntime 包成常駐 worker 也走這個介面。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}
