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

// Package app 提供應用程式生命週期管理（App），統一啟動與關閉多個 Component。
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// shutdownGrace 是優雅關閉的總預算；超時的 Component 由實作自行決定是否硬停。
const shutdownGrace = 5 * time.Second

// App 管理一組長生命週期 Component：一起啟動，
// 收到 OS 信號或任一 Component 出錯時一起優雅關閉。
type App struct {
	comps []Component
}

// New 建立空的 App。
func New() *App { return &App{} }

// NewWith 是 New 的語法糖，建立同時註冊多個 Component。
func NewWith(comps ...Component) *App {
	app := New()
	for _, c := range comps {
		app.Register(c)
	}
	return app
}

// Register 註冊一個 Component，Run 時納入管理。
func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// Run 以 goroutine 並行啟動所有 Component 並阻塞等待。
//
// 退出路徑有兩條：
//   - 收到 SIGINT/SIGTERM：優雅關閉後回傳 nil，視為正常結束。
//   - 任一 Component.Run 回傳錯誤：優雅關閉後回傳該錯誤。
//
// 前提是每個 Component.Run 都是阻塞呼叫，代表該元件的完整生命週期。
func (a *App) Run() error {
	// 收第一個出錯的 Component；buffered 讓其餘 goroutine 不會卡住
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		a.gracefulShutdown(shutdownGrace)
		return nil
	case err := <-errCh:
		a.gracefulShutdown(shutdownGrace)
		return err
	}
}

// gracefulShutdown 在 timeout 內依註冊順序呼叫所有 Component.Shutdown。
// 關閉錯誤只印不擋，剩下的 Component 照樣要關。
func (a *App) gracefulShutdown(td time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), td)
	defer cancel()
	for _, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stdout, "shutdown err: %v\n", err)
		}
	}
}
