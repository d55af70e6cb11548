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

package variate

import "github.com/zintix-labs/distlab/sdk/core"

// Source 是一次取樣呼叫的「繪製上下文」：
// 綁定一個均勻亂數核心，並持有該浮點型別的高斯備用值（Box-Muller spare）。
//
// 為什麼 spare 放在 Source 而不是全域 per-type slot：
//   - spare 是可變狀態。全域 slot 會讓同型別的並發高斯取樣變成 data race，
//     且兩個毫不相干的取樣流會互吃對方的備用值。
//   - 放進 Source 後，狀態的所有權與生命週期由呼叫端決定：
//     一個 goroutine 一個 Source，就不存在共享。
//
// 並發語意：Source 本身不加鎖，同一個 Source 不可被多 goroutine 同時使用
// （與 core.Core 的合約一致）。需要並發時，為每個 worker 以派生 seed
// 各建一個 Source。
//
// spare 存的是「未縮放的標準常態值」：mean/sd 是取得 spare 之後才套用，
// 因此同一個 Source 上連續兩次不同參數的 gaussian 取樣共用同一輪
// Box-Muller 是正確的。
type Source[F Real] struct {
	c        *core.Core
	spare    F
	hasSpare bool
}

// NewSource 建立繪製上下文。c 不能為 nil。
func NewSource[F Real](c *core.Core) *Source[F] {
	if c == nil {
		panic("variate: nil core")
	}
	return &Source[F]{c: c}
}

// Core 回傳底層亂數核心（快照/還原走這裡）。
func (s *Source[F]) Core() *core.Core {
	return s.c
}

// Reset 丟棄已快取的 Box-Muller spare。
//
// spare 活在 Source，不在 Core 的 Snapshot 裡：若要以 Core 快照做回放/續抽，
// 必須先 Reset，讓接下來的取樣序列成為「純粹由 Core 狀態決定」的函數。
func (s *Source[F]) Reset() {
	s.hasSpare = false
	s.spare = 0
}

// Uniform 回傳閉區間 [lo,hi] 的均勻變量。
func (s *Source[F]) Uniform(lo, hi F) F {
	return F(s.c.Float64Range(float64(lo), float64(hi)))
}

// unit 回傳 canonical 閉區間 [0,1] 的一次均勻 draw。
// 連續與離散取樣演算法中的 draw(0,1) 都走這裡。
func (s *Source[F]) unit() F {
	return F(s.c.Float64C())
}

// norm 回傳一個標準常態變量（polar Box-Muller）。
//
// 一輪接受的迴圈產生兩個獨立的標準常態值：一個立即回傳，
// 另一個存入 spare，下一次 norm 直接消耗而不再動用亂數核心。
// 迴圈沒有迭代上限；接受率約 π/4，期望迭代次數 < 2。
func (s *Source[F]) norm() F {
	if s.hasSpare {
		s.hasSpare = false
		return s.spare
	}
	for {
		x1 := 2*s.unit() - 1
		x2 := 2*s.unit() - 1
		w := x1*x1 + x2*x2
		if w >= 1 || w == 0 {
			continue
		}
		multiplier := sqrt(-2 * ln(w) / w)
		s.spare = x2 * multiplier
		s.hasSpare = true
		return x1 * multiplier
	}
}
