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

package core

import "math/bits"

// PRNG 定義 Core 所需的亂數來源，需同時支援取樣與狀態保存/還原。
type PRNG interface {
	RAND
	Restorable
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// RAND 定義核心亂數取樣能力。
//
// 為什麼要求同時提供 4 個方法（Uint64 / Float64 / UintN / IntN），而不是只要求 Uint64？
//
// 1) 允許實作針對 32-bit / 64-bit 平台做最佳化
//   - 有些 PRNG 的「原生輸出寬度」是 32-bit（以 uint32 為核心），直接產生 uint32/uint
//     可能更快；也有 64-bit PRNG 在 64-bit 平台上直接提供 Uint64/UintN 更自然。
//   - 若合約只要求 Uint64，32-bit 友善的 PRNG 會被迫退化成「先產生 uint64 再裁切」。
//   - bounded 生成（IntN/UintN）交由 PRNG 自己實作，能讓每個 PRNG 用最合適的策略。
//
// 2) Float64 的精度與生成方式應由 PRNG 決定
//   - Float64 通常使用 53-bit mantissa 生成 [0,1)；但有些實作只提供 32-bit 精度。
//     讓 PRNG 自己提供 Float64，可以明確表達精度與效能取捨。
type RAND interface {
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
	// UintN 回傳 [0,max) 的 uint 亂數，若 max == 0 回傳 0。
	UintN(uint) uint
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(int) int
}

type PRNGFactory interface {
	// New 以指定 seed 建立新的 PRNG。
	//
	// 合約（很重要）：在同一個實作與同一個版本下，New(seed) 必須是「決定性」的——
	// 相同的 seed 必須產生相同的初始內部狀態與輸出序列。
	//
	// 為什麼只保留 New？
	//   - Distlab 需要可重現（審計/回放/併發模擬的多 Sampler 派生）。
	//   - seed 的生命週期由 Lab 統一管理：外部未提供時由 Lab 產生並保存 baseSeed，
	//     後續所有 Sampler/Simulator 皆由 baseSeed 以固定算法派生子 seed。
	New(int64) PRNG
}

// DefaultPRNG 實作預設的 PRNGFactory（PCG64 核心）。
type DefaultPRNG struct{}

// New 滿足合約
func (d *DefaultPRNG) New(seed int64) PRNG {
	return NewPCG64WithSeed(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// Core 封裝 PRNG，並提供變量取樣層需要的閉區間取樣方法。
type Core struct {
	PRNG
}

// New 允許使用外部自實現的 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{rng}
}

// float64CUnit = 1/(2^53-1)，讓 53-bit 整數映射到「含上界」的 [0,1]。
const float64CUnit = 1.0 / ((1 << 53) - 1)

// Float64C 回傳閉區間 [0,1] 的浮點亂數。
//
// 與 Float64()（半開 [0,1)）的差異只在上界可達：
// 變量取樣的 draw(lo,hi) 合約是閉區間，上下界都必須可能出現。
func (c *Core) Float64C() float64 {
	return float64(c.Uint64()>>11) * float64CUnit
}

// Float64Range 回傳閉區間 [lo,hi] 的均勻浮點亂數。
//
// lo > hi 視為呼叫端缺陷，直接 panic（fail-fast）。
// lo == hi 退化為常數。
func (c *Core) Float64Range(lo, hi float64) float64 {
	if lo > hi {
		panic("core: Float64Range lo > hi")
	}
	return lo + (hi-lo)*c.Float64C()
}

// Int64Range 回傳閉區間 [lo,hi] 的均勻整數亂數。
//
// 離散 uniform 分布委派到這裡（結果型別自己的閉區間取樣）。
// lo > hi 視為呼叫端缺陷，直接 panic。
func (c *Core) Int64Range(lo, hi int64) int64 {
	if lo > hi {
		panic("core: Int64Range lo > hi")
	}
	span := uint64(hi-lo) + 1
	if span == 0 { // 整個 int64 值域
		return int64(c.Uint64())
	}
	return lo + int64(c.uint64below(span))
}

// uint64below 回傳 [0,n) 的無偏亂數（乘法高位 + 拒絕採樣）。
// 與 PCG64.uint64n 同一策略，但建立在 RAND 合約上，
// 讓注入的自製 PRNG 也能拿到無偏的大範圍 bounded 取樣。
func (c *Core) uint64below(n uint64) uint64 {
	if n&(n-1) == 0 { // n is power of two, can mask
		return c.Uint64() & (n - 1)
	}
	hi, lo := bits.Mul64(c.Uint64(), n)
	if lo < n {
		thresh := -n % n
		for lo < thresh {
			hi, lo = bits.Mul64(c.Uint64(), n)
		}
	}
	return hi
}
