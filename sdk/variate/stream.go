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

import "iter"

// Stream 把「取樣器 + 描述子 + 亂數來源」綁成惰性序列。
//
// 兩種模式：
//   - 無界：每次 Next 取一個新樣本，永遠不會耗盡。
//   - 有界：恰好產出 count 個樣本後回報耗盡；count == 0 是立即耗盡的合法序列。
//
// Stream 不可重播：耗盡後不能 reset，要重跑取樣請建一個新的 Stream
// （必要時搭配 core 的 Snapshot/Restore 取得相同序列）。
type Stream[T any] struct {
	draw    func() T
	remain  int
	bounded bool
}

// NewStream 建立無界序列。
func NewStream[T any](draw func() T) *Stream[T] {
	if draw == nil {
		panic("variate: nil draw func")
	}
	return &Stream[T]{draw: draw}
}

// NewBoundedStream 建立恰好產出 count 個樣本的有界序列。count 不可為負。
func NewBoundedStream[T any](draw func() T, count int) *Stream[T] {
	if draw == nil {
		panic("variate: nil draw func")
	}
	if count < 0 {
		panic("variate: negative stream count")
	}
	return &Stream[T]{draw: draw, remain: count, bounded: true}
}

// Next 取下一個樣本。第二個回傳值為 false 表示序列已耗盡
// （只有有界序列會發生）。
func (st *Stream[T]) Next() (T, bool) {
	if st.bounded {
		if st.remain == 0 {
			var zero T
			return zero, false
		}
		st.remain--
	}
	return st.draw(), true
}

// Bounded 回報這個序列是否有界。
func (st *Stream[T]) Bounded() bool {
	return st.bounded
}

// Remaining 回傳有界序列還剩幾個樣本；無界序列回傳 -1。
func (st *Stream[T]) Remaining() int {
	if !st.bounded {
		return -1
	}
	return st.remain
}

// Seq 讓 Stream 能直接用於 for-range。
// 有界序列 range 到耗盡為止；無界序列除非 break 否則不會結束。
func (st *Stream[T]) Seq() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := st.Next()
			if !ok {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Collect 把有界序列剩餘的樣本一次取完，回傳定長有序 slice。
// 對無界序列呼叫是呼叫端缺陷，直接 panic。
func (st *Stream[T]) Collect() []T {
	if !st.bounded {
		panic("variate: collect on unbounded stream")
	}
	out := make([]T, 0, st.remain)
	for {
		v, ok := st.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

// Stream 建立該連續描述子的無界序列。
func (s *Source[F]) Stream(d Continuous[F]) *Stream[F] {
	return NewStream(func() F { return s.Draw(d) })
}

// StreamN 建立該連續描述子的有界序列（恰好 count 個）。
func (s *Source[F]) StreamN(d Continuous[F], count int) *Stream[F] {
	return NewBoundedStream(func() F { return s.Draw(d) }, count)
}

// DiscreteStream 建立離散描述子的無界序列。
func DiscreteStream[N Count, P Real](s *Source[P], d Discrete[N, P]) *Stream[N] {
	return NewStream(func() N { return DrawDiscrete(s, d) })
}

// DiscreteStreamN 建立離散描述子的有界序列（恰好 count 個）。
func DiscreteStreamN[N Count, P Real](s *Source[P], d Discrete[N, P], count int) *Stream[N] {
	return NewBoundedStream(func() N { return DrawDiscrete(s, d) }, count)
}
