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

// Package variate 把均勻亂數來源（sdk/core）轉成具名機率分布的變量。
//
// 分成三層：
//  1. 數值能力層：Real / Count 泛型約束，搭配跨浮點寬度的超越函數。
//  2. 取樣層：Source（持有亂數核心與高斯備用值）對 Continuous / Discrete
//     描述子做單次取樣。
//  3. 序列層：Stream 把「取樣器 + 描述子 + 來源」綁成惰性序列
//     （有界 / 無界）。
//
// 合約重點（與整個 engine 的 fail-fast 哲學一致）：
//   - 參數前置條件（scale/shape/rate > 0、機率在 [0,1]、trials >= 0）
//     是呼叫端合約；違反者在建構子或取樣時直接 panic。
//   - 數值退化（log(0)、除以零 shape）不攔截，照 IEEE 語意傳播
//     （±Inf / NaN），這是行為的一部分，不是缺陷。
//   - 拒絕採樣迴圈（gamma、beta、geometric 在 p 趨近 0）沒有迭代上限；
//     病態參數可能永不返回，前置驗證是呼叫端的責任。
package variate

import "math"

// Real 連續取樣的數值能力約束：算術由語言提供，
// pow/sqrt/ln/exp 由本檔的泛型輔助函數提供（經由 float64 換算）。
//
// 機率參數型別共用同一約束：全序、四則、負號、exp，
// canonical 合法區間為閉區間 [0,1]。
type Real interface {
	~float32 | ~float64
}

// Count 離散結果型別的能力約束：加法、乘法與 canonical 的 0（失敗）/ 1（成功）。
// 限定有號整數寬度，讓閉區間 uniform 取樣可以安全走 int64。
type Count interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// 超越函數一律經 float64 計算再轉回 F。
// float32 因此得到 float64 的中間精度，與各浮點寬度的 libm 慣例一致。

func pow[F Real](x, y F) F {
	return F(math.Pow(float64(x), float64(y)))
}

func sqrt[F Real](x F) F {
	return F(math.Sqrt(float64(x)))
}

func ln[F Real](x F) F {
	return F(math.Log(float64(x)))
}

func exp[F Real](x F) F {
	return F(math.Exp(float64(x)))
}
