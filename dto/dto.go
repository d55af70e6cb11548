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

package dto

import (
	"github.com/zintix-labs/distlab/corefmt"
	"github.com/zintix-labs/distlab/spec"
)

// DrawResult 為對外輸出的取樣結果序列化結構。
type DrawResult struct {
	DistName string      `json:"dist"`             // 分布名稱
	DistID   spec.DID    `json:"did"`              // 分布編號
	Family   spec.Family `json:"family"`           // 分布族
	Kind     string      `json:"kind"`             // 分布 kind
	Count    int         `json:"count"`            // 取樣數
	Values   []float64   `json:"values,omitempty"` // 取樣結果（離散結果也以 float64 回傳）
	State    DrawState   `json:"draw_state"`       // RNG 狀態
}

// DrawState 承載本次取樣前後的 RNG 快照。
//
// Start/After 皆為必回：Start 供回放（replay）、After 供續抽（resume）。
type DrawState struct {
	StartCoreSnapB64U string `json:"start_b64u"` // 必回
	AfterCoreSnapB64U string `json:"after_b64u"` // 必回
}

// NewDrawState 以原始快照 bytes 建立可進 JSON 的 DrawState。
func NewDrawState(start, after []byte) DrawState {
	return DrawState{
		StartCoreSnapB64U: corefmt.EncodeBase64URL(start),
		AfterCoreSnapB64U: corefmt.EncodeBase64URL(after),
	}
}
