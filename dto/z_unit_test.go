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

package dto_test

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/zintix-labs/distlab/corefmt"
	"github.com/zintix-labs/distlab/dto"
)

func TestDecodeDrawRequestGET(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/draw?uid=u1&dist=gauss&did=7&count=3", nil)
	req, err := dto.DecodeDrawRequest(r)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.UID != "u1" || req.DistName != "gauss" || req.DistId != 7 || req.Count != 3 {
		t.Fatalf("decoded request wrong: %+v", req)
	}

	bad := httptest.NewRequest("GET", "/v1/draw?did=abc", nil)
	if _, err := dto.DecodeDrawRequest(bad); err == nil {
		t.Fatalf("expected error for invalid did")
	}
}

func TestDecodeDrawRequestPOST(t *testing.T) {
	body := `{"uid":"u2","dist":"coin","did":2,"count":10,"start_state":{"start_b64u":"AAAA"}}`
	r := httptest.NewRequest("POST", "/v1/draw", bytes.NewBufferString(body))
	req, err := dto.DecodeDrawRequest(r)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !req.StartState.HasPayload() {
		t.Fatalf("start state payload missing")
	}

	// 未知欄位嚴格拒絕
	unknown := `{"uid":"u2","wat":1}`
	r2 := httptest.NewRequest("POST", "/v1/draw", bytes.NewBufferString(unknown))
	if _, err := dto.DecodeDrawRequest(r2); err == nil {
		t.Fatalf("expected error for unknown field")
	}

	r3 := httptest.NewRequest("DELETE", "/v1/draw", nil)
	if _, err := dto.DecodeDrawRequest(r3); err == nil {
		t.Fatalf("expected method not allowed")
	}
}

func TestStartStateSnap(t *testing.T) {
	raw := []byte{1, 2, 3, 4}
	ss := &dto.StartState{StartCoreSnapB64U: corefmt.EncodeBase64URL(raw)}
	snap, err := ss.Snap()
	if err != nil {
		t.Fatalf("snap: %v", err)
	}
	if !bytes.Equal(snap, raw) {
		t.Fatalf("snap round trip mismatch")
	}

	var empty *dto.StartState
	if empty.HasPayload() {
		t.Fatalf("nil start state must have no payload")
	}
	if snap, err := empty.Snap(); err != nil || snap != nil {
		t.Fatalf("nil start state Snap must be nil,nil")
	}

	badB64 := &dto.StartState{StartCoreSnapB64U: "!!!"}
	if _, err := badB64.Snap(); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestNewDrawState(t *testing.T) {
	st := dto.NewDrawState([]byte{1}, []byte{2})
	if st.StartCoreSnapB64U == "" || st.AfterCoreSnapB64U == "" {
		t.Fatalf("draw state must carry both snapshots")
	}
	if st.StartCoreSnapB64U == st.AfterCoreSnapB64U {
		t.Fatalf("distinct snapshots must encode differently")
	}
}
