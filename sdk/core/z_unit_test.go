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

import (
	"bytes"
	"testing"
)

// TestCoreDeterminism 相同 seed 必須產生相同序列（PRNGFactory 合約）
func TestCoreDeterminism(t *testing.T) {
	c1 := New(Default().New(42))
	c2 := New(Default().New(42))
	for i := 0; i < 1000; i++ {
		if c1.Uint64() != c2.Uint64() {
			t.Fatalf("sequence diverged at step %d", i)
		}
	}
}

// TestFloat64CRange Float64C 必須落在閉區間 [0,1]
func TestFloat64CRange(t *testing.T) {
	c := New(Default().New(7))
	for i := 0; i < 100000; i++ {
		v := c.Float64C()
		if v < 0 || v > 1 {
			t.Fatalf("Float64C out of [0,1]: %v", v)
		}
	}
}

// TestFloat64Range 閉區間邊界與退化情況
func TestFloat64Range(t *testing.T) {
	c := New(Default().New(9))
	for i := 0; i < 100000; i++ {
		v := c.Float64Range(-2.5, 4.5)
		if v < -2.5 || v > 4.5 {
			t.Fatalf("Float64Range out of bounds: %v", v)
		}
	}
	if v := c.Float64Range(3, 3); v != 3 {
		t.Fatalf("degenerate range should return lo, got %v", v)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for lo > hi")
		}
	}()
	c.Float64Range(1, 0)
}

// TestInt64Range 閉區間全覆蓋（小範圍應該每個值都出現）
func TestInt64Range(t *testing.T) {
	c := New(Default().New(11))
	seen := map[int64]bool{}
	for i := 0; i < 10000; i++ {
		v := c.Int64Range(-3, 3)
		if v < -3 || v > 3 {
			t.Fatalf("Int64Range out of bounds: %v", v)
		}
		seen[v] = true
	}
	for v := int64(-3); v <= 3; v++ {
		if !seen[v] {
			t.Errorf("value %d never drawn", v)
		}
	}
}

// TestPCG64SnapshotRestore 快照還原後序列必須一致
func TestPCG64SnapshotRestore(t *testing.T) {
	r := NewPCG64WithSeed(123)
	r.Uint64()
	snap, err := r.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	want := make([]uint64, 16)
	for i := range want {
		want[i] = r.Uint64()
	}

	r2 := NewPCG64WithSeed(999)
	if err := r2.Restore(snap); err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if got := r2.Uint64(); got != want[i] {
			t.Fatalf("restored sequence diverged at %d", i)
		}
	}
}

// TestPCG32SnapshotRestore 16-byte 快照的 round-trip
func TestPCG32SnapshotRestore(t *testing.T) {
	r := NewPCG32WithSeed(321)
	r.Uint32()
	snap, err := r.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap) != 16 {
		t.Fatalf("expected 16-byte snapshot, got %d", len(snap))
	}

	r2 := NewPCG32WithSeed(1)
	if err := r2.Restore(snap); err != nil {
		t.Fatal(err)
	}
	snap2, _ := r2.Snapshot()
	if !bytes.Equal(snap, snap2) {
		t.Fatalf("snapshot mismatch after restore")
	}
	if r.Uint32() != r2.Uint32() {
		t.Fatalf("restored pcg32 diverged")
	}

	if err := r2.Restore([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for truncated snapshot")
	}
}
