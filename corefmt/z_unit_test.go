package corefmt

import (
	"bytes"
	"testing"
)

func TestBase64RoundTrip(t *testing.T) {
	raw := []byte{0x00, 0xff, 0x10, 0x20, 0x7f}
	got, err := DecodeBase64(EncodeBase64(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("round trip mismatch: %v != %v", got, raw)
	}
	if _, err := DecodeBase64("not base64!!!"); err == nil {
		t.Errorf("expected error for invalid base64")
	}
}

func TestBlobFrame(t *testing.T) {
	payload := []byte("snapshot state bytes")
	frame := EncodeBlobFrame(payload)

	got, err := DecodeBlobFrame(frame)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch")
	}

	// 截斷的 frame 必須報錯
	if _, err := DecodeBlobFrame(frame[:len(frame)-3]); err == nil {
		t.Errorf("expected error for truncated frame")
	}
}

func TestBlobFrameStream(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	var buf bytes.Buffer
	if err := WriteBlobFrame(&buf, payload); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	got, err := ReadBlobFrame(&buf, 1<<20)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch")
	}

	// maxBytes 超限保護
	var big bytes.Buffer
	_ = WriteBlobFrame(&big, make([]byte, 100))
	if _, err := ReadBlobFrame(&big, 10); err == nil {
		t.Errorf("expected error when payload exceeds maxBytes")
	}
}

func TestZstdRoundTrip(t *testing.T) {
	raw := bytes.Repeat([]byte("draws-and-snapshots "), 200)
	packed, err := EncodeZstd(raw)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(packed) >= len(raw) {
		t.Errorf("repetitive payload did not shrink: %d >= %d", len(packed), len(raw))
	}
	got, err := DecodeZstd(packed)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("round trip mismatch")
	}
}
