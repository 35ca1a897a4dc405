package wire

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"canary/internal/errkind"
)

func TestWriteReadFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("hello, canary")
	if err := WriteFrame(&buf, payload); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q want %q", got, payload)
	}
}

func TestReadFrameEmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, nil); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty payload, got %d bytes", len(got))
	}
}

func TestReadFrameOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	var hdr [8]byte
	PutUint64(hdr[:], 1<<62)
	buf.Write(hdr[:])
	// Intentionally no payload bytes follow: ReadFrame must fail before
	// trying to read them.

	_, err := ReadFrame(&buf)
	if err == nil {
		t.Fatalf("expected error for oversized length")
	}
	var kindErr *errkind.Error
	if !errors.As(err, &kindErr) || kindErr.Kind != errkind.OutOfMemory {
		t.Fatalf("expected OutOfMemory, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("ReadFrame must not consume further bytes on oversized length")
	}
}

func TestRawDuplexWithMaxFrame(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, make([]byte, 32)); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	d := RawDuplex(&buf, WithMaxFrame(16))
	_, err := d.ReadFrame(context.Background())
	if err == nil {
		t.Fatalf("expected error for frame above the per-duplex bound")
	}
	var kindErr *errkind.Error
	if !errors.As(err, &kindErr) || kindErr.Kind != errkind.OutOfMemory {
		t.Fatalf("expected OutOfMemory, got %v", err)
	}
}

func TestWireFrameOnWire(t *testing.T) {
	// Record framing of an 8-byte payload produces an 8-byte big-endian
	// length prefix followed by the 8 payload bytes.
	var buf bytes.Buffer
	payload := make([]byte, 8)
	if err := WriteFrame(&buf, payload); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	wire := buf.Bytes()
	if len(wire) != 16 {
		t.Fatalf("expected 16 bytes on wire, got %d", len(wire))
	}
	if Uint64(wire[:8]) != 8 {
		t.Fatalf("expected length prefix 8, got %d", Uint64(wire[:8]))
	}
}
