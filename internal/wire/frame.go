// Package wire implements big-endian length-prefixed record framing plus
// the bounded allocation helper that keeps a peer-controlled length from
// exhausting memory.
package wire

import (
	"context"
	"encoding/binary"
	"io"
	"time"

	"canary/internal/errkind"
)

// MaxFrameSize is the default bound on how large a single record's payload
// may declare itself to be. A declared length above the bound fails fast
// with errkind.OutOfMemory before any payload bytes are read. The bound is
// per-duplex overridable via WithMaxFrame.
const MaxFrameSize = 64 << 20 // 64 MiB

// TryAllocate reserves an n-byte buffer, refusing absurd requests instead
// of letting a peer-controlled length run the process out of memory.
func TryAllocate(n uint64) ([]byte, error) {
	return tryAllocate(n, MaxFrameSize)
}

func tryAllocate(n, max uint64) ([]byte, error) {
	if n > max {
		return nil, errkind.New(errkind.OutOfMemory, "declared frame length exceeds maximum")
	}
	return make([]byte, n), nil
}

// WriteFrame sends len(payload) as a big-endian u64 followed by payload,
// then flushes if w supports it.
func WriteFrame(w io.Writer, payload []byte) error {
	var hdr [8]byte
	binary.BigEndian.PutUint64(hdr[:], uint64(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return errkind.From(err)
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return errkind.From(err)
		}
	}
	if f, ok := w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return errkind.From(err)
		}
	}
	return nil
}

// ReadFrame reads one record: an 8-byte big-endian length, then exactly
// that many bytes. A declared length that fails TryAllocate is reported
// without draining the carrier further.
func ReadFrame(r io.Reader) ([]byte, error) {
	return readFrame(r, MaxFrameSize)
}

func readFrame(r io.Reader, max uint64) ([]byte, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, errkind.From(err)
	}
	n := binary.BigEndian.Uint64(hdr[:])

	buf, err := tryAllocate(n, max)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return buf, nil
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errkind.From(err)
	}
	return buf, nil
}

// PutUint16/PutUint32/PutUint64 and their Uint counterparts expose the
// big-endian integer helpers for callers that frame their own sub-fields.

// FrameDuplex is a context-aware frame-level duplex: one record in, one
// record out, regardless of whether the underlying carrier is a raw byte
// stream (framed explicitly here) or a WebSocket (framed by the WS layer
// itself). The Noise handshake and the polymorphic channel
// both talk to carriers exclusively through this interface so neither has
// to know which carrier variant it's riding on.
type FrameDuplex interface {
	WriteFrame(ctx context.Context, payload []byte) error
	ReadFrame(ctx context.Context) ([]byte, error)
}

// Option adjusts a FrameDuplex built by RawDuplex.
type Option func(*rawDuplex)

// WithMaxFrame overrides the MaxFrameSize default for frames read through
// this duplex.
func WithMaxFrame(n uint64) Option {
	return func(d *rawDuplex) { d.maxFrame = n }
}

// RawDuplex adapts a byte-stream carrier (Tcp/Unix/Any) into a FrameDuplex
// using length-prefixed record framing. Context
// cancellation is honored on a best-effort basis via SetDeadline when the
// carrier supports it (e.g. net.Conn); plain io.ReadWriter carriers ignore
// ctx, same as any other blocking stdlib I/O.
func RawDuplex(rw io.ReadWriter, opts ...Option) FrameDuplex {
	d := &rawDuplex{rw: rw, maxFrame: MaxFrameSize}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type rawDuplex struct {
	rw       io.ReadWriter
	maxFrame uint64
}

type deadliner interface {
	SetDeadline(time.Time) error
}

func (d *rawDuplex) applyDeadline(ctx context.Context) {
	dl, ok := d.rw.(deadliner)
	if !ok {
		return
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = dl.SetDeadline(deadline)
	} else {
		_ = dl.SetDeadline(time.Time{})
	}
}

func (d *rawDuplex) WriteFrame(ctx context.Context, payload []byte) error {
	d.applyDeadline(ctx)
	return WriteFrame(d.rw, payload)
}

func (d *rawDuplex) ReadFrame(ctx context.Context) ([]byte, error) {
	d.applyDeadline(ctx)
	return readFrame(d.rw, d.maxFrame)
}

func PutUint16(b []byte, v uint16) { binary.BigEndian.PutUint16(b, v) }
func PutUint32(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }
func PutUint64(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }

func Uint16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }
func Uint32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
func Uint64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }
