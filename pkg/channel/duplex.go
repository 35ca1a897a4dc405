// Package channel implements the polymorphic channel tree: Unified and
// Bipartite shapes, each Raw or Encrypted, over any of the Tcp/Unix/Wss/Any
// carriers, with independent read/write serialization formats.
package channel

import (
	"sync"

	"canary/internal/carrier"
	"canary/internal/format"
	"canary/internal/telemetry"
	"canary/internal/wire"
)

// DuplexCarrier is what a provider or dial function hands to Channel.FromRaw:
// a frame-level duplex (length-prefixed on byte streams, message-framed on
// WebSockets) plus a close and a carrier tag for telemetry labeling.
type DuplexCarrier interface {
	wire.FrameDuplex
	Close() error
	Kind() carrier.Kind
}

type rawCarrier struct {
	wire.FrameDuplex
	kind     carrier.Kind
	closeFn  func() error
	closeErr error
	once     sync.Once
}

func (r *rawCarrier) Close() error {
	r.once.Do(func() { r.closeErr = r.closeFn() })
	return r.closeErr
}

func (r *rawCarrier) Kind() carrier.Kind { return r.kind }

// WrapRaw adapts a byte-stream carrier (Tcp, Unix, or a user-supplied Any)
// into a DuplexCarrier using internal/wire's length-prefixed framing.
// Options adjust the framing, e.g. wire.WithMaxFrame to override the
// default bound on declared frame lengths.
func WrapRaw(rw carrier.Raw, kind carrier.Kind, opts ...wire.Option) DuplexCarrier {
	return &rawCarrier{FrameDuplex: wire.RawDuplex(rw, opts...), kind: kind, closeFn: rw.Close}
}

// WrapWS adapts a WebSocket carrier into a DuplexCarrier; each record is one
// binary WebSocket message.
func WrapWS(ws carrier.WS) DuplexCarrier {
	return &rawCarrier{FrameDuplex: carrier.WSDuplex(ws), kind: carrier.Wss, closeFn: ws.Close}
}

// observeNonce records the current per-direction nonce counter when the
// format in use carries a cipher.
func observeNonce(direction string, f format.Format) {
	if wc, ok := f.(format.WithCipher); ok {
		telemetry.SetNonce(direction, wc.Cipher.Nonce())
	}
}
