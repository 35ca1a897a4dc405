package channel

import (
	"context"
	"time"

	"canary/internal/noise"
	"canary/internal/telemetry"
)

// Handshake is a transient newtype over a raw carrier with two terminal
// methods: Raw returns the channel unchanged, Encrypted runs the
// Noise_NN exchange first. Provider accept loops yield a Handshake so the
// caller chooses per-connection policy; address.Connect builds one itself
// and picks Raw or Encrypted from the address scheme.
type Handshake struct {
	fd DuplexCarrier
}

// NewHandshake wraps a freshly dialed or accepted carrier.
func NewHandshake(fd DuplexCarrier) *Handshake {
	return &Handshake{fd: fd}
}

// Raw returns the channel unchanged, with no handshake performed.
func (h *Handshake) Raw() *UnifiedChannel {
	return FromRaw(h.fd)
}

// Encrypted runs the Noise_NN handshake then upgrades the channel to
// Encrypted. It is NOT cancel-safe: a
// canceled handshake leaves the carrier in an indeterminate Noise state and
// the channel must be dropped, never retried.
func (h *Handshake) Encrypted(ctx context.Context) (*UnifiedChannel, error) {
	start := time.Now()
	kind := h.fd.Kind().String()
	result, err := noise.Run(ctx, h.fd)
	if err != nil {
		telemetry.ObserveHandshakeFailure(kind, err)
		return nil, err
	}
	telemetry.ObserveHandshake(kind, time.Since(start))
	ch := FromRaw(h.fd)
	ch.Encrypt(result)
	return ch, nil
}
