// Package provider implements the accept-loop side of the library: one
// listener per carrier class, each yielding a handshake-capable channel so
// the caller decides per-connection whether to run the Noise exchange.
// Accept loops never back off on error; retry/backoff is a dial-side
// concern only.
package provider

import (
	"context"

	"canary/pkg/channel"
)

// Provider is one carrier class's accept loop.
type Provider interface {
	Accept(ctx context.Context) (*channel.Handshake, error)
	Close() error
}
