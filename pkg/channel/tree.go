package channel

import (
	"context"

	"canary/internal/errkind"
	"canary/internal/noise"
)

// Channel is the single public surface over both channel shapes: it starts
// Unified and becomes Bipartite when Split is called. Each shape transition
// stays local to the variant that owns it, so Encrypt and Split never reach
// across layers.
type Channel struct {
	unified   *UnifiedChannel
	bipartite *BipartiteChannel
}

// New wraps a freshly dialed or accepted carrier as a Unified, Raw Channel.
func New(fd DuplexCarrier) *Channel {
	return &Channel{unified: FromRaw(fd)}
}

// FromUnified lifts an existing UnifiedChannel into the Channel surface.
func FromUnified(u *UnifiedChannel) *Channel {
	return &Channel{unified: u}
}

// FromBipartite lifts an existing BipartiteChannel into the Channel surface,
// e.g. one built with Join from halves of unrelated carriers.
func FromBipartite(b *BipartiteChannel) *Channel {
	return &Channel{bipartite: b}
}

// Unified returns the Unified variant, or nil after Split.
func (c *Channel) Unified() *UnifiedChannel { return c.unified }

// Bipartite returns the Bipartite variant, or nil before Split.
func (c *Channel) Bipartite() *BipartiteChannel { return c.bipartite }

// Send serializes obj with the send format of whichever shape currently
// backs the channel and writes one frame.
func (c *Channel) Send(ctx context.Context, obj any) (int, error) {
	if c.bipartite != nil {
		return c.bipartite.Send.Send(ctx, obj)
	}
	return c.unified.Send(ctx, obj)
}

// Receive reads one frame and deserializes it into obj.
func (c *Channel) Receive(ctx context.Context, obj any) error {
	if c.bipartite != nil {
		return c.bipartite.Receive.Receive(ctx, obj)
	}
	return c.unified.Receive(ctx, obj)
}

// Encrypt upgrades a Raw Unified channel in place. On an already-Encrypted
// channel, or on a Bipartite one (halves cannot be re-keyed after a split),
// the supplied transport is handed back unchanged so the caller may reuse
// or drop it.
func (c *Channel) Encrypt(result *noise.Result) *noise.Result {
	if c.bipartite != nil {
		return result
	}
	return c.unified.Encrypt(result)
}

// Split converts the channel from Unified to Bipartite in place and returns
// the two independently ownable halves. Splitting an already-Bipartite
// channel returns the existing halves.
func (c *Channel) Split() *BipartiteChannel {
	if c.bipartite == nil {
		c.bipartite = c.unified.Split()
		c.unified = nil
	}
	return c.bipartite
}

// SendHalf returns the send half after a Split.
func (c *Channel) SendHalf() (*SendChannel, error) {
	if c.bipartite == nil {
		return nil, errkind.New(errkind.InvalidInput, "channel not split")
	}
	return c.bipartite.Send, nil
}

// ReceiveHalf returns the receive half after a Split.
func (c *Channel) ReceiveHalf() (*ReceiveChannel, error) {
	if c.bipartite == nil {
		return nil, errkind.New(errkind.InvalidInput, "channel not split")
	}
	return c.bipartite.Receive, nil
}

// Close releases whichever shape currently backs the channel.
func (c *Channel) Close() error {
	if c.bipartite != nil {
		return c.bipartite.Close()
	}
	return c.unified.Close()
}
