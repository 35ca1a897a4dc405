package channel

import (
	"context"

	"canary/internal/format"
	"canary/internal/noise"
	"canary/internal/telemetry"
)

// UnifiedChannel is a channel whose send and receive share one carrier and
// one owner. It starts Raw and may be upgraded in place to
// Encrypted via Encrypt, or converted to a BipartiteChannel via Split.
type UnifiedChannel struct {
	fd         DuplexCarrier
	sendFormat format.Format
	recvFormat format.Format
	encrypted  bool
}

// FromRaw wraps a carrier as a Raw Unified channel with the default
// Bincode format in both directions.
func FromRaw(fd DuplexCarrier) *UnifiedChannel {
	return &UnifiedChannel{fd: fd, sendFormat: format.Bincode{}, recvFormat: format.Bincode{}}
}

// SetFormats coerces the channel's read and write formats, e.g. to switch
// off the Bincode default to Json, Bson, Postcard, or MessagePack. If the
// channel is already Encrypted, the new formats are wrapped with the
// existing per-direction cipher so encryption survives the coercion.
func (c *UnifiedChannel) SetFormats(send, recv format.Format) {
	if c.encrypted {
		send = format.WithCipher{Format: send, Cipher: c.sendFormat.(format.WithCipher).Cipher}
		recv = format.WithCipher{Format: recv, Cipher: c.recvFormat.(format.WithCipher).Cipher}
	}
	c.sendFormat = send
	c.recvFormat = recv
}

// Encrypt is the one-shot Raw to Encrypted transition. On an
// already-Encrypted channel it is a non-error no-op that hands the supplied
// transport back to the caller so it can be reused or dropped.
func (c *UnifiedChannel) Encrypt(result *noise.Result) *noise.Result {
	if c.encrypted {
		return result
	}
	c.sendFormat = format.WithCipher{Format: c.sendFormat, Cipher: result.Send}
	c.recvFormat = format.WithCipher{Format: c.recvFormat, Cipher: result.Receive}
	c.encrypted = true
	return nil
}

// Encrypted reports whether Encrypt has already been applied.
func (c *UnifiedChannel) Encrypted() bool { return c.encrypted }

// Send serializes obj with the channel's send format and writes one frame,
// returning the number of bytes placed on the wire.
func (c *UnifiedChannel) Send(ctx context.Context, obj any) (int, error) {
	data, err := c.sendFormat.Serialize(obj)
	if err != nil {
		return 0, err
	}
	if err := c.fd.WriteFrame(ctx, data); err != nil {
		return 0, err
	}
	telemetry.ObserveFrame("send", c.fd.Kind().String(), len(data))
	observeNonce("send", c.sendFormat)
	return len(data), nil
}

// Receive reads one frame and deserializes it with the channel's read
// format into obj, which must be a pointer.
func (c *UnifiedChannel) Receive(ctx context.Context, obj any) error {
	data, err := c.fd.ReadFrame(ctx)
	if err != nil {
		return err
	}
	telemetry.ObserveFrame("receive", c.fd.Kind().String(), len(data))
	if err := c.recvFormat.Deserialize(data, obj); err != nil {
		return err
	}
	observeNonce("receive", c.recvFormat)
	return nil
}

// Split converts a Unified channel into a Bipartite one: an owned send
// channel and an owned receive channel sharing the same carrier. If
// Encrypted, each half keeps its own AEAD cipher (and thus its
// own nonce counter) with no shared mutable state between them.
func (c *UnifiedChannel) Split() *BipartiteChannel {
	return &BipartiteChannel{
		Send:    &SendChannel{fd: c.fd, format: c.sendFormat},
		Receive: &ReceiveChannel{fd: c.fd, format: c.recvFormat},
	}
}

// Close releases the underlying carrier.
func (c *UnifiedChannel) Close() error { return c.fd.Close() }
