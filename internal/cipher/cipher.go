// Package cipher implements the stateless-AEAD record layer:
// ChaCha20-Poly1305 packets chunked at the Noise message-size boundary,
// each ciphered independently with an explicit, per-direction nonce.
//
// The "stateless" property comes straight from flynn/noise's CipherState:
// Encrypt/Decrypt take the nonce as an explicit argument (via SetNonce)
// rather than hiding it behind internal mutable state guarded by a lock.
// That is exactly what lets a Unified channel split into two halves that
// use the cipher concurrently without synchronizing with each other —
// each half owns only its own uint32 counter.
package cipher

import (
	"sync/atomic"

	"github.com/flynn/noise"

	"canary/internal/errkind"
)

// MaxPlaintext is the largest plaintext chunk a single packet may carry:
// the Noise 65535-byte message cap minus the 16-byte AEAD tag.
const MaxPlaintext = 65519

// TagSize is the AEAD authentication tag appended to every packet.
const TagSize = 16

// MaxPacket is MaxPlaintext+TagSize, the largest a single packet is ever
// allowed to be on the wire.
const MaxPacket = MaxPlaintext + TagSize

// Direction selects which half of a Cipher a caller is driving.
type Direction int

const (
	Send Direction = iota
	Receive
)

// Cipher is one direction's worth of AEAD transport state: that direction's
// own *noise.CipherState (not shared with the other direction) plus an
// exclusively-owned, atomically incremented nonce counter that is set on
// the state before every packet. A Cipher is driven by one goroutine at a
// time. After a decryption failure every later Decrypt fails as well.
type Cipher struct {
	state  *noise.CipherState
	nonce  uint32
	failed uint32
}

// New wraps a completed Noise CipherState. Nonces start at 0.
func New(state *noise.CipherState) *Cipher {
	return &Cipher{state: state}
}

// Nonce returns the next nonce value that will be consumed, for tests and
// diagnostics; it does not advance the counter.
func (c *Cipher) Nonce() uint32 {
	return atomic.LoadUint32(&c.nonce)
}

// nextNonce atomically increments and returns the value to use for this
// packet (the pre-increment value, so the sequence starts at 0).
func (c *Cipher) nextNonce() uint32 {
	return atomic.AddUint32(&c.nonce, 1) - 1
}

// EncryptPackets splits plain into chunks of at most MaxPlaintext bytes and
// AEAD-seals each with its own incrementing nonce.
func (c *Cipher) EncryptPackets(plain []byte) ([]byte, error) {
	if len(plain) == 0 {
		return c.encryptChunk(nil)
	}

	out := make([]byte, 0, len(plain)+TagSize*((len(plain)+MaxPlaintext-1)/MaxPlaintext))
	for off := 0; off < len(plain); off += MaxPlaintext {
		end := off + MaxPlaintext
		if end > len(plain) {
			end = len(plain)
		}
		packet, err := c.encryptChunk(plain[off:end])
		if err != nil {
			return nil, err
		}
		out = append(out, packet...)
	}
	return out, nil
}

func (c *Cipher) encryptChunk(chunk []byte) ([]byte, error) {
	n := c.nextNonce()
	c.state.SetNonce(uint64(n))
	sealed, err := c.state.Encrypt(nil, nil, chunk)
	if err != nil {
		return nil, errkind.Wrap(errkind.Other, err)
	}
	return sealed, nil
}

// Decrypt reverses EncryptPackets: it splits in into chunks of at most
// MaxPacket bytes and opens each with the next expected receive nonce. Any
// authentication failure or nonce desync is fatal — the caller must not
// keep using this Cipher afterward.
func (c *Cipher) Decrypt(in []byte) ([]byte, error) {
	if atomic.LoadUint32(&c.failed) != 0 {
		return nil, errkind.New(errkind.Other, "cipher unusable after an earlier decryption failure")
	}
	if len(in) == 0 {
		return nil, errkind.New(errkind.InvalidData, "ciphertext shorter than auth tag")
	}

	out := make([]byte, 0, len(in))
	for off := 0; off < len(in); {
		end := off + MaxPacket
		if end > len(in) {
			end = len(in)
		}
		chunk := in[off:end]
		if len(chunk) < TagSize {
			atomic.StoreUint32(&c.failed, 1)
			return nil, errkind.New(errkind.Other, "truncated packet")
		}

		n := c.nextNonce()
		c.state.SetNonce(uint64(n))
		plain, err := c.state.Decrypt(nil, nil, chunk)
		if err != nil {
			atomic.StoreUint32(&c.failed, 1)
			return nil, errkind.Wrap(errkind.Other, err)
		}
		out = append(out, plain...)
		off = end
	}
	return out, nil
}
