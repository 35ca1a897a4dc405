// Package noise implements the Noise_NN_25519_ChaChaPoly_BLAKE2s handshake:
// a symmetry-breaking coin flip to elect initiator/responder over an
// already-connected, unauthenticated duplex, followed by the NN pattern's
// two-message key exchange.
package noise

import (
	"context"
	"crypto/rand"
	"encoding/binary"

	flynn "github.com/flynn/noise"

	"canary/internal/cipher"
	"canary/internal/errkind"
	"canary/internal/wire"
)

var cipherSuite = flynn.NewCipherSuite(flynn.DH25519, flynn.CipherChaChaPoly, flynn.HashBLAKE2s)

// maxHandshakeMsg is the initial buffer capacity for each outgoing Noise
// message. 128 bytes is ample for NN's largest message, the responder's
// e+ee+tag.
const maxHandshakeMsg = 128

// Result is the pair of independent, per-direction AEAD ciphers produced
// by a completed handshake.
type Result struct {
	Send    *cipher.Cipher
	Receive *cipher.Cipher
}

// Run performs the full handshake over rw: symmetry-breaking election, then
// the Noise_NN exchange, framed with internal/wire's length-prefixed
// records. Any failure here is fatal; the caller must drop the channel
// rather than retry.
func Run(ctx context.Context, rw wire.FrameDuplex) (*Result, error) {
	initiator, err := elect(ctx, rw)
	if err != nil {
		return nil, errkind.Wrap(errkind.Other, err)
	}

	hs, err := flynn.NewHandshakeState(flynn.Config{
		CipherSuite: cipherSuite,
		Pattern:     flynn.HandshakeNN,
		Initiator:   initiator,
	})
	if err != nil {
		return nil, errkind.Wrap(errkind.Other, err)
	}

	if initiator {
		return runInitiator(ctx, rw, hs)
	}
	return runResponder(ctx, rw, hs)
}

// elect is the symmetry-breaking coin flip: both sides draw a random u64,
// exchange it, and the larger value wins initiator status.
// Ties are vanishingly unlikely and simply retried. The local draw is
// written while the peer's is read, so a carrier with no write buffering
// (such as net.Pipe) does not leave both sides blocked in WriteFrame.
func elect(ctx context.Context, rw wire.FrameDuplex) (initiator bool, err error) {
	for {
		local, err := randomUint64()
		if err != nil {
			return false, err
		}

		var localBuf [8]byte
		binary.BigEndian.PutUint64(localBuf[:], local)
		writeErr := make(chan error, 1)
		go func() { writeErr <- rw.WriteFrame(ctx, localBuf[:]) }()

		peerBuf, err := rw.ReadFrame(ctx)
		if werr := <-writeErr; werr != nil {
			return false, werr
		}
		if err != nil {
			return false, err
		}
		if len(peerBuf) != 8 {
			return false, errkind.New(errkind.InvalidData, "malformed election draw")
		}
		peer := binary.BigEndian.Uint64(peerBuf)

		if local == peer {
			continue
		}
		return local > peer, nil
	}
}

func randomUint64() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

// runInitiator writes the "-> e" message, then reads and completes with
// "<- e, ee".
func runInitiator(ctx context.Context, rw wire.FrameDuplex, hs *flynn.HandshakeState) (*Result, error) {
	msg, _, _, err := hs.WriteMessage(make([]byte, 0, maxHandshakeMsg), nil)
	if err != nil {
		return nil, errkind.Wrap(errkind.Other, err)
	}
	if err := rw.WriteFrame(ctx, msg); err != nil {
		return nil, err
	}

	resp, err := rw.ReadFrame(ctx)
	if err != nil {
		return nil, err
	}
	_, cs1, cs2, err := hs.ReadMessage(nil, resp)
	if err != nil {
		return nil, errkind.Wrap(errkind.Other, err)
	}

	// cs1 = initiator->responder (our send direction), cs2 = responder->initiator.
	return &Result{Send: cipher.New(cs1), Receive: cipher.New(cs2)}, nil
}

// runResponder reads the initiator's "-> e", then writes and completes
// with "<- e, ee".
func runResponder(ctx context.Context, rw wire.FrameDuplex, hs *flynn.HandshakeState) (*Result, error) {
	msg, err := rw.ReadFrame(ctx)
	if err != nil {
		return nil, err
	}
	if _, _, _, err := hs.ReadMessage(nil, msg); err != nil {
		return nil, errkind.Wrap(errkind.Other, err)
	}

	resp, cs1, cs2, err := hs.WriteMessage(make([]byte, 0, maxHandshakeMsg), nil)
	if err != nil {
		return nil, errkind.Wrap(errkind.Other, err)
	}
	if err := rw.WriteFrame(ctx, resp); err != nil {
		return nil, err
	}

	// cs1 = initiator->responder (our receive direction), cs2 = responder->initiator (our send).
	return &Result{Send: cipher.New(cs2), Receive: cipher.New(cs1)}, nil
}
