// Package session enforces a declared send/receive sequence on a Channel.
// Go has no phantom type lists to consume one element per call at compile
// time, so the pipeline position is tracked at runtime: a step taken out
// of order or in the wrong direction returns invalid-input without
// touching the carrier. Each step still takes a generic type parameter so
// the payload type is checked where the call is written.
package session

import (
	"context"

	"canary/internal/errkind"
	"canary/pkg/channel"
)

// Op is one step of a Pipeline: either the main side sends (Tx) or
// receives (Rx) at that position.
type Op int

const (
	TxOp Op = iota
	RxOp
)

// Pipeline is an ordered list of Tx/Rx steps consumed one at a time.
type Pipeline []Op

// Pipe builds a Pipeline from a sequence of ops, e.g.
// session.Pipe(session.TxOp, session.RxOp, session.TxOp).
func Pipe(ops ...Op) Pipeline { return append(Pipeline(nil), ops...) }

// MainChannel walks a Pipeline from the side that initiates it. Every step
// is taken through the free functions Tx/Rx below (not methods), since Go
// methods cannot carry an additional type parameter beyond the receiver's.
type MainChannel struct {
	ch       *channel.UnifiedChannel
	pipeline Pipeline
	pos      int
}

// NewMain wraps ch with the given pipeline, starting at position 0.
func NewMain(ch *channel.UnifiedChannel, p Pipeline) *MainChannel {
	return &MainChannel{ch: ch, pipeline: p}
}

func (m *MainChannel) expect(op Op) error {
	if m.pos >= len(m.pipeline) {
		return errkind.New(errkind.InvalidInput, "pipeline: exhausted, no more steps")
	}
	if m.pipeline[m.pos] != op {
		return errkind.New(errkind.InvalidInput, "pipeline: step out of order")
	}
	return nil
}

func (m *MainChannel) advance() *MainChannel {
	return &MainChannel{ch: m.ch, pipeline: m.pipeline, pos: m.pos + 1}
}

// Done reports whether every step in the pipeline has been consumed.
func (m *MainChannel) Done() bool { return m.pos >= len(m.pipeline) }

// Unwrap discards the session-type bookkeeping and returns the plain
// Channel underneath, once the pipeline is exhausted (or abandoned early).
func (m *MainChannel) Unwrap() *channel.UnifiedChannel { return m.ch }

// Tx sends obj if the current pipeline position is Tx; otherwise it
// returns errkind.InvalidInput without touching the carrier.
func Tx[T any](ctx context.Context, m *MainChannel, obj T) (*MainChannel, error) {
	if err := m.expect(TxOp); err != nil {
		return nil, err
	}
	if _, err := m.ch.Send(ctx, obj); err != nil {
		return nil, err
	}
	return m.advance(), nil
}

// Rx receives the next step's value if the current pipeline position is Rx.
func Rx[T any](ctx context.Context, m *MainChannel) (T, *MainChannel, error) {
	var zero T
	if err := m.expect(RxOp); err != nil {
		return zero, nil, err
	}
	var v T
	if err := m.ch.Receive(ctx, &v); err != nil {
		return zero, nil, err
	}
	return v, m.advance(), nil
}

// PeerChannel walks the same Pipeline from the other side: at a position
// the main side declared Tx, the peer must Rx, and vice versa.
type PeerChannel struct {
	ch       *channel.UnifiedChannel
	pipeline Pipeline
	pos      int
}

// NewPeer wraps ch with the pipeline as seen from the peer's side.
func NewPeer(ch *channel.UnifiedChannel, p Pipeline) *PeerChannel {
	return &PeerChannel{ch: ch, pipeline: p}
}

func (p *PeerChannel) expect(op Op) error {
	if p.pos >= len(p.pipeline) {
		return errkind.New(errkind.InvalidInput, "pipeline: exhausted, no more steps")
	}
	if p.pipeline[p.pos] != op {
		return errkind.New(errkind.InvalidInput, "pipeline: step out of order")
	}
	return nil
}

func (p *PeerChannel) advance() *PeerChannel {
	return &PeerChannel{ch: p.ch, pipeline: p.pipeline, pos: p.pos + 1}
}

// Done reports whether every step in the pipeline has been consumed.
func (p *PeerChannel) Done() bool { return p.pos >= len(p.pipeline) }

// Unwrap discards the session-type bookkeeping and returns the plain
// Channel underneath.
func (p *PeerChannel) Unwrap() *channel.UnifiedChannel { return p.ch }

// PeerTx sends obj if the main side's pipeline declared Rx at this
// position (the peer's Tx answers the main's Rx).
func PeerTx[T any](ctx context.Context, p *PeerChannel, obj T) (*PeerChannel, error) {
	if err := p.expect(RxOp); err != nil {
		return nil, err
	}
	if _, err := p.ch.Send(ctx, obj); err != nil {
		return nil, err
	}
	return p.advance(), nil
}

// PeerRx receives if the main side's pipeline declared Tx at this position.
func PeerRx[T any](ctx context.Context, p *PeerChannel) (T, *PeerChannel, error) {
	var zero T
	if err := p.expect(TxOp); err != nil {
		return zero, nil, err
	}
	var v T
	if err := p.ch.Receive(ctx, &v); err != nil {
		return zero, nil, err
	}
	return v, p.advance(), nil
}
