package channel

import (
	"context"

	"canary/internal/format"
	"canary/internal/telemetry"
)

// SendChannel is the write half of a split Unified channel, or one endpoint
// of an independently constructed Bipartite pair.
type SendChannel struct {
	fd     DuplexCarrier
	format format.Format
}

// NewSendChannel builds a standalone send half directly over a carrier,
// for Joining with a receive half from an unrelated carrier.
func NewSendChannel(fd DuplexCarrier, f format.Format) *SendChannel {
	return &SendChannel{fd: fd, format: f}
}

func (s *SendChannel) Send(ctx context.Context, obj any) (int, error) {
	data, err := s.format.Serialize(obj)
	if err != nil {
		return 0, err
	}
	if err := s.fd.WriteFrame(ctx, data); err != nil {
		return 0, err
	}
	telemetry.ObserveFrame("send", s.fd.Kind().String(), len(data))
	observeNonce("send", s.format)
	return len(data), nil
}

func (s *SendChannel) Close() error { return s.fd.Close() }

// ReceiveChannel is the read half of a split Unified channel.
type ReceiveChannel struct {
	fd     DuplexCarrier
	format format.Format
}

// NewReceiveChannel builds a standalone receive half directly over a
// carrier, for Joining with a send half from an unrelated carrier.
func NewReceiveChannel(fd DuplexCarrier, f format.Format) *ReceiveChannel {
	return &ReceiveChannel{fd: fd, format: f}
}

func (r *ReceiveChannel) Receive(ctx context.Context, obj any) error {
	data, err := r.fd.ReadFrame(ctx)
	if err != nil {
		return err
	}
	telemetry.ObserveFrame("receive", r.fd.Kind().String(), len(data))
	if err := r.format.Deserialize(data, obj); err != nil {
		return err
	}
	observeNonce("receive", r.format)
	return nil
}

func (r *ReceiveChannel) Close() error { return r.fd.Close() }

// BipartiteChannel is a channel whose send and receive halves are
// independently owned. The two halves may be the send/receive
// halves of one split Unified channel, or two halves joined from unrelated
// carriers via Join.
type BipartiteChannel struct {
	Send    *SendChannel
	Receive *ReceiveChannel
}

// Join constructs a Bipartite channel from independent halves, even if they
// belong to different carriers.
func Join(send *SendChannel, receive *ReceiveChannel) *BipartiteChannel {
	return &BipartiteChannel{Send: send, Receive: receive}
}

// Close closes both halves. If they share an underlying carrier (the usual
// case after Split), DuplexCarrier's Close is idempotent so this is safe.
func (b *BipartiteChannel) Close() error {
	sendErr := b.Send.Close()
	recvErr := b.Receive.Close()
	if sendErr != nil {
		return sendErr
	}
	return recvErr
}
