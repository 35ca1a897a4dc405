package provider

import (
	"context"

	"canary/internal/errkind"
	"canary/pkg/channel"
)

// Status is the one-byte wire tag a routing provider sends before handing
// a channel off (or closing it) once it has looked up an id against its
// registered handlers.
type Status byte

const (
	StatusFound    Status = 1
	StatusNotFound Status = 2
)

// Registry maps an identifier to the handler that should own a channel
// once Status has been sent. Looking up the registry and deciding what
// counts as a match is policy left to the caller; Router only owns the
// wire-level Status exchange.
type Registry interface {
	Lookup(id string) (found bool)
}

// Router sends Status for id over ch and returns it: StatusFound when the
// registry knows id, or a not-found error on NotFound. It does not hand ch
// to any handler and does not close it; both are left to the caller.
func Router(reg Registry) func(ctx context.Context, id string, ch *channel.UnifiedChannel) (Status, error) {
	return func(ctx context.Context, id string, ch *channel.UnifiedChannel) (Status, error) {
		status := StatusNotFound
		if reg.Lookup(id) {
			status = StatusFound
		}
		if _, err := ch.Send(ctx, byte(status)); err != nil {
			return 0, err
		}
		if status == StatusNotFound {
			return StatusNotFound, errkind.New(errkind.NotFound, "router: no handler registered for id")
		}
		return StatusFound, nil
	}
}

// ReadStatus reads the Status tag a routing provider sent, for use on the
// dialing side of a service address.
func ReadStatus(ctx context.Context, ch *channel.UnifiedChannel) (Status, error) {
	var tag byte
	if err := ch.Receive(ctx, &tag); err != nil {
		return 0, err
	}
	status := Status(tag)
	if status == StatusNotFound {
		return status, errkind.New(errkind.NotFound, "router: remote reported no handler for id")
	}
	return status, nil
}

// RouteIncoming reads the id a dialer sent on a freshly accepted channel,
// then answers with the Status for it. On Found the channel is ready to
// hand to the registered handler; on NotFound the caller should close it.
func RouteIncoming(ctx context.Context, reg Registry, ch *channel.UnifiedChannel) (string, error) {
	var id string
	if err := ch.Receive(ctx, &id); err != nil {
		return "", err
	}
	if _, err := Router(reg)(ctx, id, ch); err != nil {
		return id, err
	}
	return id, nil
}
