package provider

import (
	"context"
	"net"

	"canary/internal/carrier"
	"canary/internal/errkind"
	"canary/pkg/channel"
)

// StreamProvider backs both Tcp and Unix: both are net.Listener accept
// loops over a byte-stream carrier, differing only in the Kind tag used to
// label the resulting channel's carrier for telemetry.
type StreamProvider struct {
	ln   net.Listener
	kind carrier.Kind
}

// ListenTCP opens a TCP accept loop on addr ("host:port").
func ListenTCP(addr string) (*StreamProvider, error) {
	ln, err := carrier.ListenTCP(addr)
	if err != nil {
		return nil, err
	}
	return &StreamProvider{ln: ln, kind: carrier.Tcp}, nil
}

// ListenUnix opens a Unix domain socket accept loop at path.
func ListenUnix(path string) (*StreamProvider, error) {
	ln, err := carrier.ListenUnix(path)
	if err != nil {
		return nil, err
	}
	return &StreamProvider{ln: ln, kind: carrier.Unix}, nil
}

// Addr reports the bound address, e.g. to discover an ephemeral port
// chosen by binding to ":0".
func (p *StreamProvider) Addr() net.Addr { return p.ln.Addr() }

func (p *StreamProvider) Accept(ctx context.Context) (*channel.Handshake, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conn, err := p.ln.Accept()
		done <- result{conn, err}
	}()

	select {
	case <-ctx.Done():
		return nil, errkind.Wrap(errkind.Interrupted, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return nil, errkind.From(r.err)
		}
		return channel.NewHandshake(channel.WrapRaw(r.conn, p.kind)), nil
	}
}

func (p *StreamProvider) Close() error {
	if err := p.ln.Close(); err != nil {
		return errkind.From(err)
	}
	return nil
}
