package provider

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"

	"canary/internal/carrier"
	"canary/internal/errkind"
	"canary/pkg/channel"
)

// WSSProvider runs an HTTP server that upgrades every request on path to a
// WebSocket and feeds the resulting handshake-ready channel to Accept.
type WSSProvider struct {
	ln   net.Listener
	srv  *http.Server
	hsCh chan *channel.Handshake
	errs chan error
}

// ListenWSS binds addr and upgrades any request to path into a WSS
// carrier.
func ListenWSS(addr, path string) (*WSSProvider, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errkind.From(err)
	}

	p := &WSSProvider{
		ln:   ln,
		hsCh: make(chan *channel.Handshake),
		errs: make(chan error, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		ws, err := carrier.UpgradeWSS(w, r)
		if err != nil {
			log.Printf("[provider] wss upgrade from %q failed: %v", r.RemoteAddr, err)
			return
		}
		p.hsCh <- channel.NewHandshake(channel.WrapWS(ws))
	})
	p.srv = &http.Server{Handler: mux}

	go func() {
		err := p.srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.errs <- err
		}
	}()

	return p, nil
}

// Addr reports the bound address.
func (p *WSSProvider) Addr() net.Addr { return p.ln.Addr() }

func (p *WSSProvider) Accept(ctx context.Context) (*channel.Handshake, error) {
	select {
	case <-ctx.Done():
		return nil, errkind.Wrap(errkind.Interrupted, ctx.Err())
	case hs := <-p.hsCh:
		return hs, nil
	case err := <-p.errs:
		return nil, errkind.From(err)
	}
}

func (p *WSSProvider) Close() error {
	if err := p.srv.Close(); err != nil {
		return errkind.From(err)
	}
	return nil
}
