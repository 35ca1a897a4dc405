// Package address implements the scheme@host address grammar and the
// Connect/Bind dispatch that turns a parsed address into a dialed or
// listening channel.
package address

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"canary/internal/carrier"
	"canary/internal/errkind"
	"canary/pkg/channel"
	"canary/pkg/provider"
)

// Scheme selects both the carrier class and whether Connect/Bind run the
// Noise handshake before handing back a channel.
type Scheme int

const (
	Tcp Scheme = iota
	InsecureTcp
	Unix
	InsecureUnix
	Wss
	Ws
)

func (s Scheme) String() string {
	switch s {
	case Tcp:
		return "tcp"
	case InsecureTcp:
		return "itcp"
	case Unix:
		return "unix"
	case InsecureUnix:
		return "iunix"
	case Wss:
		return "wss"
	case Ws:
		return "ws"
	default:
		return "unknown"
	}
}

// Encrypted reports whether a Scheme runs the Noise_NN handshake (tcp,
// unix, wss) as opposed to handing back the raw carrier (itcp, iunix, ws).
func (s Scheme) Encrypted() bool {
	switch s {
	case Tcp, Unix, Wss:
		return true
	default:
		return false
	}
}

// ParseScheme maps the wire token (the part of an address before "@") to a
// Scheme.
func ParseScheme(s string) (Scheme, error) {
	switch s {
	case "tcp":
		return Tcp, nil
	case "itcp":
		return InsecureTcp, nil
	case "unix":
		return Unix, nil
	case "iunix":
		return InsecureUnix, nil
	case "wss":
		return Wss, nil
	case "ws":
		return Ws, nil
	default:
		return 0, errkind.New(errkind.InvalidInput, "unexpected scheme "+s)
	}
}

// Address is a parsed scheme@host pair.
type Address struct {
	Scheme Scheme
	Host   string
}

// Parse splits s at the last "@": everything before is the scheme token,
// everything after is the host. Splitting from the right keeps the host
// free of "@" and rejects any stray "@" as part of the scheme token, which
// no recognized scheme contains.
func Parse(s string) (Address, error) {
	idx := strings.LastIndex(s, "@")
	if idx < 0 {
		return Address{}, errkind.New(errkind.InvalidInput, "address missing '@': "+s)
	}
	scheme, err := ParseScheme(s[:idx])
	if err != nil {
		return Address{}, err
	}
	if s[idx+1:] == "" {
		return Address{}, errkind.New(errkind.InvalidInput, "address missing host: "+s)
	}
	return Address{Scheme: scheme, Host: s[idx+1:]}, nil
}

// String renders the address back to scheme@host form.
func (a Address) String() string {
	return a.Scheme.String() + "@" + a.Host
}

// ServiceAddress ties an Address to a service id (id://scheme@host).
type ServiceAddress struct {
	ID      string
	Address Address
}

// ParseService splits s at the first "://" for the id, then parses the
// remainder as an Address.
func ParseService(s string) (ServiceAddress, error) {
	parts := strings.SplitN(s, "://", 2)
	if len(parts) != 2 {
		return ServiceAddress{}, errkind.New(errkind.InvalidInput, "service address missing '://': "+s)
	}
	if parts[0] == "" {
		return ServiceAddress{}, errkind.New(errkind.InvalidInput, "service address missing id: "+s)
	}
	addr, err := Parse(parts[1])
	if err != nil {
		return ServiceAddress{}, err
	}
	return ServiceAddress{ID: parts[0], Address: addr}, nil
}

// String renders the service address back to id://scheme@host form.
func (s ServiceAddress) String() string {
	return s.ID + "://" + s.Address.String()
}

// dialBackoff bounds dial retries to a handful of attempts over a few
// seconds; it never governs the handshake itself, only the connection
// attempt, since a Noise exchange isn't safe to retry mid-flight.
func dialBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 10 * time.Second
	return b
}

// Connect dials addr, retrying the connection attempt (never the handshake)
// with bounded exponential backoff, then runs the Noise handshake or hands
// back the raw channel depending on the scheme.
func Connect(ctx context.Context, addr Address) (*channel.UnifiedChannel, error) {
	fd, err := dialCarrier(ctx, addr)
	if err != nil {
		return nil, err
	}
	hs := channel.NewHandshake(fd)
	if addr.Scheme.Encrypted() {
		return hs.Encrypted(ctx)
	}
	return hs.Raw(), nil
}

func dialCarrier(ctx context.Context, addr Address) (channel.DuplexCarrier, error) {
	var fd channel.DuplexCarrier
	op := func() error {
		var err error
		switch addr.Scheme {
		case Tcp, InsecureTcp:
			var raw carrier.Raw
			raw, err = carrier.DialTCP(ctx, addr.Host)
			if err == nil {
				fd = channel.WrapRaw(raw, carrier.Tcp)
			}
		case Unix, InsecureUnix:
			var raw carrier.Raw
			raw, err = carrier.DialUnix(ctx, addr.Host)
			if err == nil {
				fd = channel.WrapRaw(raw, carrier.Unix)
			}
		case Wss, Ws:
			var ws carrier.WS
			url := addr.Host
			if !strings.Contains(url, "://") {
				url = "ws://" + url
			}
			ws, err = carrier.DialWSS(ctx, url)
			if err == nil {
				fd = channel.WrapWS(ws)
			}
		default:
			return backoff.Permanent(errkind.New(errkind.InvalidInput, "unknown scheme"))
		}
		if err != nil {
			if kindErr, ok := err.(*errkind.Error); ok {
				switch kindErr.Kind {
				case errkind.InvalidInput, errkind.Unsupported, errkind.AddrNotAvailable:
					return backoff.Permanent(err)
				}
			}
			return err
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(dialBackoff(), ctx)); err != nil {
		return nil, errkind.From(err)
	}
	return fd, nil
}

// Bind opens a listening Provider for addr's carrier class. Accept loops
// never back off.
func Bind(addr Address) (provider.Provider, error) {
	switch addr.Scheme {
	case Tcp, InsecureTcp:
		return provider.ListenTCP(addr.Host)
	case Unix, InsecureUnix:
		return provider.ListenUnix(addr.Host)
	case Wss, Ws:
		return provider.ListenWSS(addr.Host, "/")
	default:
		return nil, errkind.New(errkind.InvalidInput, "unknown scheme")
	}
}

// ConnectService dials saddr's underlying address, sends the service id,
// and waits for the remote router's Status answer. A NotFound answer means
// the id was unknown at the remote router; the channel is closed and
// errkind.NotFound surfaces to the caller.
func ConnectService(ctx context.Context, saddr ServiceAddress) (*channel.UnifiedChannel, error) {
	ch, err := Connect(ctx, saddr.Address)
	if err != nil {
		return nil, err
	}
	if _, err := ch.Send(ctx, saddr.ID); err != nil {
		_ = ch.Close()
		return nil, err
	}
	if _, err := provider.ReadStatus(ctx, ch); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return ch, nil
}
