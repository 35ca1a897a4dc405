// Package carrier implements the duplex byte-stream variants {Tcp, Unix,
// Wss, Any}. Tcp/Unix/Any are plain io.ReadWriteCloser byte streams that
// the framing layer (internal/wire) frames explicitly. Wss is
// message-framed by the WebSocket protocol itself, so it exposes a
// distinct interface instead.
package carrier

import (
	"context"
	"io"
)

// Kind tags which carrier variant backs a channel.
type Kind int

const (
	Tcp Kind = iota
	Unix
	Wss
	Any
)

func (k Kind) String() string {
	switch k {
	case Tcp:
		return "tcp"
	case Unix:
		return "unix"
	case Wss:
		return "wss"
	default:
		return "any"
	}
}

// Raw is the byte-stream carrier shape used by Tcp, Unix, and Any.
type Raw = io.ReadWriteCloser

// WS is the message-framed carrier shape used by Wss. Binary messages carry
// canary records; anything else (text/ping/pong/close) is rejected as
// invalid-data by the framing layer.
type WS interface {
	ReadMessage(ctx context.Context) (data []byte, binary bool, err error)
	WriteMessage(ctx context.Context, data []byte) error
	Close() error
}
