package carrier

import (
	"context"
	"net/http"
	"time"

	cwebsocket "github.com/coder/websocket"
	gwebsocket "github.com/gorilla/websocket"

	"canary/internal/errkind"
	"canary/internal/wire"
)

// DialWSS dials a WebSocket endpoint as the client side.
func DialWSS(ctx context.Context, url string) (WS, error) {
	conn, _, err := cwebsocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, errkind.From(err)
	}
	return &coderWS{conn: conn}, nil
}

type coderWS struct {
	conn *cwebsocket.Conn
}

func (w *coderWS) ReadMessage(ctx context.Context) ([]byte, bool, error) {
	typ, data, err := w.conn.Read(ctx)
	if err != nil {
		return nil, false, errkind.From(err)
	}
	return data, typ == cwebsocket.MessageBinary, nil
}

func (w *coderWS) WriteMessage(ctx context.Context, data []byte) error {
	if err := w.conn.Write(ctx, cwebsocket.MessageBinary, data); err != nil {
		return errkind.From(err)
	}
	return nil
}

func (w *coderWS) Close() error {
	return w.conn.Close(cwebsocket.StatusNormalClosure, "")
}

// UpgradeWSS upgrades an inbound HTTP request to a WebSocket as the server
// side.
func UpgradeWSS(w http.ResponseWriter, r *http.Request) (WS, error) {
	upgrader := gwebsocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, errkind.From(err)
	}
	return &gorillaWS{conn: conn}, nil
}

type gorillaWS struct {
	conn *gwebsocket.Conn
}

func (w *gorillaWS) ReadMessage(ctx context.Context) ([]byte, bool, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = w.conn.SetReadDeadline(deadline)
	} else {
		_ = w.conn.SetReadDeadline(time.Time{})
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = w.conn.Close()
		case <-done:
		}
	}()
	defer close(done)

	typ, data, err := w.conn.ReadMessage()
	if err != nil {
		return nil, false, errkind.From(err)
	}
	return data, typ == gwebsocket.BinaryMessage, nil
}

func (w *gorillaWS) WriteMessage(ctx context.Context, data []byte) error {
	if deadline, ok := ctx.Deadline(); ok {
		_ = w.conn.SetWriteDeadline(deadline)
	}
	if err := w.conn.WriteMessage(gwebsocket.BinaryMessage, data); err != nil {
		return errkind.From(err)
	}
	return nil
}

func (w *gorillaWS) Close() error {
	_ = w.conn.WriteMessage(gwebsocket.CloseMessage,
		gwebsocket.FormatCloseMessage(gwebsocket.CloseNormalClosure, ""))
	return w.conn.Close()
}

// WSDuplex adapts a message-framed WS carrier into a wire.FrameDuplex: each
// record is exactly one binary WebSocket message, since the WebSocket
// protocol already supplies its own message boundary in place of the
// length-prefix internal/wire uses on raw byte streams. A
// non-binary message (text/ping/pong/close surfaced as a Read result) is
// rejected as invalid-data rather than silently reframed.
func WSDuplex(ws WS) wire.FrameDuplex {
	return wsDuplex{ws: ws}
}

type wsDuplex struct {
	ws WS
}

func (d wsDuplex) WriteFrame(ctx context.Context, payload []byte) error {
	return d.ws.WriteMessage(ctx, payload)
}

func (d wsDuplex) ReadFrame(ctx context.Context) ([]byte, error) {
	data, binary, err := d.ws.ReadMessage(ctx)
	if err != nil {
		return nil, err
	}
	if !binary {
		return nil, errkind.New(errkind.InvalidData, "non-binary websocket message")
	}
	return data, nil
}
