package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hongjun500/chat-relay/internal/protocol"
	"github.com/hongjun500/chat-relay/pkg/logger"
)

// wsStream adapts a websocket connection to Stream: one binary message per frame
type wsStream struct {
	conn      *websocket.Conn
	closeOnce sync.Once
	closed    chan struct{}
}

func newWSStream(conn *websocket.Conn) *wsStream {
	return &wsStream{conn: conn, closed: make(chan struct{})}
}

// ReadFrame reads one message. At most FrameSize+1 bytes are kept and the rest
// is discarded, so an oversized message is rejected like a short one and the
// connection stays usable.
func (w *wsStream) ReadFrame() (protocol.Frame, error) {
	mt, r, err := w.conn.NextReader()
	if err != nil {
		select {
		case <-w.closed:
			return protocol.Frame{}, ErrSessionClosed
		default:
		}
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return protocol.Frame{}, ErrSessionClosed
		}
		return protocol.Frame{}, err
	}
	data, err := io.ReadAll(io.LimitReader(r, protocol.FrameSize+1))
	if err == nil {
		_, err = io.Copy(io.Discard, r)
	}
	if err != nil {
		return protocol.Frame{}, err
	}
	if mt != websocket.BinaryMessage {
		return protocol.Frame{}, fmt.Errorf("%w: %w", protocol.ErrMalformedFrame, ErrUnsupportedMessage)
	}
	return protocol.DecodeFrame(data)
}

func (w *wsStream) WriteBlock(line string) error {
	select {
	case <-w.closed:
		return ErrSessionClosed
	default:
	}
	raw, err := protocol.EncodeBlock(line)
	if err != nil {
		return err
	}
	return w.conn.WriteMessage(websocket.BinaryMessage, raw)
}

func (w *wsStream) SetWriteDeadline(t time.Time) error { return w.conn.SetWriteDeadline(t) }
func (w *wsStream) RemoteAddr() string                 { return w.conn.RemoteAddr().String() }

func (w *wsStream) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closed)
		err = w.conn.Close()
	})
	return err
}

// WebSocketServer implements Transport using WebSocket connections
type WebSocketServer struct {
	Path string // WebSocket endpoint path, defaults to "/ws"
}

func (ws *WebSocketServer) Name() string {
	return WebSocket
}

func (ws *WebSocketServer) Start(ctx context.Context, addr string, gateway Gateway, opt Options) error {
	if ws.Path == "" {
		ws.Path = "/ws"
	}
	mux := http.NewServeMux()
	mux.Handle(ws.Path, ws.Handler(ctx, gateway, opt))

	logger.L().Sugar().Infow("websocket_listen", "addr", addr, "path", ws.Path)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown; hijacked connections are closed by their sessions via ctx
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// Handler upgrades each request and runs a session bound to ctx
func (ws *WebSocketServer) Handler(ctx context.Context, gateway Gateway, opt Options) http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  protocol.FrameSize,
		WriteBufferSize: protocol.BlockSize,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.L().Sugar().Warnw("ws_upgrade_error", "remote", r.RemoteAddr, "err", err)
			return
		}
		Serve(ctx, newWSStream(conn), gateway, opt)
	})
}
