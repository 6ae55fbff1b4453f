package transport

import (
	"context"
	"time"

	"github.com/hongjun500/chat-relay/internal/protocol"
)

const (
	Tcp       = "tcp"
	WebSocket = "websocket"
)

// Transport 统一的传输层接口，负责监听并为每个连接启动会话
type Transport interface {
	Name() string
	Start(ctx context.Context, addr string, gateway Gateway, opt Options) error
}

// Stream 一个客户端的双向帧流，由会话独占
type Stream interface {
	ReadFrame() (protocol.Frame, error)
	WriteBlock(line string) error
	SetWriteDeadline(t time.Time) error
	RemoteAddr() string
	Close() error
}
