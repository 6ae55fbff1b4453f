package transport

import (
	"context"
	"net"
	"time"

	"github.com/hongjun500/chat-relay/internal/protocol"
	"github.com/hongjun500/chat-relay/pkg/logger"
)

// tcpStream adapts a net.Conn to Stream using fixed-size frames
type tcpStream struct {
	conn  net.Conn
	codec *FrameCodec
}

func newTCPStream(conn net.Conn) *tcpStream {
	return &tcpStream{conn: conn, codec: NewFrameCodec(conn)}
}

func (s *tcpStream) ReadFrame() (protocol.Frame, error) { return s.codec.ReadFrame() }
func (s *tcpStream) WriteBlock(line string) error       { return s.codec.WriteBlock(line) }
func (s *tcpStream) SetWriteDeadline(t time.Time) error { return s.conn.SetWriteDeadline(t) }
func (s *tcpStream) Close() error                       { return s.conn.Close() }
func (s *tcpStream) RemoteAddr() string {
	if s.conn != nil {
		return s.conn.RemoteAddr().String()
	}
	return ""
}

// TCPServer implements Transport: one session per accepted connection
type TCPServer struct{}

func (s *TCPServer) Name() string { return Tcp }

func (s *TCPServer) Start(ctx context.Context, addr string, gateway Gateway, opt Options) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, gateway, opt)
}

// Serve accepts on ln until ctx is done
func (s *TCPServer) Serve(ctx context.Context, ln net.Listener, gateway Gateway, opt Options) error {
	logger.L().Sugar().Infow("tcp_listen", "addr", ln.Addr().String())
	go func() { <-ctx.Done(); _ = ln.Close() }()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.L().Sugar().Warnw("tcp_accept_error", "err", err)
			time.Sleep(10 * time.Millisecond)
			continue
		}
		go Serve(ctx, newTCPStream(conn), gateway, opt)
	}
}
