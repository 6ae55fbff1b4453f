package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/hongjun500/chat-relay/internal/chat"
	"github.com/hongjun500/chat-relay/internal/observe"
	"github.com/hongjun500/chat-relay/internal/protocol"
	"github.com/hongjun500/chat-relay/pkg/logger"
)

// Session 一个连接的完整生命周期。读协程处理入站命令，写协程把
// client 的输出缓冲写到流上，两者互不阻塞
type Session struct {
	id        string
	stream    Stream
	client    *chat.Client
	closeOnce sync.Once
	closeErr  error
}

func newSession(stream Stream, opt Options) *Session {
	id := uuid.NewString()
	return &Session{
		id:     id,
		stream: stream,
		client: chat.NewClientWithBuffer(id, opt.OutBuffer),
	}
}

func (s *Session) ID() string           { return s.id }
func (s *Session) RemoteAddr() string   { return s.stream.RemoteAddr() }
func (s *Session) Client() *chat.Client { return s.client }

// Close 关闭输出缓冲和底层流，可重复调用
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.client.Close()
		s.closeErr = s.stream.Close()
	})
	return s.closeErr
}

// Serve 在当前 goroutine 运行会话，直到流出错、对端断开或 ctx 结束
func Serve(ctx context.Context, stream Stream, gateway Gateway, opt Options) {
	sess := newSession(stream, opt)
	gateway.OnSessionOpen(sess)

	stop := context.AfterFunc(ctx, func() { _ = sess.Close() })
	defer stop()

	written := make(chan struct{})
	go func() {
		defer close(written)
		sess.writeLoop(opt)
	}()

	err := sess.readLoop(ctx, gateway, opt)
	gateway.OnSessionClose(sess, err)
	<-written
}

func (s *Session) writeLoop(opt Options) {
	for line := range s.client.Outgoing() {
		if opt.WriteTimeout > 0 {
			_ = s.stream.SetWriteDeadline(time.Now().Add(opt.WriteTimeout))
		}
		if err := s.stream.WriteBlock(line); err != nil {
			if errors.Is(err, protocol.ErrFieldTooLong) {
				logger.L().Sugar().Warnw("session_block_too_long", "client", s.id, "len", len(line))
				continue
			}
			if !isClosedErr(err) {
				logger.L().Sugar().Warnw("session_write_error", "client", s.id, "err", err)
			}
			// 关闭流让读协程退出；剩余缓冲随 client 一起丢弃
			_ = s.Close()
			return
		}
	}
}

func (s *Session) readLoop(ctx context.Context, gateway Gateway, opt Options) error {
	var limiter *rate.Limiter
	if opt.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opt.RateLimit), max(opt.RateBurst, 1))
	}
	for {
		f, err := s.stream.ReadFrame()
		if err != nil {
			if errors.Is(err, protocol.ErrMalformedFrame) {
				observe.IncRejectedFrame()
				logger.L().Sugar().Debugw("session_frame_rejected", "client", s.id, "code", ErrorCode(err), "err", err)
				s.client.Send(protocol.ReplyMalformed)
				continue
			}
			if isClosedErr(err) {
				return nil
			}
			return err
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}
		gateway.OnFrame(s, f)
	}
}

func isClosedErr(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, ErrSessionClosed)
}
