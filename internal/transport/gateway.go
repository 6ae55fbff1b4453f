package transport

import (
	"github.com/hongjun500/chat-relay/internal/chat"
	"github.com/hongjun500/chat-relay/internal/observe"
	"github.com/hongjun500/chat-relay/internal/protocol"
	"github.com/hongjun500/chat-relay/pkg/logger"
)

// FrameHandler 业务层入口，command.Processor 实现该接口
type FrameHandler interface {
	Handle(c *chat.Client, f protocol.Frame)
}

// Gateway 网关接口，传输层与业务层之间的桥梁
type Gateway interface {
	OnSessionOpen(s *Session)
	OnFrame(s *Session, f protocol.Frame)
	OnSessionClose(s *Session, err error)
}

// RelayGateway 把帧交给 FrameHandler，并在会话结束时清理其参与者条目
type RelayGateway struct {
	members  *chat.Registry
	handler  FrameHandler
	sessions *SessionManager
}

func NewRelayGateway(members *chat.Registry, handler FrameHandler) *RelayGateway {
	return &RelayGateway{
		members:  members,
		handler:  handler,
		sessions: NewSessionManager(),
	}
}

// OnSessionOpen 会话开启事件
func (g *RelayGateway) OnSessionOpen(s *Session) {
	g.sessions.Add(s)
	observe.AddSession(1)
	logger.L().Sugar().Infow("session_open", "client", s.ID(), "remote", s.RemoteAddr())
}

// OnFrame 处理收到的帧
func (g *RelayGateway) OnFrame(s *Session, f protocol.Frame) {
	g.handler.Handle(s.Client(), f)
}

// OnSessionClose 先移除参与者再关闭连接，之后不会再有广播投递到该会话
func (g *RelayGateway) OnSessionClose(s *Session, err error) {
	c := s.Client()
	if p, ok := g.members.RemoveFunc(func(p chat.Participant) bool { return p.Conn == c }); ok {
		logger.L().Sugar().Infow("participant_removed", "client", s.ID(), "name", p.Name)
	}
	_ = s.Close()
	g.sessions.Remove(s.ID())
	observe.AddSession(-1)
	if err != nil {
		logger.L().Sugar().Warnw("session_closed", "client", s.ID(), "err", err)
		return
	}
	logger.L().Sugar().Infow("session_closed", "client", s.ID(), "open", g.sessions.Count())
}

// Sessions 获取会话管理器
func (g *RelayGateway) Sessions() *SessionManager {
	return g.sessions
}
