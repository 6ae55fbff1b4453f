package command

import (
	"github.com/hongjun500/chat-relay/internal/chat"
	"github.com/hongjun500/chat-relay/internal/observe"
	"github.com/hongjun500/chat-relay/internal/protocol"
	"github.com/hongjun500/chat-relay/pkg/logger"
)

// Processor 把一条输入帧解释为控制命令或聊天消息并执行
type Processor struct {
	commands *Registry
	members  *chat.Registry
	fanout   *chat.Broadcaster
}

func NewProcessor(members *chat.Registry, fanout *chat.Broadcaster) (*Processor, error) {
	cmds := NewRegistry()
	if err := RegisterBuiltins(cmds); err != nil {
		return nil, err
	}
	return &Processor{commands: cmds, members: members, fanout: fanout}, nil
}

// Commands 返回命令表，可继续注册扩展命令
func (p *Processor) Commands() *Registry { return p.commands }

// Handle 处理一条输入。错误只影响当前会话，不外抛
func (p *Processor) Handle(c *chat.Client, f protocol.Frame) {
	ctx := &Context{Members: p.members, Fanout: p.fanout, Client: c, Frame: f}
	handled, err := p.commands.Execute(ctx)
	if err != nil {
		logger.L().Sugar().Warnw("command_error", "client", c.ID, "sender", f.Sender, "err", err)
		return
	}
	if handled {
		return
	}
	p.chat(ctx)
}

// chat 未注册或名字不属于本会话时静默丢弃
func (p *Processor) chat(ctx *Context) {
	f := ctx.Frame
	if f.Payload == "" {
		return
	}
	if !owns(ctx, f.Sender) {
		observe.IncCommandError("not_registered")
		logger.L().Sugar().Debugw("chat_dropped", "client", ctx.Client.ID, "sender", f.Sender)
		return
	}
	line := protocol.ChatLine(f.Sender, f.Payload)
	if len(line) > protocol.MaxLineLen {
		observe.IncCommandError("too_long")
		ctx.Client.Send(protocol.ReplyTooLong)
		return
	}
	observe.IncCommand(protocol.KindChat.String())
	p.fanout.Broadcast(f.Sender, line)
}
