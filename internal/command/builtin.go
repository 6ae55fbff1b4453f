package command

import (
	"errors"
	"fmt"

	"github.com/hongjun500/chat-relay/internal/chat"
	"github.com/hongjun500/chat-relay/internal/observe"
	"github.com/hongjun500/chat-relay/internal/protocol"
)

var builtinHandlers = map[protocol.Kind]struct {
	help string
	fn   HandlerFunc
}{
	protocol.KindPing:  {"查询服务是否在线", ping},
	protocol.KindJoin:  {"以当前昵称加入聊天室", join},
	protocol.KindLeave: {"离开聊天室", leave},
	protocol.KindWho:   {"查看其他在线用户", who},
}

// RegisterBuiltins 按 protocol.Keywords 的顺序注册 /ping /join /leave /who
func RegisterBuiltins(r *Registry) error {
	for _, kw := range protocol.Keywords {
		h, ok := builtinHandlers[kw.Kind]
		if !ok {
			return fmt.Errorf("no builtin handler for %s", kw.Word)
		}
		if err := r.Register(&Command{Name: kw.Kind.String(), Help: h.help, Handler: h.fn}); err != nil {
			return err
		}
	}
	return nil
}

func ping(ctx *Context) error {
	ctx.Client.Send(protocol.ReplyPing)
	return nil
}

// join 已用其它名字注册的会话先离开旧名字（改名 = 移除 + 重新加入）
func join(ctx *Context) error {
	c, name := ctx.Client, ctx.Frame.Sender
	if c.Registered() && c.Name != name {
		removeOwned(ctx, c.Name)
	}
	err := ctx.Members.Add(chat.Participant{Name: name, Conn: c})
	switch {
	case errors.Is(err, chat.ErrNameTaken):
		observe.IncCommandError("name_taken")
		c.Send(protocol.ReplyNameTaken)
		return nil
	case err != nil:
		return err
	}
	c.Name = name
	c.Send(protocol.ReplyJoined)
	return nil
}

// leave 名字不存在或属于其它会话时是空操作，照常回复
func leave(ctx *Context) error {
	if !removeOwned(ctx, ctx.Frame.Sender) {
		observe.IncCommandError("not_registered")
	}
	ctx.Client.Send(protocol.ReplyLeft)
	return nil
}

// who 只回复给请求者，每个名字单独一行
func who(ctx *Context) error {
	c := ctx.Client
	if !owns(ctx, ctx.Frame.Sender) {
		observe.IncCommandError("not_registered")
		return nil
	}
	ctx.Members.ForEachExcept(c.Name, func(p chat.Participant) {
		c.Send(p.Name)
	})
	return nil
}

func owns(ctx *Context, name string) bool {
	_, ok := ctx.Members.FindFunc(func(p chat.Participant) bool {
		return p.Name == name && p.Conn == ctx.Client
	})
	return ok
}

func removeOwned(ctx *Context, name string) bool {
	_, ok := ctx.Members.RemoveFunc(func(p chat.Participant) bool {
		return p.Name == name && p.Conn == ctx.Client
	})
	if ok && ctx.Client.Name == name {
		ctx.Client.Name = ""
	}
	return ok
}
