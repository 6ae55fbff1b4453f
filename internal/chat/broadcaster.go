package chat

import (
	"sync/atomic"

	"github.com/hongjun500/chat-relay/internal/observe"
	"github.com/hongjun500/chat-relay/pkg/logger"
)

// Mirror 接收本地广播的副本（如跨节点总线），实现不得阻塞
type Mirror interface {
	Mirror(sender, line string)
}

// Broadcaster 扇出引擎：把一行文本投递给除发送者外的所有参与者
type Broadcaster struct {
	reg    *Registry
	mirror atomic.Pointer[mirrorRef]
}

type mirrorRef struct{ m Mirror }

func NewBroadcaster(reg *Registry) *Broadcaster {
	return &Broadcaster{reg: reg}
}

// WithMirror 设置镜像。应在开始服务前调用；服务中替换也是安全的，
// 只是替换前的广播不会被镜像
func (b *Broadcaster) WithMirror(m Mirror) *Broadcaster {
	b.mirror.Store(&mirrorRef{m: m})
	return b
}

// Broadcast 本地消息扇出，返回成功投递的人数。单个接收方失败只记录，不中断扇出
func (b *Broadcaster) Broadcast(sender, line string) int {
	n := b.fanout(sender, line)
	observe.IncMessage("local")
	if ref := b.mirror.Load(); ref != nil && ref.m != nil {
		ref.m.Mirror(sender, line)
	}
	return n
}

// DeliverRemote 投递来自其它节点的消息，不再回写总线
func (b *Broadcaster) DeliverRemote(sender, line string) int {
	n := b.fanout(sender, line)
	observe.IncMessage("remote")
	return n
}

func (b *Broadcaster) fanout(excluded, line string) int {
	delivered := 0
	b.reg.ForEachExcept(excluded, func(p Participant) {
		if err := p.Conn.Deliver(line); err != nil {
			logger.L().Sugar().Debugw("fanout_skip", "to", p.Name, "err", err)
			return
		}
		delivered++
	})
	observe.AddDelivered(delivered)
	return delivered
}
