package redisstream

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hongjun500/chat-relay/internal/chat"
	"github.com/hongjun500/chat-relay/internal/observe"
	"github.com/hongjun500/chat-relay/pkg/logger"
)

// Log 跨节点消息通道，Bus 实现该接口
type Log interface {
	Publish(ctx context.Context, from, text string) error
	Consume(ctx context.Context, handler Handler) error
}

type outbound struct {
	from string
	text string
}

// Bridge 把本地广播写入总线，并把其它节点的广播投递给本地参与者
type Bridge struct {
	log     Log
	fanout  *chat.Broadcaster
	pending chan outbound
}

func NewBridge(log Log, fanout *chat.Broadcaster, buffer int) *Bridge {
	if buffer <= 0 {
		buffer = 1024
	}
	return &Bridge{log: log, fanout: fanout, pending: make(chan outbound, buffer)}
}

// Mirror 实现 chat.Mirror。在广播路径上调用，队列满时丢弃
func (b *Bridge) Mirror(sender, line string) {
	select {
	case b.pending <- outbound{from: sender, text: line}:
	default:
		observe.IncDropped("bridge")
	}
}

// Run 直到 ctx 结束或消费出错
func (b *Bridge) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case m := <-b.pending:
				if err := b.log.Publish(ctx, m.from, m.text); err != nil {
					logger.L().Sugar().Warnw("bridge_publish_error", "from", m.from, "err", err)
				}
			}
		}
	})
	g.Go(func() error {
		return b.log.Consume(ctx, func(_ context.Context, e Entry) error {
			n := b.fanout.DeliverRemote(e.From, e.Text)
			logger.L().Sugar().Debugw("bridge_deliver", "node", e.Node, "from", e.From, "delivered", n)
			return nil
		})
	})
	return g.Wait()
}
