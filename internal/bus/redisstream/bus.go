package redisstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/hongjun500/chat-relay/pkg/logger"
)

// DefaultMaxLen 流的近似长度上限，总线只做中转，不做历史
const DefaultMaxLen = 10000

var ErrBadEntry = errors.New("redisstream: bad entry")

// Entry 一条跨节点广播
type Entry struct {
	Node string
	From string
	Text string
	When time.Time
}

type Bus struct {
	cli    *redis.Client
	stream string
	node   string
	maxLen int64
}

func New(addr string, db int, stream, node string) *Bus {
	cli := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	return &Bus{cli: cli, stream: stream, node: node, maxLen: DefaultMaxLen}
}

// Node 本节点标识，本节点写入的条目在消费时被跳过
func (b *Bus) Node() string { return b.node }

func (b *Bus) Ping(ctx context.Context) error {
	return b.cli.Ping(ctx).Err()
}

func (b *Bus) Publish(ctx context.Context, from, text string) error {
	payload, err := encode(Entry{Node: b.node, From: from, Text: text, When: time.Now()})
	if err != nil {
		return err
	}
	return b.cli.XAdd(ctx, &redis.XAddArgs{
		Stream: b.stream,
		MaxLen: b.maxLen,
		Approx: true,
		Values: map[string]any{"data": payload},
	}).Err()
}

type Handler func(ctx context.Context, e Entry) error

// Consume blocks and delivers entries written after the call; cancel ctx to stop
func (b *Bus) Consume(ctx context.Context, handler Handler) error {
	lastID := "$"
	for {
		res, err := b.cli.XRead(ctx, &redis.XReadArgs{
			Streams: []string{b.stream, lastID},
			Count:   100,
			Block:   5 * time.Second,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// transient errors: back off and retry
			logger.L().Sugar().Warnw("bus_read_error", "stream", b.stream, "err", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}
		for _, str := range res {
			lastID = b.dispatch(ctx, str.Messages, lastID, handler)
		}
	}
}

// dispatch 解码并投递一批消息，返回最后一条的 ID
func (b *Bus) dispatch(ctx context.Context, msgs []redis.XMessage, lastID string, handler Handler) string {
	for _, xmsg := range msgs {
		lastID = xmsg.ID
		raw, _ := xmsg.Values["data"].(string)
		e, err := decode([]byte(raw))
		if err != nil {
			logger.L().Sugar().Warnw("bus_decode_error", "id", xmsg.ID, "err", err)
			continue
		}
		if e.Node == b.node {
			continue
		}
		if err := handler(ctx, e); err != nil {
			logger.L().Sugar().Warnw("bus_handler_error", "id", xmsg.ID, "err", err)
		}
	}
	return lastID
}

func (b *Bus) Close() error {
	return b.cli.Close()
}

func encode(e Entry) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]any{
		"node": e.Node,
		"from": e.From,
		"text": e.Text,
		"ts":   float64(e.When.UnixMilli()),
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func decode(raw []byte) (Entry, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(raw, &s); err != nil {
		return Entry{}, fmt.Errorf("%w: %w", ErrBadEntry, err)
	}
	f := s.GetFields()
	e := Entry{
		Node: f["node"].GetStringValue(),
		From: f["from"].GetStringValue(),
		Text: f["text"].GetStringValue(),
		When: time.UnixMilli(int64(f["ts"].GetNumberValue())),
	}
	if e.Node == "" || e.Text == "" {
		return Entry{}, fmt.Errorf("%w: missing node or text", ErrBadEntry)
	}
	return e, nil
}
