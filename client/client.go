package client

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/hongjun500/chat-relay/internal/config"
	"github.com/hongjun500/chat-relay/internal/protocol"
	"github.com/hongjun500/chat-relay/internal/transport"
)

// Client 一个已连接的聊天客户端。Send 与 Receive 可以在不同 goroutine 中并发调用
type Client struct {
	name  string
	conn  net.Conn
	codec *transport.FrameCodec
}

// Dial 连接服务端。昵称在连接前校验
func Dial(ctx context.Context, addr, name string) (*Client, error) {
	if err := config.ValidateName(name); err != nil {
		return nil, err
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return New(conn, name), nil
}

// New 在已有连接上创建客户端
func New(conn net.Conn, name string) *Client {
	return &Client{name: name, conn: conn, codec: transport.NewFrameCodec(conn)}
}

func (c *Client) Name() string { return c.name }

// MaxText 当前昵称下一条聊天内容的最大字节数
func (c *Client) MaxText() int { return protocol.MaxTextLen(c.name) }

// Send 发送一行输入。超长内容返回 protocol.ErrFieldTooLong，不会截断发送。
// 聊天内容还要能和昵称一起放进一个下发块
func (c *Client) Send(payload string) error {
	if protocol.Classify(payload) == protocol.KindChat {
		if n := len(strings.TrimRight(payload, "\r\n")); n > c.MaxText() {
			return fmt.Errorf("%w: message %d > %d", protocol.ErrFieldTooLong, n, c.MaxText())
		}
	}
	return c.codec.WriteFrame(protocol.Frame{Sender: c.name, Payload: payload})
}

func (c *Client) Join() error  { return c.Send("/join") }
func (c *Client) Leave() error { return c.Send("/leave") }
func (c *Client) Ping() error  { return c.Send("/ping") }
func (c *Client) Who() error   { return c.Send("/who") }

// Receive 阻塞读取下一行服务端消息，不含结尾换行
func (c *Client) Receive() (string, error) {
	line, err := c.codec.ReadBlock()
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(line, "\n"), nil
}

func (c *Client) SetReadDeadline(t time.Time) error { return c.conn.SetReadDeadline(t) }

func (c *Client) Close() error { return c.conn.Close() }
