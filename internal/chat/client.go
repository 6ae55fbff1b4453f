package chat

import (
	"sync"

	"github.com/hongjun500/chat-relay/internal/observe"
)

// Client 一个连接的下发端：读协程把回复和广播写入 out，写协程统一写网络，
// 这样同一连接上的两个方向不会交错写出半帧
type Client struct {
	ID string
	// Name 当前 join 的名字，空表示未注册；只由所属会话的读协程修改
	Name string

	out       chan string
	mu        sync.RWMutex // Deliver 持读锁，Close 持写锁，避免向已关闭的 channel 发送
	closed    chan struct{}
	closeOnce sync.Once
}

// NewClientWithBuffer 允许指定发送缓冲区大小
func NewClientWithBuffer(id string, bufferSize int) *Client {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Client{
		ID:     id,
		out:    make(chan string, bufferSize),
		closed: make(chan struct{}),
	}
}

// Deliver 非阻塞写入输出缓冲。缓冲满时本条直接丢弃（至多一次，尽力而为）
func (c *Client) Deliver(line string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.IsClosed() {
		observe.IncDropped("closed")
		return ErrClientClosed
	}
	select {
	case c.out <- line:
		return nil
	default:
		observe.IncDropped("full")
		return ErrOutboxFull
	}
}

// Send 给本连接回复，忽略失败
func (c *Client) Send(line string) { _ = c.Deliver(line) }

// Registered 是否已 join
func (c *Client) Registered() bool { return c.Name != "" }

// Outgoing 返回只读输出通道，transport 读取并写到网络
func (c *Client) Outgoing() <-chan string {
	return c.out
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		close(c.closed)
		close(c.out)
		c.mu.Unlock()
	})
}

// IsClosed 非阻塞判断是否已关闭
func (c *Client) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}
