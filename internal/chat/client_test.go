package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientClose(t *testing.T) {
	c := NewClientWithBuffer("id1", 2)
	c.Send("hello")

	if c.IsClosed() {
		t.Fatalf("client should be open before Close")
	}

	c.Close()
	if !c.IsClosed() {
		t.Fatalf("client should be closed after Close")
	}
	// 重复关闭是安全的
	c.Close()

	// 已缓冲的消息仍可读出，之后通道关闭
	select {
	case msg, ok := <-c.Outgoing():
		require.True(t, ok)
		require.Equal(t, "hello", msg)
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timeout waiting to read from outgoing after Close")
	}
	_, ok := <-c.Outgoing()
	require.False(t, ok)

	require.ErrorIs(t, c.Deliver("late"), ErrClientClosed)
}

func TestClientDeliverDropWhenBufferFull(t *testing.T) {
	// buffer size = 1，第二条应被丢弃
	c := NewClientWithBuffer("id2", 1)
	require.NoError(t, c.Deliver("a"))
	require.ErrorIs(t, c.Deliver("b"), ErrOutboxFull)

	var first string
	select {
	case first = <-c.Outgoing():
	case <-time.After(1 * time.Second):
		t.Fatalf("timeout waiting first message")
	}
	require.Equal(t, "a", first)

	select {
	case m := <-c.Outgoing():
		t.Fatalf("expected no second message, got %q", m)
	default:
	}
}

func TestClientRegistered(t *testing.T) {
	c := NewClientWithBuffer("id3", 0)
	require.False(t, c.Registered())
	c.Name = "alice"
	require.True(t, c.Registered())
	require.Equal(t, 256, cap(c.out))
}
