package command

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hongjun500/chat-relay/internal/chat"
	"github.com/hongjun500/chat-relay/internal/protocol"
)

func TestRegistryExecute_Basic(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register(&Command{
		Name: "echo",
		Help: "echo text",
		Handler: func(ctx *Context) error {
			ctx.Client.Send("ok:" + ctx.Args[0])
			return nil
		},
	})
	require.NoError(t, err)

	c := chat.NewClientWithBuffer("c1", 4)
	ctx := &Context{Client: c, Frame: protocol.Frame{Sender: "alice", Payload: "/echo hi"}}

	handled, err := reg.Execute(ctx)
	require.True(t, handled)
	require.NoError(t, err)
	require.Equal(t, "ok:hi", <-c.Outgoing())

	handled, err = reg.Execute(&Context{Client: c, Frame: protocol.Frame{Sender: "alice", Payload: "/echoes"}})
	require.False(t, handled)
	require.NoError(t, err)
}

func TestRegistryRegister_Invalid(t *testing.T) {
	reg := NewRegistry()
	noop := func(*Context) error { return nil }

	require.Error(t, reg.Register(nil))
	require.Error(t, reg.Register(&Command{Name: " ", Handler: noop}))
	require.Error(t, reg.Register(&Command{Name: "/x", Handler: noop}))
	require.Error(t, reg.Register(&Command{Name: "x"}))
	require.NoError(t, reg.Register(&Command{Name: "x", Handler: noop}))
	require.Error(t, reg.Register(&Command{Name: "x", Handler: noop}))
}

func TestBuiltins_MatchAgreesWithClassify(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterBuiltins(reg))
	require.Equal(t, []string{"/ping", "/join", "/leave", "/who"}, reg.Names())

	for _, payload := range []string{"/ping", "/pin", "/join me", "/joined", "/leave", "/who", "/whom", "hello", "/Who", "/who\tnow", "/ping\r\n", " /ping"} {
		cmd, ok := reg.Match(payload)
		kind := protocol.Classify(payload)
		if kind == protocol.KindChat {
			require.False(t, ok, payload)
			continue
		}
		require.True(t, ok, payload)
		require.Equal(t, kind.String(), cmd.Name)
	}
}

func TestRegistryGet(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, RegisterBuiltins(reg))

	cmd, ok := reg.Get("/join")
	require.True(t, ok)
	require.Equal(t, "join", cmd.Name)
	require.NotEmpty(t, cmd.Help)

	cmd, ok = reg.Get("who")
	require.True(t, ok)
	require.Equal(t, "who", cmd.Name)

	_, ok = reg.Get("/JOIN")
	require.False(t, ok)
	_, ok = reg.Get("/nick")
	require.False(t, ok)
}
