package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hongjun500/chat-relay/internal/chat"
	"github.com/hongjun500/chat-relay/internal/protocol"
)

type fixture struct {
	members *chat.Registry
	proc    *Processor
}

func newFixture(t *testing.T) *fixture {
	members := chat.NewRegistry()
	proc, err := NewProcessor(members, chat.NewBroadcaster(members))
	require.NoError(t, err)
	return &fixture{members: members, proc: proc}
}

func (f *fixture) send(c *chat.Client, sender, payload string) {
	f.proc.Handle(c, protocol.Frame{Sender: sender, Payload: payload})
}

func (f *fixture) joined(t *testing.T, name string) *chat.Client {
	c := chat.NewClientWithBuffer(name+"-conn", 16)
	f.send(c, name, "/join")
	require.Equal(t, []string{protocol.ReplyJoined}, drain(c))
	return c
}

func drain(c *chat.Client) []string {
	var out []string
	for {
		select {
		case s := <-c.Outgoing():
			out = append(out, s)
		default:
			return out
		}
	}
}

func TestPing(t *testing.T) {
	f := newFixture(t)
	c := chat.NewClientWithBuffer("c", 4)

	f.send(c, "alice", "/ping")

	require.Equal(t, []string{protocol.ReplyPing}, drain(c))
	require.Zero(t, f.members.Len())
}

func TestJoin_Collision(t *testing.T) {
	f := newFixture(t)
	first := f.joined(t, "bob")
	f.send(first, "bob", "hello")

	second := chat.NewClientWithBuffer("second", 4)
	f.send(second, "bob", "/join")

	require.Equal(t, []string{protocol.ReplyNameTaken}, drain(second))
	require.Equal(t, []string{"bob"}, f.members.Names())
	require.False(t, second.Registered())
}

func TestJoin_Twice(t *testing.T) {
	f := newFixture(t)
	c := f.joined(t, "bob")

	f.send(c, "bob", "/join")

	require.Equal(t, []string{protocol.ReplyNameTaken}, drain(c))
	require.Equal(t, []string{"bob"}, f.members.Names())
	require.True(t, c.Registered())
}

func TestJoin_Rename(t *testing.T) {
	f := newFixture(t)
	c := f.joined(t, "bob")
	f.joined(t, "alice")

	f.send(c, "robert", "/join")

	require.Equal(t, []string{protocol.ReplyJoined}, drain(c))
	require.Equal(t, []string{"alice", "robert"}, f.members.Names())
	require.Equal(t, "robert", c.Name)
}

func TestLeave(t *testing.T) {
	f := newFixture(t)
	c := f.joined(t, "bob")

	f.send(c, "bob", "/leave")

	require.Equal(t, []string{protocol.ReplyLeft}, drain(c))
	require.Zero(t, f.members.Len())
	require.False(t, c.Registered())
}

func TestLeave_AbsentIsNoop(t *testing.T) {
	f := newFixture(t)
	f.joined(t, "alice")
	stranger := chat.NewClientWithBuffer("stranger", 4)

	f.send(stranger, "nobody", "/leave")
	// 别人的名字也不能被移除
	f.send(stranger, "alice", "/leave")

	require.Equal(t, []string{protocol.ReplyLeft, protocol.ReplyLeft}, drain(stranger))
	require.Equal(t, []string{"alice"}, f.members.Names())
}

func TestWho_ListsOthersInJoinOrder(t *testing.T) {
	f := newFixture(t)
	alice := f.joined(t, "alice")
	bob := f.joined(t, "bob")
	carol := f.joined(t, "carol")

	f.send(alice, "alice", "/who")

	require.Equal(t, []string{"bob", "carol"}, drain(alice))
	require.Empty(t, drain(bob))
	require.Empty(t, drain(carol))
}

func TestWho_Unregistered(t *testing.T) {
	f := newFixture(t)
	f.joined(t, "alice")
	c := chat.NewClientWithBuffer("c", 4)

	f.send(c, "zed", "/who")

	require.Empty(t, drain(c))
}

func TestChat_NoEchoToSender(t *testing.T) {
	f := newFixture(t)
	alice := f.joined(t, "alice")
	bob := f.joined(t, "bob")

	f.send(alice, "alice", "hi")

	require.Equal(t, []string{"alice: hi"}, drain(bob))
	require.Empty(t, drain(alice))
}

func TestChat_UnregisteredDropped(t *testing.T) {
	f := newFixture(t)
	bob := f.joined(t, "bob")
	ghost := chat.NewClientWithBuffer("ghost", 4)

	f.send(ghost, "ghost", "boo")
	// 冒用已注册的名字
	f.send(ghost, "bob", "i am bob")

	require.Empty(t, drain(bob))
	require.Empty(t, drain(ghost))
}

func TestChat_NearMissKeywordIsChat(t *testing.T) {
	f := newFixture(t)
	alice := f.joined(t, "alice")
	bob := f.joined(t, "bob")

	f.send(alice, "alice", "/pin")
	f.send(alice, "alice", "/whoami")

	require.Equal(t, []string{"alice: /pin", "alice: /whoami"}, drain(bob))
	require.Empty(t, drain(alice))
}

func TestChat_EmptyPayloadIgnored(t *testing.T) {
	f := newFixture(t)
	alice := f.joined(t, "alice")
	bob := f.joined(t, "bob")

	f.send(alice, "alice", "")

	require.Empty(t, drain(bob))
}

func TestChat_TooLongForBlockRejected(t *testing.T) {
	f := newFixture(t)
	alice := f.joined(t, "alice")
	bob := f.joined(t, "bob")

	f.send(alice, "alice", strings.Repeat("x", protocol.MaxPayloadLen))
	require.Equal(t, []string{protocol.ReplyTooLong}, drain(alice))
	require.Empty(t, drain(bob))

	longest := strings.Repeat("y", protocol.MaxTextLen("alice"))
	f.send(alice, "alice", longest)
	require.Equal(t, []string{protocol.ChatLine("alice", longest)}, drain(bob))
	require.Empty(t, drain(alice))
}

func TestProcessor_CommandsListsBuiltins(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, []string{"/ping", "/join", "/leave", "/who"}, f.proc.Commands().Names())
}
