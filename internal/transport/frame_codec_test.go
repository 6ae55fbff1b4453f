package transport

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hongjun500/chat-relay/internal/protocol"
)

func TestFrameCodec_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	codec := NewFrameCodec(&buf)

	require.NoError(t, codec.WriteFrame(protocol.Frame{Sender: "alice", Payload: "hello"}))
	require.NoError(t, codec.WriteFrame(protocol.Frame{Sender: "bob", Payload: "/who"}))
	require.Equal(t, 2*protocol.FrameSize, buf.Len())

	f, err := codec.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, protocol.Frame{Sender: "alice", Payload: "hello"}, f)

	f, err = codec.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, "bob", f.Sender)
	require.Equal(t, "/who", f.Payload)

	_, err = codec.ReadFrame()
	require.ErrorIs(t, err, io.EOF)
}

func TestFrameCodec_PartialFrame(t *testing.T) {
	codec := NewFrameCodec(bytes.NewBuffer(make([]byte, 10)))
	_, err := codec.ReadFrame()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestFrameCodec_MalformedFrameKeepsAlignment(t *testing.T) {
	var buf bytes.Buffer
	codec := NewFrameCodec(&buf)
	require.NoError(t, codec.WriteFrame(protocol.Frame{Payload: "anonymous"}))
	require.NoError(t, codec.WriteFrame(protocol.Frame{Sender: "carol", Payload: "/ping"}))

	_, err := codec.ReadFrame()
	require.ErrorIs(t, err, protocol.ErrMalformedFrame)

	f, err := codec.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, "carol", f.Sender)
}

func TestFrameCodec_Blocks(t *testing.T) {
	var buf bytes.Buffer
	codec := NewFrameCodec(&buf)

	require.NoError(t, codec.WriteBlock(protocol.ReplyPing))
	require.Equal(t, protocol.BlockSize, buf.Len())

	line, err := codec.ReadBlock()
	require.NoError(t, err)
	require.Equal(t, protocol.ReplyPing+"\n", line)

	err = codec.WriteFrame(protocol.Frame{Sender: "x", Payload: string(make([]byte, protocol.PayloadSize))})
	require.ErrorIs(t, err, protocol.ErrFieldTooLong)
	require.Zero(t, buf.Len())
}
