package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// 帧布局与原始 C 客户端一致：payload 在前，sender 在后，两者都是定长 NUL 填充字段
const (
	PayloadSize = 2048
	NameSize    = 100
	FrameSize   = PayloadSize + NameSize
	// BlockSize 服务端下发的文本块大小
	BlockSize = PayloadSize

	// 字段内容必须为 NUL 结尾留出一个字节
	MaxPayloadLen = PayloadSize - 1
	MaxNameLen    = NameSize - 1
	// MaxLineLen 一行下发文本的上限，不含自动补上的换行
	MaxLineLen = BlockSize - 2
)

var (
	ErrFieldTooLong   = errors.New("field too long")
	ErrMalformedFrame = errors.New("malformed frame")
)

// Frame 一条客户端输入
type Frame struct {
	Sender  string
	Payload string
}

// EncodeFrame 将 Frame 编码为定长字节；超长字段直接拒绝，不截断
func EncodeFrame(f Frame) ([]byte, error) {
	if len(f.Payload) > MaxPayloadLen {
		return nil, fmt.Errorf("%w: payload %d > %d", ErrFieldTooLong, len(f.Payload), MaxPayloadLen)
	}
	if len(f.Sender) > MaxNameLen {
		return nil, fmt.Errorf("%w: sender %d > %d", ErrFieldTooLong, len(f.Sender), MaxNameLen)
	}
	buf := make([]byte, FrameSize)
	copy(buf[:PayloadSize], f.Payload)
	copy(buf[PayloadSize:], f.Sender)
	return buf, nil
}

// DecodeFrame 解析定长帧。字段读到第一个 NUL 为止，payload 末尾的换行会被去掉
func DecodeFrame(b []byte) (Frame, error) {
	if len(b) != FrameSize {
		return Frame{}, fmt.Errorf("%w: size %d, want %d", ErrMalformedFrame, len(b), FrameSize)
	}
	f := Frame{
		Payload: strings.TrimRight(field(b[:PayloadSize]), "\r\n"),
		Sender:  strings.TrimSpace(field(b[PayloadSize:])),
	}
	if f.Sender == "" {
		return Frame{}, fmt.Errorf("%w: empty sender", ErrMalformedFrame)
	}
	return f, nil
}

// EncodeBlock 将一行文本编码为下发块，自动补齐换行
func EncodeBlock(line string) ([]byte, error) {
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	if len(line) > BlockSize-1 {
		return nil, fmt.Errorf("%w: block %d > %d", ErrFieldTooLong, len(line), BlockSize-1)
	}
	buf := make([]byte, BlockSize)
	copy(buf, line)
	return buf, nil
}

// DecodeBlock 取出下发块中的文本（包含结尾换行）
func DecodeBlock(b []byte) string { return field(b) }

func field(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
