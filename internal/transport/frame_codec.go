package transport

import (
	"fmt"
	"io"
	"sync"

	"github.com/hongjun500/chat-relay/internal/protocol"
)

// FrameCodec 定长帧的读写器：入站为 payload+sender 帧，出站为文本块
type FrameCodec struct {
	rw      io.ReadWriter
	readMu  sync.Mutex // 读锁
	writeMu sync.Mutex // 写锁
	bufPool *sync.Pool // 用于复用读缓冲区
}

func NewFrameCodec(rw io.ReadWriter) *FrameCodec {
	return &FrameCodec{
		rw: rw,
		bufPool: &sync.Pool{
			New: func() any {
				b := make([]byte, protocol.FrameSize)
				return &b
			},
		},
	}
}

// ReadFrame 读取一个完整的入站帧。连接在帧中途断开返回 io.ErrUnexpectedEOF；
// 内容不合法返回 protocol.ErrMalformedFrame，此时整帧已被消费，流仍然对齐
func (c *FrameCodec) ReadFrame() (protocol.Frame, error) {
	if c == nil || c.rw == nil {
		return protocol.Frame{}, fmt.Errorf("framecodec or reader is nil")
	}
	c.readMu.Lock()
	defer c.readMu.Unlock()
	bp := c.bufPool.Get().(*[]byte)
	defer c.bufPool.Put(bp)
	if _, err := io.ReadFull(c.rw, *bp); err != nil {
		return protocol.Frame{}, err
	}
	return protocol.DecodeFrame(*bp)
}

// WriteFrame 写入一个入站帧（客户端使用）
func (c *FrameCodec) WriteFrame(f protocol.Frame) error {
	raw, err := protocol.EncodeFrame(f)
	if err != nil {
		return err
	}
	return c.write(raw)
}

// WriteBlock 写入一行下发文本
func (c *FrameCodec) WriteBlock(line string) error {
	raw, err := protocol.EncodeBlock(line)
	if err != nil {
		return err
	}
	return c.write(raw)
}

// ReadBlock 读取一个下发文本块（客户端使用）
func (c *FrameCodec) ReadBlock() (string, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()
	buf := make([]byte, protocol.BlockSize)
	if _, err := io.ReadFull(c.rw, buf); err != nil {
		return "", err
	}
	return protocol.DecodeBlock(buf), nil
}

func (c *FrameCodec) write(raw []byte) error {
	if c == nil || c.rw == nil {
		return fmt.Errorf("framecodec or writer is nil")
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := c.rw.Write(raw)
	return err
}
