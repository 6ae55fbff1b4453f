package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gookit/color"

	"github.com/hongjun500/chat-relay/client"
	"github.com/hongjun500/chat-relay/internal/config"
	"github.com/hongjun500/chat-relay/internal/protocol"
)

const maxInputLine = 1 << 20

func main() {
	args, err := config.ParseClientArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	c, err := client.Dial(ctx, args.Addr(), args.Name)
	cancel()
	if err != nil {
		color.Error.Println("connect:", err)
		os.Exit(1)
	}
	defer c.Close()
	color.Info.Printf("connected to %s as %s, type /join to enter the room\n", args.Addr(), args.Name)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			line, err := c.Receive()
			if err != nil {
				color.Warn.Println("disconnected:", err)
				return
			}
			printLine(line)
		}
	}()

	if err := pump(os.Stdin, c); err != nil {
		color.Error.Println("input:", err)
	}
	_ = c.Close()
	<-done
}

type lineSender interface {
	Send(payload string) error
	MaxText() int
}

// pump 把输入的每一行作为一帧发出，直到 /leave、输入结束或发送失败
func pump(r io.Reader, c lineSender) error {
	in := bufio.NewScanner(r)
	// 缓冲远大于一帧，超长行走 too long 分支而不是让 Scan 失败
	in.Buffer(make([]byte, protocol.PayloadSize), maxInputLine)
	for in.Scan() {
		text := in.Text()
		if err := c.Send(text); err != nil {
			if errors.Is(err, protocol.ErrFieldTooLong) {
				color.Error.Printf("message too long (max %d bytes)\n", c.MaxText())
				continue
			}
			return err
		}
		if text == "/leave" {
			return nil
		}
	}
	return in.Err()
}

func printLine(line string) {
	switch {
	case strings.HasPrefix(line, "SERVER ERROR:"):
		color.Red.Println(line)
	case strings.HasPrefix(line, "SERVER:"):
		color.Cyan.Println(line)
	default:
		fmt.Println(line)
	}
}
