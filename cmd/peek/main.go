package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/hongjun500/chat-relay/client"
)

func main() {
	var (
		addr    = flag.String("addr", "localhost:8080", "server address")
		timeout = flag.Duration("timeout", 3*time.Second, "dial and reply timeout")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// 探测连接不 join，名字只用于填充 sender 字段
	c, err := client.Dial(ctx, *addr, "peek-"+uuid.NewString()[:8])
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial error: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	start := time.Now()
	if err := c.Ping(); err != nil {
		fmt.Fprintf(os.Stderr, "send error: %v\n", err)
		os.Exit(1)
	}
	_ = c.SetReadDeadline(time.Now().Add(*timeout))
	line, err := c.Receive()
	if err != nil {
		fmt.Fprintf(os.Stderr, "read error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s (%s)\n", line, time.Since(start).Round(time.Microsecond))
}
