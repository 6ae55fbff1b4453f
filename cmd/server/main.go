package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/hongjun500/chat-relay/internal/bus/redisstream"
	"github.com/hongjun500/chat-relay/internal/chat"
	"github.com/hongjun500/chat-relay/internal/command"
	"github.com/hongjun500/chat-relay/internal/config"
	"github.com/hongjun500/chat-relay/internal/observe"
	"github.com/hongjun500/chat-relay/internal/transport"
	"github.com/hongjun500/chat-relay/pkg/logger"
)

type listener struct {
	srv  transport.Transport
	addr string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "chat-relay:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.LogLevel)
	defer logger.Sync()
	log := logger.Named("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	members := chat.NewRegistry()
	fanout := chat.NewBroadcaster(members)
	proc, err := command.NewProcessor(members, fanout)
	if err != nil {
		return err
	}
	gateway := transport.NewRelayGateway(members, proc)
	defer gateway.Sessions().CloseAll()

	opt := transport.Options{
		OutBuffer:    cfg.OutBuffer,
		WriteTimeout: cfg.WriteTimeout,
		RateLimit:    cfg.RateLimit,
		RateBurst:    cfg.RateBurst,
	}

	// 镜像必须在任何会话开始广播之前挂上
	var bridge *redisstream.Bridge
	if cfg.BridgeEnabled() {
		bus := redisstream.New(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.NodeID)
		defer bus.Close()
		if err := bus.Ping(ctx); err != nil {
			return fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		bridge = redisstream.NewBridge(bus, fanout, cfg.OutBuffer)
		fanout.WithMirror(bridge)
		log.Infow("bridge_enabled", "redis", cfg.RedisAddr, "stream", cfg.RedisStream, "node", cfg.NodeID)
	}

	g, ctx := errgroup.WithContext(ctx)
	if bridge != nil {
		g.Go(func() error { return bridge.Run(ctx) })
	}

	listeners := []listener{{&transport.TCPServer{}, cfg.TCPAddr}}
	if cfg.WSAddr != "" {
		listeners = append(listeners, listener{&transport.WebSocketServer{Path: "/ws"}, cfg.WSAddr})
	}
	for _, l := range listeners {
		g.Go(func() error {
			if err := l.srv.Start(ctx, l.addr, gateway, opt); err != nil {
				return fmt.Errorf("%s transport: %w", l.srv.Name(), err)
			}
			return nil
		})
	}

	if cfg.HTTPAddr != "" {
		g.Go(func() error {
			log.Infow("http_listen", "addr", cfg.HTTPAddr)
			return observe.StartHTTP(ctx, cfg.HTTPAddr)
		})
	}

	log.Infow("server_start", "tcp", cfg.TCPAddr, "ws", cfg.WSAddr, "http", cfg.HTTPAddr, "commands", proc.Commands().Names())
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	log.Infow("server_stop", "online", members.Len(), "err", err)
	return err
}
