package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

var validate = validator.New()

var ErrUsage = errors.New("usage: client NAME HOST PORT")

// Server 服务端配置，全部来自环境变量（可由 .env 提供）
type Server struct {
	TCPAddr      string        `env:"CHAT_TCP_ADDR,default=:8080" validate:"required"`
	WSAddr       string        `env:"CHAT_WS_ADDR"`
	HTTPAddr     string        `env:"CHAT_HTTP_ADDR"`
	OutBuffer    int           `env:"CHAT_OUTBUF,default=256" validate:"gt=0"`
	WriteTimeout time.Duration `env:"CHAT_WRITE_TIMEOUT,default=0s"`
	RateLimit    float64       `env:"CHAT_RATE_LIMIT,default=0" validate:"gte=0"`
	RateBurst    int           `env:"CHAT_RATE_BURST,default=8" validate:"gte=1"`
	LogLevel     string        `env:"CHAT_LOG_LEVEL,default=info" validate:"oneof=debug info warn error"`
	RedisAddr    string        `env:"CHAT_REDIS_ADDR"`
	RedisDB      int           `env:"CHAT_REDIS_DB,default=0" validate:"gte=0"`
	RedisStream  string        `env:"CHAT_REDIS_STREAM,default=chat-relay" validate:"required"`
	NodeID       string        `env:"CHAT_NODE_ID"`
}

// Load 读取 .env（若存在）和进程环境
func Load() (*Server, error) {
	_ = godotenv.Load()
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return nil, err
	}
	return FromEnvSet(es)
}

func FromEnvSet(es env.EnvSet) (*Server, error) {
	var cfg Server
	if err := env.Unmarshal(es, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.WriteTimeout < 0 {
		return nil, fmt.Errorf("config: CHAT_WRITE_TIMEOUT must not be negative")
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.NodeID == "" {
		cfg.NodeID = uuid.NewString()
	}
	return &cfg, nil
}

// BridgeEnabled 是否配置了 Redis 跨节点总线
func (s *Server) BridgeEnabled() bool { return s.RedisAddr != "" }

// Client 终端客户端参数
type Client struct {
	Name string `validate:"required,printascii,max=99"`
	Host string `validate:"required"`
	Port string `validate:"required,numeric"`
}

func (c *Client) Addr() string { return net.JoinHostPort(c.Host, c.Port) }

// ParseClientArgs 解析 NAME HOST PORT 三个位置参数
func ParseClientArgs(args []string) (*Client, error) {
	if len(args) != 3 {
		return nil, ErrUsage
	}
	c := &Client{Name: args[0], Host: args[1], Port: args[2]}
	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("client args: %w", err)
	}
	return c, nil
}

// ValidateName 昵称必须是可打印 ASCII，且能放进帧的 sender 字段
func ValidateName(name string) error {
	return validate.Var(name, "required,printascii,max=99")
}
