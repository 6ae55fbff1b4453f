package config

import (
	"strings"
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestFromEnvSet_Defaults(t *testing.T) {
	cfg, err := FromEnvSet(env.EnvSet{})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.TCPAddr)
	require.Equal(t, 256, cfg.OutBuffer)
	require.Equal(t, 8, cfg.RateBurst)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "chat-relay", cfg.RedisStream)
	require.NotEmpty(t, cfg.NodeID)
	require.False(t, cfg.BridgeEnabled())
}

func TestFromEnvSet_Overrides(t *testing.T) {
	cfg, err := FromEnvSet(env.EnvSet{
		"CHAT_TCP_ADDR":      "127.0.0.1:9000",
		"CHAT_OUTBUF":        "32",
		"CHAT_WRITE_TIMEOUT": "3s",
		"CHAT_RATE_LIMIT":    "2.5",
		"CHAT_LOG_LEVEL":     "debug",
		"CHAT_REDIS_ADDR":    "localhost:6379",
		"CHAT_NODE_ID":       "node-a",
	})
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", cfg.TCPAddr)
	require.Equal(t, 32, cfg.OutBuffer)
	require.Equal(t, 3*time.Second, cfg.WriteTimeout)
	require.InDelta(t, 2.5, cfg.RateLimit, 1e-9)
	require.Equal(t, "node-a", cfg.NodeID)
	require.True(t, cfg.BridgeEnabled())
}

func TestFromEnvSet_Invalid(t *testing.T) {
	for name, es := range map[string]env.EnvSet{
		"outbuf":  {"CHAT_OUTBUF": "0"},
		"level":   {"CHAT_LOG_LEVEL": "loud"},
		"burst":   {"CHAT_RATE_BURST": "0"},
		"timeout": {"CHAT_WRITE_TIMEOUT": "-1s"},
		"number":  {"CHAT_OUTBUF": "many"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnvSet(es)
			require.Error(t, err)
		})
	}
}

func TestParseClientArgs(t *testing.T) {
	c, err := ParseClientArgs([]string{"alice", "localhost", "8080"})
	require.NoError(t, err)
	require.Equal(t, "localhost:8080", c.Addr())

	_, err = ParseClientArgs([]string{"alice"})
	require.ErrorIs(t, err, ErrUsage)

	_, err = ParseClientArgs([]string{"alice", "localhost", "http"})
	require.Error(t, err)
}

func TestValidateName(t *testing.T) {
	require.NoError(t, ValidateName("alice"))
	require.NoError(t, ValidateName(strings.Repeat("a", 99)))
	require.Error(t, ValidateName(""))
	require.Error(t, ValidateName(strings.Repeat("a", 100)))
	require.Error(t, ValidateName("ali\x00ce"))
	require.Error(t, ValidateName("名字"))
}
