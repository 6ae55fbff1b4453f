package command

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/hongjun500/chat-relay/internal/chat"
	"github.com/hongjun500/chat-relay/internal/observe"
	"github.com/hongjun500/chat-relay/internal/protocol"
)

// Context 单条命令的执行上下文，所有状态通过参数传递，不使用全局变量
type Context struct {
	Members *chat.Registry
	Fanout  *chat.Broadcaster
	Client  *chat.Client
	Frame   protocol.Frame
	Args    []string
}

type HandlerFunc func(ctx *Context) error

type Command struct {
	Name    string // 不含 "/"
	Help    string
	Handler HandlerFunc
}

// Registry 命令表，按注册顺序匹配
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Command
	list   []*Command
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Command),
		list:   make([]*Command, 0),
	}
}

func (r *Registry) Register(cmd *Command) (err error) {
	if cmd == nil {
		return errors.New("command is nil")
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return errors.New("command name is empty")
	}
	if strings.ContainsAny(name, "/ \t") {
		return fmt.Errorf("command name must not contain '/' or spaces:%s", name)
	}
	if cmd.Handler == nil {
		return fmt.Errorf("command %s has no handler", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("command %s already registered", name)
	}
	r.byName[name] = cmd
	r.list = append(r.list, cmd)
	return nil
}

// Get 按名字精确查找，大小写敏感
func (r *Registry) Get(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.byName[strings.TrimPrefix(name, "/")]
	return cmd, ok
}

func (r *Registry) List() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Command, len(r.list))
	copy(out, r.list)
	return out
}

// Names 形如 "/ping" 的关键字列表
func (r *Registry) Names() []string {
	return lo.Map(r.List(), func(c *Command, _ int) string { return "/" + c.Name })
}

// Match 找到 payload 对应的命令：完整关键字，后接结尾或空白
func (r *Registry) Match(payload string) (*Command, bool) {
	word := payload
	if i := strings.IndexAny(payload, " \t\r\n"); i >= 0 {
		word = payload[:i]
	}
	if !strings.HasPrefix(word, "/") {
		return nil, false
	}
	cmd, ok := r.Get(word)
	if !ok || !protocol.MatchKeyword(payload, "/"+cmd.Name) {
		return nil, false
	}
	return cmd, true
}

// Execute 执行命令；payload 不是命令时 handled 为 false，由调用方按聊天处理
func (r *Registry) Execute(ctx *Context) (handled bool, err error) {
	cmd, ok := r.Match(ctx.Frame.Payload)
	if !ok {
		return false, nil
	}
	ctx.Args = strings.Fields(ctx.Frame.Payload)[1:]
	observe.IncCommand(cmd.Name)
	if err := cmd.Handler(ctx); err != nil {
		observe.IncCommandError("handler")
		return true, fmt.Errorf("command %s: %w", cmd.Name, err)
	}
	return true, nil
}
