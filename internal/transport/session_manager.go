package transport

import (
	"sync"
	"sync/atomic"
)

// SessionManager 会话管理器，记录当前打开的连接
type SessionManager struct {
	sync.Map // key: id string, value: *Session
	count    int64
}

// NewSessionManager 创建会话管理器
func NewSessionManager() *SessionManager {
	return &SessionManager{}
}

// Add 注册会话
func (sm *SessionManager) Add(s *Session) {
	if s == nil {
		return
	}
	if _, loaded := sm.LoadOrStore(s.ID(), s); !loaded {
		atomic.AddInt64(&sm.count, 1)
	}
}

// Remove 移除会话
func (sm *SessionManager) Remove(id string) {
	if _, loaded := sm.LoadAndDelete(id); loaded {
		atomic.AddInt64(&sm.count, -1)
	}
}

// Count 获取当前会话数量
func (sm *SessionManager) Count() int64 {
	return atomic.LoadInt64(&sm.count)
}

// Get 获取会话
func (sm *SessionManager) Get(id string) (*Session, bool) {
	v, exists := sm.Load(id)
	if !exists {
		return nil, false
	}
	s, ok := v.(*Session)
	return s, ok
}

// CloseAll 关闭所有会话，用于进程退出
func (sm *SessionManager) CloseAll() {
	sm.Range(func(_, v any) bool {
		if s, ok := v.(*Session); ok {
			_ = s.Close()
		}
		return true
	})
}
