package chat

import (
	"container/list"
	"sync"

	"github.com/samber/lo"

	"github.com/hongjun500/chat-relay/internal/observe"
)

// Registry 按加入顺序保存参与者，名字唯一。
// 所有操作在同一把互斥锁内完成，调用方不接触锁，也不持有内部节点
type Registry struct {
	mu     sync.Mutex
	order  *list.List // of Participant
	byName map[string]*list.Element
}

func NewRegistry() *Registry {
	return &Registry{
		order:  list.New(),
		byName: make(map[string]*list.Element),
	}
}

// Add 追加到末尾；同名已存在返回 ErrNameTaken
func (r *Registry) Add(p Participant) error {
	if p.Name == "" {
		return ErrEmptyName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[p.Name]; exists {
		return ErrNameTaken
	}
	r.byName[p.Name] = r.order.PushBack(p)
	observe.AddOnline(1)
	return nil
}

// Remove 按名字移除并返回条目
func (r *Registry) Remove(name string) (Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	el, ok := r.byName[name]
	if !ok {
		return Participant{}, false
	}
	return r.unlink(el), true
}

// RemoveFunc 移除第一个满足 match 的条目
func (r *Registry) RemoveFunc(match func(Participant) bool) (Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if el := r.search(match); el != nil {
		return r.unlink(el), true
	}
	return Participant{}, false
}

// Find 按名字查找
func (r *Registry) Find(name string) (Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	el, ok := r.byName[name]
	if !ok {
		return Participant{}, false
	}
	return el.Value.(Participant), true
}

// FindFunc 返回第一个满足 match 的条目
func (r *Registry) FindFunc(match func(Participant) bool) (Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if el := r.search(match); el != nil {
		return el.Value.(Participant), true
	}
	return Participant{}, false
}

// ForEachExcept 按加入顺序对除 excluded 外的每个条目调用 visit。
// 整个遍历持锁进行，visit 不能回调 Registry，否则死锁
func (r *Registry) ForEachExcept(excluded string, visit func(Participant)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for el := r.order.Front(); el != nil; el = el.Next() {
		p := el.Value.(Participant)
		if p.Name == excluded {
			continue
		}
		visit(p)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Len()
}

// Snapshot 返回当前条目的拷贝
func (r *Registry) Snapshot() []Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Participant, 0, r.order.Len())
	for el := r.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(Participant))
	}
	return out
}

// Names 按加入顺序返回所有名字
func (r *Registry) Names() []string {
	return lo.Map(r.Snapshot(), func(p Participant, _ int) string { return p.Name })
}

func (r *Registry) search(match func(Participant) bool) *list.Element {
	for el := r.order.Front(); el != nil; el = el.Next() {
		if match(el.Value.(Participant)) {
			return el
		}
	}
	return nil
}

// unlink 调用方须持锁
func (r *Registry) unlink(el *list.Element) Participant {
	p := r.order.Remove(el).(Participant)
	delete(r.byName, p.Name)
	observe.AddOnline(-1)
	return p
}
