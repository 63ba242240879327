package testkit

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ceyewan/dsorch/orchestration"
	"github.com/ceyewan/dsorch/xerrors"
)

// MemoryStore 内存中的协调中心存储，按编排实例名称隔离
//
// 多次 Open 得到的 Center 共享同一个 MemoryStore，用于模拟多个应用实例。
type MemoryStore struct {
	mu        sync.Mutex
	snapshots map[string]json.RawMessage
	instances map[string]map[string]struct{}
	opened    int
	closed    int
}

// NewMemoryStore 创建空存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string]json.RawMessage),
		instances: make(map[string]map[string]struct{}),
	}
}

// Opener 返回打开内存 Center 的 orchestration.Opener
func (s *MemoryStore) Opener() orchestration.Opener {
	return func(_ context.Context, cfg *orchestration.Config) (orchestration.Center, error) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.opened++
		s.mu.Unlock()
		return &memoryCenter{store: s, name: cfg.Name}, nil
	}
}

// FailingOpener 返回总是失败的 Opener
func FailingOpener(err error) orchestration.Opener {
	return func(context.Context, *orchestration.Config) (orchestration.Center, error) {
		return nil, err
	}
}

// Snapshot 返回 name 下保存的快照
func (s *MemoryStore) Snapshot(name string) (*orchestration.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.snapshots[name]
	if !ok {
		return nil, false
	}
	var snap orchestration.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, false
	}
	return &snap, true
}

// Instances 返回 name 下当前登记的实例数
func (s *MemoryStore) Instances(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.instances[name])
}

// Open 返回 Center 被打开与关闭的次数
func (s *MemoryStore) Open() (opened, closed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened, s.closed
}

type memoryCenter struct {
	store      *MemoryStore
	name       string
	instanceID string
	closed     bool
}

// Persist 整体写入快照，overwrite 为 false 时已有快照保持不变
func (c *memoryCenter) Persist(_ context.Context, snap orchestration.Snapshot, overwrite bool) error {
	raw, err := json.Marshal(snap.Masked())
	if err != nil {
		return err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if c.closed {
		return orchestration.ErrClosed
	}
	if _, ok := c.store.snapshots[c.name]; ok && !overwrite {
		return nil
	}
	c.store.snapshots[c.name] = raw
	return nil
}

func (c *memoryCenter) Load(_ context.Context) (*orchestration.Snapshot, error) {
	c.store.mu.Lock()
	if c.closed {
		c.store.mu.Unlock()
		return nil, orchestration.ErrClosed
	}
	raw, ok := c.store.snapshots[c.name]
	c.store.mu.Unlock()
	if !ok {
		return nil, orchestration.ErrNotFound
	}
	var snap orchestration.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *memoryCenter) RegisterInstance(_ context.Context) (string, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if c.closed {
		return "", orchestration.ErrClosed
	}
	if c.instanceID != "" {
		return "", xerrors.Wrap(xerrors.ErrAlreadyExists, "instance already registered")
	}
	c.instanceID = NewID()
	if c.store.instances[c.name] == nil {
		c.store.instances[c.name] = make(map[string]struct{})
	}
	c.store.instances[c.name][c.instanceID] = struct{}{}
	return c.instanceID, nil
}

// Close 注销实例，模拟租约撤销
func (c *memoryCenter) Close() error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.store.closed++
	if c.instanceID != "" {
		delete(c.store.instances[c.name], c.instanceID)
	}
	return nil
}
