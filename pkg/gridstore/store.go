// Package gridstore keeps the component grid a session is currently showing so
// follow-up prompts can refer to, replace, or extend it.
package gridstore

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/goliatone/go-genui/pkg/model"
)

var (
	// ErrNotFound is returned by Load when a session has no stored grid.
	ErrNotFound = errors.New("gridstore: session not found")
	// ErrSessionRequired is returned when saving without a session id.
	ErrSessionRequired = errors.New("gridstore: session id is required")
)

// Store persists the grid per session id.
type Store interface {
	Load(ctx context.Context, session string) ([]model.Node, error)
	Save(ctx context.Context, session string, nodes []model.Node) error
	Delete(ctx context.Context, session string) error
	Close() error
}

// Merge applies a model response to the current grid: a node whose id
// matches an existing node replaces it in place, anything else is appended.
// Neither input is modified.
func Merge(current, incoming []model.Node) []model.Node {
	out := model.CloneAll(current)
	index := make(map[string]int, len(out))
	for idx, node := range out {
		if id := strings.TrimSpace(node.ID); id != "" {
			index[id] = idx
		}
	}
	for _, node := range incoming {
		node = node.Clone()
		id := strings.TrimSpace(node.ID)
		if pos, ok := index[id]; ok && id != "" {
			out[pos] = node
			continue
		}
		if id != "" {
			index[id] = len(out)
		}
		out = append(out, node)
	}
	return out
}

// Memory is an in-process Store.
type Memory struct {
	mu    sync.RWMutex
	grids map[string][]model.Node
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{grids: map[string][]model.Node{}}
}

func (m *Memory) Load(ctx context.Context, session string) ([]model.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	nodes, ok := m.grids[session]
	if !ok {
		return nil, ErrNotFound
	}
	return model.CloneAll(nodes), nil
}

func (m *Memory) Save(ctx context.Context, session string, nodes []model.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(session) == "" {
		return ErrSessionRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grids[session] = model.CloneAll(nodes)
	return nil
}

func (m *Memory) Delete(ctx context.Context, session string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.grids, session)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
