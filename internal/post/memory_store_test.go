package post

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// memoryStore est un Store en mémoire qui compte les appels.
type memoryStore struct {
	mu        sync.Mutex
	posts     map[string]Post
	calls     int
	insertErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{posts: map[string]Post{}}
}

func (m *memoryStore) match(p Post, f Filter) bool {
	return (f.ID == "" || p.ID == f.ID) && (f.Owner == "" || p.UserID == f.Owner)
}

func (m *memoryStore) Find(_ context.Context, f Filter) ([]Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	out := []Post{}
	for _, p := range m.posts {
		if m.match(p, f) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryStore) InsertOne(_ context.Context, p *Post) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.insertErr != nil {
		return "", m.insertErr
	}
	if _, exists := m.posts[p.ID]; exists {
		return "", errors.New("duplicate key")
	}
	m.posts[p.ID] = *p
	return p.ID, nil
}

func (m *memoryStore) UpdateOne(_ context.Context, f Filter, patch Patch) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if f.IsZero() {
		return 0, ErrEmptyFilter
	}
	for id, p := range m.posts {
		if m.match(p, f) {
			if patch.Content != nil {
				p.Content = *patch.Content
			}
			m.posts[id] = p
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memoryStore) DeleteOne(_ context.Context, f Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if f.IsZero() {
		return 0, ErrEmptyFilter
	}
	for id, p := range m.posts {
		if m.match(p, f) {
			delete(m.posts, id)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memoryStore) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *memoryStore) get(id string) (Post, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	return p, ok
}
