package settings

import (
	"context"
	"sync"
)

type mockRepo struct {
	mu        sync.Mutex
	rows      []Setting
	listErr   error
	upsertErr error
	listCalls int
	upserts   []Setting
	block     chan struct{}
}

func (m *mockRepo) ListActive(ctx context.Context) ([]Setting, error) {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]Setting(nil), m.rows...), nil
}

func (m *mockRepo) List(ctx context.Context, category string) ([]Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []Setting
	for _, row := range m.rows {
		if category == "" || row.Category == category {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *mockRepo) Get(ctx context.Context, category, key string) (Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Category == category && row.Key == key {
			return row, nil
		}
	}
	return Setting{}, ErrNotFound
}

func (m *mockRepo) Upsert(ctx context.Context, s Setting) (Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return Setting{}, m.upsertErr
	}
	m.upserts = append(m.upserts, s)
	for i, row := range m.rows {
		if row.Category == s.Category && row.Key == s.Key {
			m.rows[i] = s
			return s, nil
		}
	}
	m.rows = append(m.rows, s)
	return s, nil
}

func (m *mockRepo) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

func (m *mockRepo) set(category, key string, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row.Category == category && row.Key == key {
			m.rows[i].Value = NumberValue(v)
			return
		}
	}
	m.rows = append(m.rows, Setting{Category: category, Key: key, Value: NumberValue(v), IsActive: true})
}
