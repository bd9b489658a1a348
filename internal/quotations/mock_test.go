package quotations

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/packquote/packquote/internal/pricing"
)

type mockRepo struct {
	mu         sync.Mutex
	rows       map[uuid.UUID]Quotation
	counters   map[int]int
	createErr  error
	candidates []uuid.UUID
	updates    int
	replaced   int
	lastFilter ListFilter
}

func newMockRepo() *mockRepo {
	return &mockRepo{rows: map[uuid.UUID]Quotation{}, counters: map[int]int{}}
}

func (m *mockRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *mockRepo) NextNumber(ctx context.Context, year int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[year]++
	return m.counters[year], nil
}

func (m *mockRepo) Create(ctx context.Context, q Quotation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.rows[q.ID] = clone(q)
	return nil
}

func (m *mockRepo) Get(ctx context.Context, id uuid.UUID) (Quotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.rows[id]
	if !ok {
		return Quotation{}, ErrNotFound
	}
	return clone(q), nil
}

func (m *mockRepo) List(ctx context.Context, f ListFilter) ([]Quotation, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = f
	var out []Quotation
	for _, q := range m.rows {
		if f.UserID != "" && q.UserID != f.UserID {
			continue
		}
		if f.Status != "" && q.Status != f.Status {
			continue
		}
		q.Items = nil
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuotationNumber < out[j].QuotationNumber })
	return out, len(out), nil
}

func (m *mockRepo) Update(ctx context.Context, q Quotation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.rows[q.ID]
	if !ok {
		return ErrNotFound
	}
	items := existing.Items
	q = clone(q)
	q.Items = items
	m.rows[q.ID] = q
	m.updates++
	return nil
}

func (m *mockRepo) ReplaceItems(ctx context.Context, quotationID uuid.UUID, items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.rows[quotationID]
	if !ok {
		return ErrNotFound
	}
	q.Items = append([]Item(nil), items...)
	m.rows[quotationID] = q
	m.replaced++
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *mockRepo) ListReroundCandidates(ctx context.Context, limit int) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.candidates
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (m *mockRepo) put(q Quotation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[q.ID] = clone(q)
}

func clone(q Quotation) Quotation {
	q.Items = append([]Item(nil), q.Items...)
	return q
}

type staticRates struct {
	rates pricing.Rates
	err   error
}

func (s staticRates) Rates(ctx context.Context) (pricing.Rates, error) {
	return s.rates, s.err
}

type countingRecorder struct {
	mu         sync.Mutex
	written    map[string]int
	breakdowns int
}

func (c *countingRecorder) QuotationWritten(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.written == nil {
		c.written = map[string]int{}
	}
	c.written[op]++
}

func (c *countingRecorder) CostBreakdownComputed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.breakdowns++
}
