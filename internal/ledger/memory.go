package ledger

import "context"

// MemoryStore keeps the ledger in process memory. It backs tests and the
// dry-run CLI mode; nothing survives the process.
type MemoryStore struct {
	initialized bool
	rows        []Row
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Init(context.Context) error {
	m.initialized = true
	return nil
}

func (m *MemoryStore) FileNames(context.Context) ([]string, error) {
	names := make([]string, 0, len(m.rows))
	for _, r := range m.rows {
		names = append(names, r.FileName)
	}
	return names, nil
}

func (m *MemoryStore) Append(_ context.Context, row Row) error {
	m.rows = append(m.rows, row)
	return nil
}

func (m *MemoryStore) Rows(context.Context) ([]Row, error) {
	out := make([]Row, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *MemoryStore) Summary(context.Context) (Summary, error) {
	return Summarize(m.rows), nil
}

func (m *MemoryStore) Reset(context.Context) error {
	m.rows = nil
	return nil
}

func (m *MemoryStore) Close() error { return nil }
