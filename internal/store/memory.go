package store

import (
	"context"
	"sync"
	"time"

	"cryptocheckout/internal/models"
)

// MemoryOrders is an in-process OrderRepository. It backs tests and runs
// without a database when db.dsn is left empty.
type MemoryOrders struct {
	mu      sync.RWMutex
	records map[string]models.OrderRecord
}

func NewMemoryOrders() *MemoryOrders {
	return &MemoryOrders{records: make(map[string]models.OrderRecord)}
}

func (m *MemoryOrders) Save(ctx context.Context, record models.OrderRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.Identifier] = record
	return nil
}

func (m *MemoryOrders) Load(ctx context.Context, identifier string) (models.OrderRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[identifier]
	return record, ok, nil
}

// MemoryDeadlines is the in-process DeadlineStore counterpart.
type MemoryDeadlines struct {
	mu        sync.RWMutex
	deadlines map[string]time.Time
}

func NewMemoryDeadlines() *MemoryDeadlines {
	return &MemoryDeadlines{deadlines: make(map[string]time.Time)}
}

func (m *MemoryDeadlines) Get(ctx context.Context, identifier string) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	deadline, ok := m.deadlines[identifier]
	return deadline, ok, nil
}

func (m *MemoryDeadlines) Put(ctx context.Context, identifier string, deadline time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deadlines[identifier] = deadline
	return nil
}
