package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"cryptocheckout/internal/feed"
	"cryptocheckout/internal/logger"
	"cryptocheckout/internal/store"
)

// Manager hands out one running session per order identifier and forgets it
// once it stops, so a later visit to the same order starts a fresh session
// (the persisted deadline keeps the countdown honest across visits).
type Manager struct {
	Orders    store.OrderRepository
	Deadlines store.DeadlineStore
	Details   DetailFetcher
	FeedURL   string
	Countdown time.Duration
	Location  *time.Location

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(orders store.OrderRepository, deadlines store.DeadlineStore, details DetailFetcher, feedURL string, countdown time.Duration) *Manager {
	return &Manager{
		Orders:    orders,
		Deadlines: deadlines,
		Details:   details,
		FeedURL:   feedURL,
		Countdown: countdown,
		sessions:  make(map[string]*Session),
	}
}

// Acquire returns the running session for the identifier, starting one if
// needed.
func (m *Manager) Acquire(ctx context.Context, identifier string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[identifier]; ok {
		return s
	}

	var liveFeed Feed
	if m.FeedURL != "" {
		l, err := feed.Dial(ctx, m.FeedURL, identifier)
		if err != nil {
			// No reconnection attempts; the session runs without live
			// updates.
			logger.Log.Error("feed connect failed",
				zap.String("order", identifier),
				zap.Error(err))
		} else {
			liveFeed = l
		}
	}

	s := New(Config{
		Identifier: identifier,
		Orders:     m.Orders,
		Deadlines:  m.Deadlines,
		Details:    m.Details,
		Feed:       liveFeed,
		Countdown:  m.Countdown,
		Location:   m.Location,
	})
	// Sessions outlive the request that created them.
	s.Start(context.Background())
	m.sessions[identifier] = s

	go func() {
		<-s.Done()
		m.mu.Lock()
		delete(m.sessions, identifier)
		m.mu.Unlock()
	}()

	return s
}

// Release stops the session for an identifier if one is running.
func (m *Manager) Release(identifier string) {
	m.mu.Lock()
	s, ok := m.sessions[identifier]
	m.mu.Unlock()
	if ok {
		s.Stop()
	}
}

// Shutdown stops every running session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()
	for _, s := range sessions {
		s.Stop()
	}
}
