package session

import (
	"context"
	"sync"
	"time"

	"book_catalog_tgbot/internal/model"
)

type memoryEntry struct {
	session   model.Session
	expiresAt time.Time
}

// MemorySession keeps sessions in process memory. Entries expire after the configured
// expiration the same way Redis keys do.
type MemorySession struct {
	mu         sync.Mutex
	entries    map[int64]memoryEntry
	expiration time.Duration
	now        func() time.Time
}

func NewMemorySession(expiration time.Duration) *MemorySession {
	return &MemorySession{
		entries:    make(map[int64]memoryEntry),
		expiration: expiration,
		now:        time.Now,
	}
}

func (m *MemorySession) SetSession(_ context.Context, chatID int64, session model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{session: session}
	if m.expiration > 0 {
		entry.expiresAt = m.now().Add(m.expiration)
	}
	m.entries[chatID] = entry
	return nil
}

func (m *MemorySession) GetSession(_ context.Context, chatID int64) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[chatID]
	if !ok {
		return model.Session{}, ErrNotFound
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.entries, chatID)
		return model.Session{}, ErrNotFound
	}
	return entry.session, nil
}

func (m *MemorySession) DeleteSession(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, chatID)
	return nil
}
