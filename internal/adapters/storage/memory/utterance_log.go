package memory

import (
	"context"
	"sync"

	"github.com/PabloGalante/farum-router/internal/domain"
)

const DefaultCapacity = 256

// UtteranceLog is a bounded in-memory implementation of domain.UtteranceLog.
// Once full, the oldest entry is overwritten. It is NOT persistent.
type UtteranceLog struct {
	mu      sync.RWMutex
	entries []*domain.UtteranceEntry
	next    int
	full    bool
}

// NewUtteranceLog creates a ring buffer holding up to capacity entries.
// capacity <= 0 uses DefaultCapacity.
func NewUtteranceLog(capacity int) *UtteranceLog {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &UtteranceLog{
		entries: make([]*domain.UtteranceEntry, capacity),
	}
}

func (l *UtteranceLog) Append(_ context.Context, entry *domain.UtteranceEntry) error {
	if entry == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cp := *entry
	l.entries[l.next] = &cp
	l.next = (l.next + 1) % len(l.entries)
	if l.next == 0 {
		l.full = true
	}
	return nil
}

// Recent returns up to limit entries, oldest first. limit <= 0 returns all.
func (l *UtteranceLog) Recent(_ context.Context, limit int) ([]*domain.UtteranceEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	size := l.next
	if l.full {
		size = len(l.entries)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]*domain.UtteranceEntry, 0, limit)
	// newest entry sits just before next
	for i := size - limit; i < size; i++ {
		idx := i
		if l.full {
			idx = (l.next + i) % len(l.entries)
		}
		cp := *l.entries[idx]
		out = append(out, &cp)
	}
	return out, nil
}

func (l *UtteranceLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.full {
		return len(l.entries)
	}
	return l.next
}
