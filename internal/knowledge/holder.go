package knowledge

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"legallens-backend/internal/shared/metrics"
)

type snapshot struct {
	base     *Base
	loadedAt time.Time
}

// Holder owns the process-wide current Base. Readers never observe a partially
// built Base: a reload constructs a new value and swaps the pointer.
type Holder struct {
	source   Source
	current  atomic.Pointer[snapshot]
	reloadMu sync.Mutex
	now      func() time.Time
}

// NewHolder returns a Holder that starts with an empty Base.
func NewHolder(source Source) *Holder {
	h := &Holder{source: source, now: time.Now}
	h.current.Store(&snapshot{base: Empty()})
	return h
}

// Current returns the active Base. It is never nil.
func (h *Holder) Current() *Base {
	return h.current.Load().base
}

// LoadedAt returns when the active Base was installed; zero before the first load.
func (h *Holder) LoadedAt() time.Time {
	return h.current.Load().loadedAt
}

// SourceName describes where reloads read from.
func (h *Holder) SourceName() string {
	if h.source == nil {
		return "none"
	}
	return h.source.Name()
}

// Swap installs b wholesale.
func (h *Holder) Swap(b *Base) {
	if b == nil {
		b = Empty()
	}
	h.current.Store(&snapshot{base: b, loadedAt: h.now().UTC()})
	metrics.SetKnowledgeExplanations(b.Len())
}

// Reload loads a fresh Base from the source and installs it. On failure the
// previous Base stays active.
func (h *Holder) Reload(ctx context.Context) (*Base, error) {
	if h.source == nil {
		return nil, errors.New("knowledge source not configured")
	}
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()

	b, err := h.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	h.Swap(b)
	return b, nil
}
