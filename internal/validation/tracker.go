package validation

import (
	"context"
	"sync"
)

// Tracker discards results of asynchronous validations that were superseded by a newer
// input for the same key. Each Run gets a token from a monotonically increasing counter;
// starting a run cancels the one still in flight for that key.
type Tracker struct {
	mu      sync.Mutex
	seq     uint64
	pending map[string]*inflight
}

type inflight struct {
	token  uint64
	cancel context.CancelFunc
}

func NewTracker() *Tracker {
	return &Tracker{pending: make(map[string]*inflight)}
}

// Run executes fn for key and reports whether its verdict is still current.
func (t *Tracker) Run(ctx context.Context, key string, fn func(ctx context.Context) Verdict) (Verdict, bool) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	t.mu.Lock()
	t.seq++
	token := t.seq
	if prev, ok := t.pending[key]; ok {
		prev.cancel()
	}
	t.pending[key] = &inflight{token: token, cancel: cancel}
	t.mu.Unlock()

	verdict := fn(runCtx)

	t.mu.Lock()
	defer t.mu.Unlock()
	current, ok := t.pending[key]
	if !ok || current.token != token {
		return verdict, false
	}
	delete(t.pending, key)
	return verdict, true
}

// Latest returns the last token issued by any Run.
func (t *Tracker) Latest() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq
}

func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
