package chat

import (
	"sync"
	"time"
)

// DefaultRevealInterval is the cadence of the simulated typing effect.
const DefaultRevealInterval = 15 * time.Millisecond

// Scheduler drives the time-sliced reveal of resolved answers. Only one
// reveal is active at a time: starting a new one cancels a previous one
// that is still running.
type Scheduler struct {
	mu       sync.Mutex
	interval time.Duration
	current  *Reveal
}

// NewScheduler creates a scheduler emitting one character per interval.
func NewScheduler(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultRevealInterval
	}
	return &Scheduler{interval: interval}
}

// Reveal is a handle to one running reveal.
type Reveal struct {
	stop chan struct{}
	once sync.Once
}

// Cancel stops emission immediately. Safe to call after natural
// completion, where it is a no-op.
func (r *Reveal) Cancel() {
	r.once.Do(func() { close(r.stop) })
}

func (r *Reveal) cancelled() bool {
	select {
	case <-r.stop:
		return true
	default:
		return false
	}
}

// Start begins emitting successive prefixes of fullText, one rune per
// tick. onTick receives each prefix; onDone fires exactly once after
// the final prefix (which equals fullText). An empty fullText completes
// immediately without emitting any prefix.
func (s *Scheduler) Start(fullText string, onTick func(prefix string), onDone func()) *Reveal {
	s.mu.Lock()
	if s.current != nil {
		s.current.Cancel()
	}
	r := &Reveal{stop: make(chan struct{})}
	s.current = r
	s.mu.Unlock()

	go s.run(r, fullText, onTick, onDone)
	return r
}

func (s *Scheduler) run(r *Reveal, fullText string, onTick func(string), onDone func()) {
	runes := []rune(fullText)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i := 1; i <= len(runes); i++ {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
		}
		if r.cancelled() {
			return
		}
		onTick(string(runes[:i]))
	}

	if r.cancelled() {
		return
	}
	// Completion also releases the handle, so a later Cancel is a no-op.
	r.Cancel()
	onDone()
}
