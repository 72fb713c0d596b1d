package queue

import (
	"context"
	"log"
	"sync"
	"time"
)

// pendingEvent is an event whose publish failed and is waiting for
// its next attempt.
type pendingEvent struct {
	Topic    string
	Event    Event
	RetryAt  time.Time
	Attempts int
}

// Spooler wraps a Publisher so that publish failures never surface
// to the caller.  A failed event is parked in an in-process queue
// and retried out-of-band with exponential backoff until it goes
// through or the attempt budget is exhausted.
type Spooler struct {
	pub         Publisher
	maxAttempts int

	mu    sync.Mutex
	items []*pendingEvent
}

// NewSpooler returns a Spooler retrying each failed event up to ten
// times.  Call Run on its own goroutine to drain the retry queue.
func NewSpooler(pub Publisher) *Spooler {
	return &Spooler{pub: pub, maxAttempts: 10}
}

// Publish attempts to publish immediately and spools the event on
// failure.  It always returns nil: the primary mutation has already
// committed and must not be rolled back by a messaging failure.
func (s *Spooler) Publish(ctx context.Context, topic string, ev Event) error {
	if err := s.pub.Publish(ctx, topic, ev); err != nil {
		log.Printf("spooler: publish to %s failed, scheduling retry: %v", topic, err)
		s.enqueue(&pendingEvent{Topic: topic, Event: ev, RetryAt: time.Now().Add(time.Second), Attempts: 1})
	}
	return nil
}

func (s *Spooler) enqueue(p *pendingEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, p)
}

// dequeueDue pops the first event whose retry time has passed.
func (s *Spooler) dequeueDue(now time.Time) *pendingEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.items {
		if !p.RetryAt.After(now) {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return p
		}
	}
	return nil
}

// Pending reports the number of spooled events.
func (s *Spooler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Run drains the retry queue until the context is cancelled.
func (s *Spooler) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.drain(ctx, now)
		}
	}
}

// drain retries every due event once.  Events that fail again are
// re-enqueued after the pass so a dead broker costs one attempt per
// event per drain, not the whole attempt budget.
func (s *Spooler) drain(ctx context.Context, now time.Time) {
	var failed []*pendingEvent
	for {
		p := s.dequeueDue(now)
		if p == nil {
			break
		}
		if err := s.pub.Publish(ctx, p.Topic, p.Event); err == nil {
			continue
		}
		p.Attempts++
		if p.Attempts > s.maxAttempts {
			log.Printf("spooler: dropping event for %s after %d attempts", p.Topic, p.Attempts-1)
			continue
		}
		backoff := time.Second << uint(p.Attempts-1)
		if backoff > 30*time.Second {
			backoff = 30 * time.Second
		}
		p.RetryAt = now.Add(backoff)
		failed = append(failed, p)
	}
	for _, p := range failed {
		s.enqueue(p)
	}
}
