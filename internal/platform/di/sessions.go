// internal/platform/di/sessions.go
package di

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	handler "storefront/internal/adapters/in/http/handler"
	"storefront/internal/adapters/out/localstorage"
	"storefront/internal/infra/metrics"
)

// localStorageRetention matches the Firestore document TTL.
const localStorageRetention = 30 * 24 * time.Hour

var ErrSessionsClosed = errors.New("di.sessions: closed")

// Purger drops device storage not written since cutoff.
type Purger interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type sessionEntry struct {
	session  *DeviceSession
	lastSeen time.Time
}

// Sessions holds one DeviceSession per device id and evicts sessions idle
// for longer than ttl. Eviction only drops the in-memory cart; guest carts
// and tokens stay in local storage and are picked up on the next request.
type Sessions struct {
	storageFor func(deviceID string) localstorage.Storage
	deps       SessionDeps
	metrics    *metrics.Metrics
	purger     Purger
	ttl        time.Duration
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*sessionEntry
	closed  bool

	stop chan struct{}
	done chan struct{}
}

func NewSessions(storageFor func(string) localstorage.Storage, deps SessionDeps, ttl time.Duration, purger Purger) *Sessions {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Sessions{
		storageFor: storageFor,
		deps:       deps,
		metrics:    deps.Metrics,
		purger:     purger,
		ttl:        ttl,
		now:        time.Now,
		entries:    make(map[string]*sessionEntry),
	}
}

// Resolve implements handler.SessionResolver.
func (s *Sessions) Resolve(ctx context.Context, deviceID string) (*handler.Session, error) {
	ds, err := s.Get(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return ds.HTTP(), nil
}

// Get returns the device session, creating and starting it on first use.
func (s *Sessions) Get(ctx context.Context, deviceID string) (*DeviceSession, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, errors.New("di.sessions: device id is empty")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionsClosed
	}
	if e, ok := s.entries[deviceID]; ok {
		e.lastSeen = s.now()
		s.mu.Unlock()
		return e.session, nil
	}
	ds := NewDeviceSession(deviceID, s.storageFor(deviceID), s.deps)
	s.entries[deviceID] = &sessionEntry{session: ds, lastSeen: s.now()}
	n := len(s.entries)
	s.mu.Unlock()

	s.metrics.SetActiveSessions(n)

	// first load outside the lock; a failure still leaves a usable (empty) cart
	if err := ds.Cart.Start(ctx); err != nil {
		log.Printf("[di.sessions] WARN: start device=%s: %v", deviceID, err)
	}
	return ds, nil
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep evicts idle sessions and returns how many were dropped.
func (s *Sessions) Sweep(ctx context.Context) int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	evicted := 0
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, id)
			evicted++
		}
	}
	n := len(s.entries)
	s.mu.Unlock()

	s.metrics.SetActiveSessions(n)
	if evicted > 0 {
		log.Printf("[di.sessions] evicted %d idle sessions (%d active)", evicted, n)
	}

	if s.purger != nil {
		purged, err := s.purger.PurgeOlderThan(ctx, s.now().Add(-localStorageRetention))
		if err != nil {
			log.Printf("[di.sessions] WARN: purge local storage: %v", err)
		} else if purged > 0 {
			log.Printf("[di.sessions] purged %d stale local storage rows", purged)
		}
	}
	return evicted
}

// Run sweeps every interval until Close is called.
func (s *Sessions) Run(interval time.Duration) {
	if interval <= 0 {
		interval = s.ttl / 2
	}

	s.mu.Lock()
	if s.stop != nil || s.closed {
		s.mu.Unlock()
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				s.Sweep(context.Background())
			}
		}
	}()
}

// Close stops the janitor and drops all sessions.
func (s *Sessions) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	stop, done := s.stop, s.done
	s.entries = make(map[string]*sessionEntry)
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	s.metrics.SetActiveSessions(0)
	return nil
}
