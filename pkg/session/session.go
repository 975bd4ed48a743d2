// Package session keeps live viewer sessions for the HTTP API.
//
// A [Session] owns a viewer.Controller running on a simulated engine (see
// sim.Driver). Its clock is a manual scheduler that [Session.Sync] advances
// by the wall-clock time between requests, so animations and delayed
// continuations complete between calls just as they would in a browser.
//
// Sessions expire after a period of inactivity. A [Store] holds them by ID;
// [MemoryStore] is the in-process implementation.
//
//	store := session.NewMemoryStore()
//	sess, err := session.New(m, viewer.DefaultConfig(), sim.Options{}, session.DefaultTTL, logger)
//	store.Set(ctx, sess)
//
//	sess, err = store.Get(ctx, id)
//	snap, err := sess.Apply(sim.Action{Type: sim.ActionNext})
package session

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/folio/pkg/errors"
	"github.com/matzehuels/folio/pkg/manifest"
	"github.com/matzehuels/folio/pkg/mode"
	"github.com/matzehuels/folio/pkg/sim"
	"github.com/matzehuels/folio/pkg/viewer"
)

// DefaultTTL is how long an idle session lives.
const DefaultTTL = 30 * time.Minute

// maxNotifications bounds a session's notification log.
const maxNotifications = 256

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New(errors.ErrCodeSessionNotFound, "session not found")

// Notification is one page or mode change published by a controller.
type Notification struct {
	Seq  int             `json:"seq"`
	At   viewer.Duration `json:"at"` // since session start
	Kind string          `json:"kind"`
	Page int             `json:"page,omitempty"`
	Mode string          `json:"mode,omitempty"`
}

// Snapshot is a session's state as returned by the API.
type Snapshot struct {
	ID            string         `json:"id"`
	ManifestID    string         `json:"manifest_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	ExpiresAt     time.Time      `json:"expires_at"`
	Status        viewer.Status  `json:"status"`
	Notifications []Notification `json:"notifications"`
}

// Session is one live viewer.
type Session struct {
	ID         string
	ManifestID string
	CreatedAt  time.Time

	mu        sync.Mutex
	ttl       time.Duration
	expiresAt time.Time
	lastSync  time.Time
	driver    *sim.Driver
	start     time.Time
	seq       int
	log       []Notification
	now       func() time.Time
	closed    bool
}

// New creates a session for m and loads it into a fresh controller.
func New(m *manifest.Manifest, cfg viewer.Config, opts sim.Options, ttl time.Duration, logger *log.Logger) (*Session, error) {
	return newWithClock(m, cfg, opts, ttl, logger, time.Now)
}

func newWithClock(m *manifest.Manifest, cfg viewer.Config, opts sim.Options, ttl time.Duration, logger *log.Logger, now func() time.Time) (*Session, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	id := uuid.NewString()
	created := now()
	driver, err := sim.NewDriver(m, cfg, opts, created, logger.With("session", id[:8]))
	if err != nil {
		return nil, err
	}
	s := &Session{
		ID:         id,
		ManifestID: m.ID,
		CreatedAt:  created,
		ttl:        ttl,
		expiresAt:  created.Add(ttl),
		lastSync:   created,
		driver:     driver,
		start:      created,
		now:        now,
	}
	driver.Controller.OnPageChange(func(p int) {
		s.record(Notification{Kind: "page", Page: p})
	})
	driver.Controller.OnModeChange(func(m mode.Mode) {
		s.record(Notification{Kind: "mode", Mode: m.String()})
	})
	// Load published page 0 before the subscription existed.
	s.record(Notification{Kind: "page", Page: driver.Controller.CurrentPage()})
	return s, nil
}

// Apply syncs the clock, performs a and returns the resulting snapshot. A
// session closed by a concurrent Delete or Cleanup returns ErrNotFound.
func (s *Session) Apply(a sim.Action) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Snapshot{}, ErrNotFound
	}
	s.syncLocked()
	if err := s.driver.Apply(a); err != nil {
		return Snapshot{}, err
	}
	return s.snapshotLocked(), nil
}

// Snapshot syncs the clock and returns the session state. A closed session
// reports its final state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.syncLocked()
	}
	return s.snapshotLocked()
}

// Expired reports whether the session has been idle past its TTL.
func (s *Session) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().After(s.expiresAt)
}

// Close destroys the session's controller. Later calls do nothing.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.driver.Close()
}

// syncLocked advances the simulated clock to wall time and extends the
// session's lifetime.
func (s *Session) syncLocked() {
	now := s.now()
	if d := now.Sub(s.lastSync); d > 0 {
		s.driver.Advance(d)
	}
	s.lastSync = now
	s.expiresAt = now.Add(s.ttl)
}

func (s *Session) snapshotLocked() Snapshot {
	notes := make([]Notification, len(s.log))
	copy(notes, s.log)
	return Snapshot{
		ID:            s.ID,
		ManifestID:    s.ManifestID,
		CreatedAt:     s.CreatedAt,
		ExpiresAt:     s.expiresAt,
		Status:        s.driver.Controller.Status(),
		Notifications: notes,
	}
}

// record runs on controller callbacks, which only fire while mu is held.
func (s *Session) record(n Notification) {
	s.seq++
	n.Seq = s.seq
	n.At = viewer.Duration(s.driver.Elapsed(s.start))
	s.log = append(s.log, n)
	if len(s.log) > maxNotifications {
		s.log = s.log[len(s.log)-maxNotifications:]
	}
}

// =============================================================================
// Stores
// =============================================================================

// Store holds sessions by ID.
type Store interface {
	// Get returns the session, or ErrNotFound when it is unknown or expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, s *Session) error

	// Delete closes and removes a session. Unknown IDs return ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Cleanup closes and removes expired sessions and returns how many it
	// removed.
	Cleanup(ctx context.Context) (int, error)
}
