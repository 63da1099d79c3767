// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SantiagoMaresca/carousel-optimizer/internal/analysis"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/logging"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/metrics"
)

var (
	// ErrNotFound indicates the session does not exist or has expired.
	ErrNotFound = errors.New("session not found")

	// ErrImageLimit indicates adding the images would exceed the
	// per-session capacity.
	ErrImageLimit = errors.New("session image limit exceeded")

	// ErrDuplicateImage indicates an image id is already registered in
	// the session.
	ErrDuplicateImage = errors.New("image already registered in session")
)

// Session is one client workspace. Fields are snapshots; mutating a
// returned Session does not affect the stored one.
type Session struct {
	ID        string                     `json:"id"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
	ExpiresAt time.Time                  `json:"expires_at"`
	Images    []analysis.ImageDescriptor `json:"-"`
}

// ImageCount returns the number of registered images.
func (s *Session) ImageCount() int {
	return len(s.Images)
}

// Config holds session store parameters.
type Config struct {
	// TTL is the sliding idle lifetime. Every successful access pushes
	// the expiry forward.
	TTL time.Duration `json:"ttl" koanf:"ttl"`

	// MaxImages caps how many images one session can hold. It matches
	// the largest batch the analysis pipeline accepts.
	MaxImages int `json:"max_images" koanf:"max_images"`

	// SweepInterval is how often the janitor removes expired sessions.
	SweepInterval time.Duration `json:"sweep_interval" koanf:"sweep_interval"`
}

// DefaultConfig returns the production session parameters.
func DefaultConfig() Config {
	return Config{
		TTL:           2 * time.Hour,
		MaxImages:     12,
		SweepInterval: 5 * time.Minute,
	}
}

// Validate checks the session parameters.
func (c Config) Validate() error {
	if c.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %v", c.TTL)
	}
	if c.MaxImages < 2 {
		return fmt.Errorf("max images must be at least 2, got %d", c.MaxImages)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %v", c.SweepInterval)
	}
	return nil
}

// Manager is a thread-safe in-memory session store.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      Config

	// now is swappable for expiry tests.
	now func() time.Time
}

// NewManager creates a session store.
func NewManager(cfg Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

// Create registers a new empty session and returns its snapshot.
func (m *Manager) Create() Session {
	now := m.now()
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(m.cfg.TTL),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	size := len(m.sessions)
	m.mu.Unlock()

	metrics.SessionsCreated.Inc()
	metrics.SessionsActive.Set(float64(size))

	logging.Debug().Str("session_id", s.ID).Msg("Session created")
	return snapshot(s)
}

// Get returns a snapshot of the session and refreshes its expiry.
// Expired sessions are removed and reported as not found.
func (m *Manager) Get(id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.live(id)
	if err != nil {
		return Session{}, err
	}
	s.ExpiresAt = m.now().Add(m.cfg.TTL)
	return snapshot(s), nil
}

// AddImages registers images in the session. The whole call is atomic:
// on any validation failure nothing is added.
func (m *Manager) AddImages(id string, images []analysis.ImageDescriptor) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.live(id)
	if err != nil {
		return Session{}, err
	}

	if len(s.Images)+len(images) > m.cfg.MaxImages {
		return Session{}, fmt.Errorf("%w: %d registered + %d new > %d",
			ErrImageLimit, len(s.Images), len(images), m.cfg.MaxImages)
	}

	seen := make(map[string]struct{}, len(s.Images)+len(images))
	for _, img := range s.Images {
		seen[img.ID] = struct{}{}
	}
	for _, img := range images {
		if img.ID == "" {
			return Session{}, analysis.ErrEmptyImageID
		}
		if _, dup := seen[img.ID]; dup {
			return Session{}, fmt.Errorf("%w: %s", ErrDuplicateImage, img.ID)
		}
		seen[img.ID] = struct{}{}
	}

	s.Images = append(s.Images, images...)
	now := m.now()
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(m.cfg.TTL)

	logging.Debug().
		Str("session_id", s.ID).
		Int("added", len(images)).
		Int("total", len(s.Images)).
		Msg("Images registered")
	return snapshot(s), nil
}

// Delete removes the session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	_, exists := m.sessions[id]
	delete(m.sessions, id)
	size := len(m.sessions)
	m.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	metrics.SessionsActive.Set(float64(size))
	logging.Debug().Str("session_id", id).Msg("Session deleted")
	return nil
}

// Count returns the number of live sessions. Expired but not yet swept
// sessions are excluded.
func (m *Manager) Count() int {
	now := m.now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, s := range m.sessions {
		if !now.After(s.ExpiresAt) {
			count++
		}
	}
	return count
}

// Sweep removes every expired session and returns how many were dropped.
func (m *Manager) Sweep() int {
	now := m.now()

	m.mu.Lock()
	removed := 0
	for id, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			delete(m.sessions, id)
			removed++
		}
	}
	size := len(m.sessions)
	m.mu.Unlock()

	if removed > 0 {
		metrics.SessionsExpired.Add(float64(removed))
		logging.Info().Int("removed", removed).Msg("Expired sessions swept")
	}
	metrics.SessionsActive.Set(float64(size))
	return removed
}

// SweepInterval returns the configured janitor cadence.
func (m *Manager) SweepInterval() time.Duration {
	return m.cfg.SweepInterval
}

// live returns the stored session when present and unexpired. Callers
// hold the write lock.
func (m *Manager) live(id string) (*Session, error) {
	s, exists := m.sessions[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if m.now().After(s.ExpiresAt) {
		delete(m.sessions, id)
		metrics.SessionsExpired.Inc()
		metrics.SessionsActive.Set(float64(len(m.sessions)))
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

func snapshot(s *Session) Session {
	out := *s
	out.Images = make([]analysis.ImageDescriptor, len(s.Images))
	copy(out.Images, s.Images)
	return out
}
