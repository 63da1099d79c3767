// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SantiagoMaresca/carousel-optimizer/internal/analysis"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/quality"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(DefaultConfig())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func descriptors(ids ...string) []analysis.ImageDescriptor {
	images := make([]analysis.ImageDescriptor, len(ids))
	for i, id := range ids {
		images[i] = analysis.ImageDescriptor{
			ID: id,
			Signals: quality.RawSignals{
				BlurScore: 400, Brightness: 120, Contrast: 45,
				Width: 1280, Height: 720, FileSize: 250_000, Format: "jpeg",
			},
			Embedding: []float64{1, 0, 0},
		}
	}
	return images
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero ttl", func(c *Config) { c.TTL = 0 }, true},
		{"max images below two", func(c *Config) { c.MaxImages = 1 }, true},
		{"zero sweep interval", func(c *Config) { c.SweepInterval = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateAndGet(t *testing.T) {
	m := newTestManager(t)

	created := m.Create()
	if created.ID == "" {
		t.Fatal("Create() returned empty id")
	}
	if created.ImageCount() != 0 {
		t.Errorf("new session holds %d images, want 0", created.ImageCount())
	}

	got, err := m.Get(created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("Get() id = %s, want %s", got.ID, created.ID)
	}
}

func TestGetUnknownSession(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestAddImages(t *testing.T) {
	m := newTestManager(t)
	s := m.Create()

	updated, err := m.AddImages(s.ID, descriptors("a", "b", "c"))
	if err != nil {
		t.Fatalf("AddImages() error = %v", err)
	}
	if updated.ImageCount() != 3 {
		t.Errorf("ImageCount() = %d, want 3", updated.ImageCount())
	}

	// Snapshots are isolated from the store.
	updated.Images[0].ID = "mutated"
	fresh, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if fresh.Images[0].ID != "a" {
		t.Error("mutating a snapshot leaked into the store")
	}
}

func TestAddImagesDuplicate(t *testing.T) {
	m := newTestManager(t)
	s := m.Create()

	if _, err := m.AddImages(s.ID, descriptors("a", "b")); err != nil {
		t.Fatalf("AddImages() error = %v", err)
	}

	// Duplicate against stored images.
	if _, err := m.AddImages(s.ID, descriptors("b")); !errors.Is(err, ErrDuplicateImage) {
		t.Errorf("AddImages() error = %v, want ErrDuplicateImage", err)
	}

	// Duplicate within one call; nothing is added.
	if _, err := m.AddImages(s.ID, descriptors("c", "c")); !errors.Is(err, ErrDuplicateImage) {
		t.Errorf("AddImages() error = %v, want ErrDuplicateImage", err)
	}
	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ImageCount() != 2 {
		t.Errorf("ImageCount() = %d after failed adds, want 2", got.ImageCount())
	}
}

func TestAddImagesLimit(t *testing.T) {
	m := newTestManager(t)
	s := m.Create()

	ids := make([]string, 12)
	for i := range ids {
		ids[i] = fmt.Sprintf("img-%02d", i)
	}
	if _, err := m.AddImages(s.ID, descriptors(ids...)); err != nil {
		t.Fatalf("AddImages() error = %v", err)
	}

	if _, err := m.AddImages(s.ID, descriptors("overflow")); !errors.Is(err, ErrImageLimit) {
		t.Errorf("AddImages() error = %v, want ErrImageLimit", err)
	}
}

func TestAddImagesEmptyID(t *testing.T) {
	m := newTestManager(t)
	s := m.Create()

	if _, err := m.AddImages(s.ID, descriptors("")); !errors.Is(err, analysis.ErrEmptyImageID) {
		t.Errorf("AddImages() error = %v, want ErrEmptyImageID", err)
	}
}

func TestDelete(t *testing.T) {
	m := newTestManager(t)
	s := m.Create()

	if err := m.Delete(s.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := m.Get(s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := m.Delete(s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestExpiry(t *testing.T) {
	m := newTestManager(t)

	current := time.Now()
	m.now = func() time.Time { return current }

	s := m.Create()

	// Just inside the TTL: access refreshes the expiry.
	current = current.Add(DefaultConfig().TTL - time.Minute)
	if _, err := m.Get(s.ID); err != nil {
		t.Fatalf("Get() before expiry error = %v", err)
	}

	// The refreshed session survives another near-TTL wait.
	current = current.Add(DefaultConfig().TTL - time.Minute)
	if _, err := m.Get(s.ID); err != nil {
		t.Fatalf("Get() after refresh error = %v", err)
	}

	// Past the TTL the session is gone.
	current = current.Add(DefaultConfig().TTL + time.Minute)
	if _, err := m.Get(s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after expiry error = %v, want ErrNotFound", err)
	}
}

func TestSweep(t *testing.T) {
	m := newTestManager(t)

	current := time.Now()
	m.now = func() time.Time { return current }

	m.Create()
	m.Create()
	current = current.Add(DefaultConfig().TTL + time.Minute)
	survivor := m.Create()

	if got := m.Sweep(); got != 2 {
		t.Errorf("Sweep() = %d, want 2", got)
	}
	if got := m.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
	if _, err := m.Get(survivor.ID); err != nil {
		t.Errorf("Get() for surviving session error = %v", err)
	}
}
