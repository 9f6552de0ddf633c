// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package state holds the view state of the weather card: the current reading, the loading
// flag and the outcome of the last refresh.
package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wneessen/weathercard/internal/logger"
	"github.com/wneessen/weathercard/internal/weather"
)

var (
	// ErrRefreshInProgress is returned when a refresh is triggered while another one is loading.
	ErrRefreshInProgress = errors.New("weather refresh already in progress")

	// ErrResultDiscarded is returned when the store was reset while the refresh was in flight.
	ErrResultDiscarded = errors.New("weather reading discarded, store was reset during refresh")
)

// Snapshot is a point-in-time copy of the view state.
type Snapshot struct {
	Reading   weather.Reading
	IsLoading bool
	LastError error
	UpdatedAt time.Time

	// Generation increases with every Reset. Results of refreshes started in an older
	// generation are discarded.
	Generation uint64

	// Version increases with every published change. A snapshot with a higher version is
	// newer.
	Version uint64
}

// HasError reports whether the last refresh failed.
func (s Snapshot) HasError() bool {
	return s.LastError != nil
}

// Store owns the reading lifecycle. A refresh moves the store from idle to loading and back
// to idle with either a new reading or the prior one and the failure.
type Store struct {
	mu       sync.RWMutex
	logger   *logger.Logger
	provider weather.Provider
	initial  weather.Reading
	current  Snapshot
	subs     map[chan Snapshot]struct{}
}

// New returns a Store that starts with the given default reading.
func New(initial *weather.Reading, provider weather.Provider, log *logger.Logger) (*Store, error) {
	if initial == nil {
		return nil, fmt.Errorf("initial reading is required")
	}
	if provider == nil {
		return nil, fmt.Errorf("weather provider is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Store{
		logger:   log,
		provider: provider,
		initial:  *initial,
		current:  Snapshot{Reading: *initial},
		subs:     make(map[chan Snapshot]struct{}),
	}, nil
}

// Snapshot returns a copy of the current view state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe returns a channel that receives a snapshot on every state change and an
// unsubscribe function. Publishing never blocks, a subscriber with a full buffer misses
// the update.
func (s *Store) Subscribe(size int) (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, size)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsub
}

// Refresh fetches a new reading from the provider. The loading flag is published before the
// provider is called and is cleared on success and on failure alike. A refresh that is
// triggered while another one is loading is rejected with ErrRefreshInProgress.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.current.IsLoading {
		s.mu.Unlock()
		return ErrRefreshInProgress
	}
	s.current.IsLoading = true
	generation := s.current.Generation
	s.broadcast()
	s.mu.Unlock()

	reading, err := s.provider.GetReading(ctx)
	if err == nil && reading == nil {
		err = weather.NewFetchError(weather.ErrDataAbsent, errors.New("provider returned no reading"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.Generation != generation {
		s.logger.Debug("discarding stale weather reading", slog.Uint64("generation", generation),
			slog.Uint64("current_generation", s.current.Generation))
		return ErrResultDiscarded
	}

	s.current.IsLoading = false
	if err != nil {
		s.current.LastError = err
		s.broadcast()
		s.logger.Error("failed to fetch weather data", logger.Err(err), slog.String("source", s.provider.Name()))
		return err
	}

	s.current.Reading = *reading
	s.current.LastError = nil
	s.current.UpdatedAt = time.Now()
	s.broadcast()
	s.logger.Debug("weather data updated", slog.String("source", s.provider.Name()),
		slog.String("location", reading.LocationName), slog.String("observed", reading.ObservationTime))

	return nil
}

// Reset restores the default reading and starts a new generation. A refresh that is in
// flight while the store is reset will not apply its result.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Snapshot{
		Reading:    s.initial,
		Generation: s.current.Generation + 1,
		Version:    s.current.Version,
	}
	s.broadcast()
}

// broadcast publishes the current state as a new version. It must be called with the lock
// held.
func (s *Store) broadcast() {
	s.current.Version++
	for ch := range s.subs {
		select {
		case ch <- s.current:
		default:
		}
	}
}
