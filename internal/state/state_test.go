// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package state

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"testing/synctest"

	"github.com/wneessen/weathercard/internal/logger"
	"github.com/wneessen/weathercard/internal/weather"
)

type mockProvider struct {
	started chan struct{}
	release chan struct{}
	reading *weather.Reading
	err     error
	calls   int
}

func (m *mockProvider) Name() string { return "mock weather provider" }

func (m *mockProvider) GetReading(ctx context.Context) (*weather.Reading, error) {
	m.calls++
	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, weather.NewFetchError(weather.ErrNetwork, ctx.Err())
		}
	}
	return m.reading, m.err
}

func TestNew(t *testing.T) {
	log := logger.NewLogger(slog.LevelInfo, io.Discard)
	t.Run("new store starts with the default reading", func(t *testing.T) {
		store, err := New(defaultReading(), &mockProvider{}, log)
		if err != nil {
			t.Fatalf("failed to create store: %s", err)
		}
		snap := store.Snapshot()
		if snap.Reading.LocationName != "臺中市" {
			t.Errorf("expected default location name, got %q", snap.Reading.LocationName)
		}
		if snap.IsLoading {
			t.Error("expected store not to be loading")
		}
		if snap.HasError() {
			t.Errorf("expected no error, got %s", snap.LastError)
		}
		if !snap.UpdatedAt.IsZero() {
			t.Errorf("expected update time to be zero, got %s", snap.UpdatedAt)
		}
	})
	t.Run("missing dependencies fail", func(t *testing.T) {
		if _, err := New(nil, &mockProvider{}, log); err == nil {
			t.Error("expected missing initial reading to fail")
		}
		if _, err := New(defaultReading(), nil, log); err == nil {
			t.Error("expected missing provider to fail")
		}
		if _, err := New(defaultReading(), &mockProvider{}, nil); err == nil {
			t.Error("expected missing logger to fail")
		}
	})
}

func TestStore_Refresh(t *testing.T) {
	t.Run("successful refresh replaces the reading", func(t *testing.T) {
		store := testStore(t, &mockProvider{reading: testReading()}, nil)
		if err := store.Refresh(t.Context()); err != nil {
			t.Fatalf("failed to refresh: %s", err)
		}
		snap := store.Snapshot()
		if snap.IsLoading {
			t.Error("expected loading to be cleared")
		}
		if snap.Reading.Description.ValueOr("") != "多雲時晴" {
			t.Errorf("expected description to be replaced, got %s", snap.Reading.Description)
		}
		if snap.Reading.Temperature.ValueOr(0) != 22.9 {
			t.Errorf("expected temperature to be 22.9, got %s", snap.Reading.Temperature)
		}
		if snap.UpdatedAt.IsZero() {
			t.Error("expected update time to be set")
		}
	})
	t.Run("loading is published before the provider is called and cleared afterwards", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			provider := &mockProvider{
				started: make(chan struct{}),
				release: make(chan struct{}),
				reading: testReading(),
			}
			store := testStore(t, provider, nil)
			sub, unsub := store.Subscribe(4)
			defer unsub()

			done := make(chan error)
			go func() { done <- store.Refresh(t.Context()) }()
			<-provider.started

			if !store.Snapshot().IsLoading {
				t.Error("expected store to be loading while the provider is called")
			}
			if snap := <-sub; !snap.IsLoading {
				t.Error("expected the first published snapshot to be loading")
			}

			close(provider.release)
			if err := <-done; err != nil {
				t.Fatalf("failed to refresh: %s", err)
			}
			snap := <-sub
			if snap.IsLoading {
				t.Error("expected the final published snapshot not to be loading")
			}
			if snap.Reading.Description.ValueOr("") != "多雲時晴" {
				t.Errorf("expected published snapshot to carry the new reading, got %s", snap.Reading.Description)
			}
		})
	})
	t.Run("failed refresh keeps the prior reading and clears loading", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		provider := &mockProvider{reading: testReading()}
		store := testStore(t, provider, buf)
		if err := store.Refresh(t.Context()); err != nil {
			t.Fatalf("failed to refresh: %s", err)
		}
		firstUpdate := store.Snapshot().UpdatedAt

		provider.reading = nil
		provider.err = &weather.FetchError{Kind: weather.ErrHTTPStatus, StatusCode: 500, Err: errors.New("boom")}
		err := store.Refresh(t.Context())
		if !errors.Is(err, weather.ErrHTTPStatus) {
			t.Fatalf("expected refresh to fail with %s, got %v", weather.ErrHTTPStatus, err)
		}
		snap := store.Snapshot()
		if snap.IsLoading {
			t.Error("expected loading to be cleared after a failure")
		}
		if !snap.HasError() || !errors.Is(snap.LastError, weather.ErrHTTPStatus) {
			t.Errorf("expected last error to be recorded, got %v", snap.LastError)
		}
		if snap.Reading.Temperature.ValueOr(0) != 22.9 {
			t.Errorf("expected prior reading to be kept, got %s", snap.Reading.Temperature)
		}
		if !snap.UpdatedAt.Equal(firstUpdate) {
			t.Errorf("expected update time to be unchanged, got %s", snap.UpdatedAt)
		}
		wantLog := `msg="failed to fetch weather data"`
		if !strings.Contains(buf.String(), wantLog) || !strings.Contains(buf.String(), `source="mock weather provider"`) {
			t.Errorf("expected log to contain %q, got %q", wantLog, buf.String())
		}
	})
	t.Run("failure on the first refresh keeps the default reading", func(t *testing.T) {
		store := testStore(t, &mockProvider{err: weather.NewFetchError(weather.ErrDataAbsent, nil)}, nil)
		err := store.Refresh(t.Context())
		if !errors.Is(err, weather.ErrDataAbsent) {
			t.Fatalf("expected refresh to fail with %s, got %v", weather.ErrDataAbsent, err)
		}
		snap := store.Snapshot()
		if snap.IsLoading {
			t.Error("expected loading to be cleared after a failure")
		}
		if snap.Reading.LocationName != "臺中市" || snap.Reading.Temperature.IsSet() {
			t.Errorf("expected default reading to be kept, got %+v", snap.Reading)
		}
	})
	t.Run("successful refresh clears a previous error", func(t *testing.T) {
		provider := &mockProvider{err: weather.NewFetchError(weather.ErrNetwork, context.DeadlineExceeded)}
		store := testStore(t, provider, nil)
		_ = store.Refresh(t.Context())
		provider.err = nil
		provider.reading = testReading()
		if err := store.Refresh(t.Context()); err != nil {
			t.Fatalf("failed to refresh: %s", err)
		}
		if snap := store.Snapshot(); snap.HasError() {
			t.Errorf("expected error to be cleared, got %s", snap.LastError)
		}
	})
	t.Run("nil reading without error is treated as absent data", func(t *testing.T) {
		store := testStore(t, &mockProvider{}, nil)
		if err := store.Refresh(t.Context()); !errors.Is(err, weather.ErrDataAbsent) {
			t.Errorf("expected refresh to fail with %s, got %v", weather.ErrDataAbsent, err)
		}
	})
	t.Run("trigger while loading is rejected", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			provider := &mockProvider{
				started: make(chan struct{}),
				release: make(chan struct{}),
				reading: testReading(),
			}
			store := testStore(t, provider, nil)

			done := make(chan error)
			go func() { done <- store.Refresh(t.Context()) }()
			<-provider.started

			if err := store.Refresh(t.Context()); !errors.Is(err, ErrRefreshInProgress) {
				t.Errorf("expected second refresh to be rejected, got %v", err)
			}
			close(provider.release)
			if err := <-done; err != nil {
				t.Fatalf("failed to refresh: %s", err)
			}
			if provider.calls != 1 {
				t.Errorf("expected exactly one provider call, got %d", provider.calls)
			}
		})
	})
	t.Run("cancelled refresh clears loading", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			provider := &mockProvider{started: make(chan struct{}), release: make(chan struct{})}
			store := testStore(t, provider, nil)

			done := make(chan error)
			go func() { done <- store.Refresh(ctx) }()
			<-provider.started
			cancel()

			if err := <-done; !errors.Is(err, context.Canceled) {
				t.Errorf("expected refresh to fail with context.Canceled, got %v", err)
			}
			if store.Snapshot().IsLoading {
				t.Error("expected loading to be cleared")
			}
		})
	})
}

func TestStore_Reset(t *testing.T) {
	t.Run("reset restores the default reading", func(t *testing.T) {
		store := testStore(t, &mockProvider{reading: testReading()}, nil)
		if err := store.Refresh(t.Context()); err != nil {
			t.Fatalf("failed to refresh: %s", err)
		}
		store.Reset()
		snap := store.Snapshot()
		if snap.Reading.Temperature.IsSet() {
			t.Errorf("expected temperature to be unset, got %s", snap.Reading.Temperature)
		}
		if snap.Generation != 1 {
			t.Errorf("expected generation to be 1, got %d", snap.Generation)
		}
	})
	t.Run("result of a refresh started before a reset is discarded", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			provider := &mockProvider{
				started: make(chan struct{}),
				release: make(chan struct{}),
				reading: testReading(),
			}
			store := testStore(t, provider, nil)

			done := make(chan error)
			go func() { done <- store.Refresh(t.Context()) }()
			<-provider.started
			store.Reset()

			close(provider.release)
			if err := <-done; !errors.Is(err, ErrResultDiscarded) {
				t.Errorf("expected stale result to be discarded, got %v", err)
			}
			snap := store.Snapshot()
			if snap.Reading.Temperature.IsSet() {
				t.Errorf("expected stale reading not to be applied, got %s", snap.Reading.Temperature)
			}
			if snap.IsLoading {
				t.Error("expected store not to be loading after reset")
			}
		})
	})
}

func TestStore_Subscribe(t *testing.T) {
	t.Run("full subscriber does not block a refresh", func(t *testing.T) {
		store := testStore(t, &mockProvider{reading: testReading()}, nil)
		_, unsub := store.Subscribe(0)
		defer unsub()
		if err := store.Refresh(t.Context()); err != nil {
			t.Fatalf("failed to refresh: %s", err)
		}
	})
	t.Run("published snapshots carry increasing versions", func(t *testing.T) {
		store := testStore(t, &mockProvider{reading: testReading()}, nil)
		sub, unsub := store.Subscribe(4)
		defer unsub()
		if err := store.Refresh(t.Context()); err != nil {
			t.Fatalf("failed to refresh: %s", err)
		}
		store.Reset()

		var versions []uint64
		for range 3 {
			snap := <-sub
			versions = append(versions, snap.Version)
		}
		if versions[0] >= versions[1] || versions[1] >= versions[2] {
			t.Errorf("expected strictly increasing versions, got %v", versions)
		}
		if store.Snapshot().Version != versions[2] {
			t.Errorf("expected current version to be %d, got %d", versions[2], store.Snapshot().Version)
		}
	})
	t.Run("unsubscribe closes the channel and is idempotent", func(t *testing.T) {
		store := testStore(t, &mockProvider{reading: testReading()}, nil)
		sub, unsub := store.Subscribe(1)
		unsub()
		unsub()
		if _, ok := <-sub; ok {
			t.Error("expected subscription channel to be closed")
		}
		if err := store.Refresh(t.Context()); err != nil {
			t.Fatalf("failed to refresh: %s", err)
		}
	})
}

func testStore(t *testing.T, provider weather.Provider, buf *bytes.Buffer) *Store {
	t.Helper()
	var out io.Writer = io.Discard
	if buf != nil {
		out = buf
	}
	store, err := New(defaultReading(), provider, logger.NewLogger(slog.LevelDebug, out))
	if err != nil {
		t.Fatalf("failed to create store: %s", err)
	}
	return store
}

func defaultReading() *weather.Reading {
	return weather.NewReading("臺中市")
}

func testReading() *weather.Reading {
	reading := weather.NewReading("臺中")
	reading.Description.Set("多雲時晴")
	reading.Temperature.Set(22.9)
	reading.WindSpeed.Set(1.1)
	reading.ObservationTime = "2021-01-18 12:00:00"
	return reading
}
