// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/wneessen/weathercard/internal/logger"
)

const (
	logindInterface = "org.freedesktop.login1.Manager"
	logindMember    = "PrepareForSleep"

	resumeDebounce   = 2 * time.Second
	signalBufferSize = 8

	busRetryDelay      = 5 * time.Second
	networkWakeupDelay = 10 * time.Second
)

// monitorSleepResume refreshes the weather card after the system resumed from suspend. It
// listens for the logind PrepareForSleep signal and reconnects to the system bus whenever
// the connection is lost, until ctx is cancelled.
func (s *Service) monitorSleepResume(ctx context.Context) {
	for {
		conn, signals, ok := s.subscribeSleepSignals(ctx)
		if !ok {
			return
		}
		s.logger.Debug("watching for system resume", slog.String("interface", logindInterface),
			slog.String("member", logindMember))

		s.handleSleepSignals(ctx, signals)

		conn.RemoveSignal(signals)
		if err := conn.Close(); err != nil {
			s.logger.Debug("failed to close system bus connection", logger.Err(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(busRetryDelay):
		}
	}
}

// subscribeSleepSignals connects to the system bus and registers the PrepareForSleep match.
// Failed attempts are retried after busRetryDelay. It returns false once ctx is cancelled.
func (s *Service) subscribeSleepSignals(ctx context.Context) (*dbus.Conn, chan *dbus.Signal, bool) {
	for {
		conn, err := dbus.ConnectSystemBus(dbus.WithContext(ctx))
		if err == nil {
			err = conn.AddMatchSignal(dbus.WithMatchInterface(logindInterface), dbus.WithMatchMember(logindMember))
			if err == nil {
				signals := make(chan *dbus.Signal, signalBufferSize)
				conn.Signal(signals)
				return conn, signals, true
			}
			_ = conn.Close()
		}
		s.logger.Debug("failed to subscribe to system resume signal", logger.Err(err))

		select {
		case <-ctx.Done():
			return nil, nil, false
		case <-time.After(busRetryDelay):
		}
	}
}

// handleSleepSignals returns when ctx is cancelled or the signal channel was closed by a lost
// bus connection.
func (s *Service) handleSleepSignals(ctx context.Context, signals <-chan *dbus.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sgn, ok := <-signals:
			if !ok {
				return
			}
			s.processSleepSignal(ctx, sgn)
		}
	}
}

// processSleepSignal ignores everything but a PrepareForSleep(false), which logind emits on
// resume.
func (s *Service) processSleepSignal(ctx context.Context, sgn *dbus.Signal) {
	if sgn == nil || len(sgn.Body) != 1 {
		return
	}
	if sleeping, ok := sgn.Body[0].(bool); !ok || sleeping {
		return
	}
	s.handleResumeEvent(ctx)
}

// handleResumeEvent resets the card to the default reading, waits for the network to come
// back and refreshes it. The reset drops the reading from before the suspend and makes a
// fetch that hung across the suspend discard its result. Resume events that follow each
// other within resumeDebounce are handled once.
func (s *Service) handleResumeEvent(ctx context.Context) {
	now := time.Now().UnixNano()
	last := s.lastResume.Load()
	if now-last < int64(resumeDebounce) || !s.lastResume.CompareAndSwap(last, now) {
		return
	}
	s.store.Reset()

	select {
	case <-ctx.Done():
		return
	case <-time.After(networkWakeupDelay):
	}

	s.logger.Debug("system resumed, refreshing weather card")
	s.refreshWeather(ctx)
}
