// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/vorlif/spreak"
	"golang.org/x/time/rate"

	"github.com/wneessen/weathercard/internal/config"
	"github.com/wneessen/weathercard/internal/logger"
	"github.com/wneessen/weathercard/internal/presenter"
	"github.com/wneessen/weathercard/internal/state"
	"github.com/wneessen/weathercard/internal/weather"
)

const subscriptionBuffer = 8

type outputData struct {
	Text    string   `json:"text"`
	Tooltip string   `json:"tooltip"`
	Classes []string `json:"class"`
}

type Service struct {
	config    *config.Config
	logger    *logger.Logger
	presenter *presenter.Presenter
	scheduler gocron.Scheduler
	store     *state.Store
	limiter   *rate.Limiter
	SignalSrc signalSource

	outputLock    sync.Mutex
	output        io.Writer
	outputVersion uint64

	themeLock sync.RWMutex
	theme     string

	// unix nanoseconds of the last handled system resume
	lastResume atomic.Int64
}

func New(conf *config.Config, log *logger.Logger, lang *spreak.Localizer) (*Service, error) {
	if conf == nil {
		return nil, fmt.Errorf("config is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	pres, err := presenter.New(conf, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to create presenter: %w", err)
	}

	service := &Service{
		config:    conf,
		logger:    log,
		presenter: pres,
		scheduler: scheduler,
		limiter:   rate.NewLimiter(rate.Every(conf.Refresh.MinInterval), conf.Refresh.Burst),
		SignalSrc: stdLibSignalSource{},
		output:    os.Stdout,
		theme:     conf.Theme,
	}

	provider, err := service.selectWeatherProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to create weather provider: %w", err)
	}
	service.store, err = state.New(weather.NewReading(conf.Weather.LocationName), provider, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create state store: %w", err)
	}

	return service, nil
}

// Run renders the card on every state change, refreshes the reading once at startup and on
// the configured interval and reacts to signals and system resume until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	sub, unsub := s.store.Subscribe(subscriptionBuffer)
	defer unsub()
	go s.processStateUpdates(ctx, sub)

	// Start scheduled jobs
	if err := s.createScheduledJob(ctx, s.config.Intervals.Output, s.printWeather,
		"weather_output_job"); err != nil {
		return err
	}
	if err := s.createScheduledJob(ctx, s.config.Intervals.WeatherUpdate, s.refreshWeather,
		"weather_update_job", gocron.WithStartAt(gocron.WithStartImmediately())); err != nil {
		return err
	}
	s.scheduler.Start()

	// Initial render with the default reading
	s.printWeather(ctx)

	sigChan := make(chan os.Signal, 1)
	s.SignalSrc.Notify(sigChan, syscall.SIGUSR1, syscall.SIGUSR2)
	defer s.SignalSrc.Stop(sigChan)
	go s.HandleSignals(ctx, sigChan)

	if !s.config.DisableSleepMonitor {
		go s.monitorSleepResume(ctx)
	}

	// Wait for the context to cancel
	<-ctx.Done()
	return s.scheduler.Shutdown()
}

func (s *Service) createScheduledJob(ctx context.Context, interval time.Duration, task func(context.Context),
	jobName string, opts ...gocron.JobOption,
) error {
	opts = append([]gocron.JobOption{
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(jobName),
	}, opts...)
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", jobName, err)
	}
	return nil
}

// refreshWeather triggers a refresh of the state store. Fetch failures are logged by the store.
func (s *Service) refreshWeather(ctx context.Context) {
	err := s.store.Refresh(ctx)
	switch {
	case errors.Is(err, state.ErrRefreshInProgress):
		s.logger.Debug("weather refresh skipped, another refresh is loading")
	case errors.Is(err, state.ErrResultDiscarded):
		s.logger.Debug("weather refresh result discarded")
	}
}

// manualRefresh handles a user triggered refresh. Triggers that exceed the configured rate
// are dropped.
func (s *Service) manualRefresh(ctx context.Context) {
	if !s.limiter.Allow() {
		s.logger.Debug("manual weather refresh throttled")
		return
	}
	s.refreshWeather(ctx)
}

// processStateUpdates renders the card whenever the state store publishes a change.
func (s *Service) processStateUpdates(ctx context.Context, sub <-chan state.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-sub:
			if !ok {
				return
			}
			s.render(snap)
		}
	}
}

// printWeather renders the current state of the store to the output.
func (s *Service) printWeather(context.Context) {
	s.outputLock.Lock()
	defer s.outputLock.Unlock()
	s.writeCard(s.store.Snapshot())
}

// render writes the card for a published snapshot. Snapshots that are older than the last
// written card are skipped, so a slow subscriber never overwrites a newer card.
func (s *Service) render(snap state.Snapshot) {
	s.outputLock.Lock()
	defer s.outputLock.Unlock()
	if snap.Version < s.outputVersion {
		return
	}
	s.writeCard(snap)
}

// writeCard must be called with outputLock held.
func (s *Service) writeCard(snap state.Snapshot) {
	s.outputVersion = snap.Version
	tplCtx := s.presenter.BuildContext(snap, s.Theme(), time.Now())
	outMap, err := s.presenter.Render(tplCtx)
	if err != nil {
		s.logger.Error("failed to render weather template", logger.Err(err))
		return
	}

	output := outputData{
		Text:    outMap["text"],
		Tooltip: outMap["tooltip"],
		Classes: s.presenter.Classes(tplCtx),
	}
	if err = json.NewEncoder(s.output).Encode(output); err != nil {
		s.logger.Error("failed to encode weather data", logger.Err(err))
	}
}

// Theme returns the active theme.
func (s *Service) Theme() string {
	s.themeLock.RLock()
	defer s.themeLock.RUnlock()
	return s.theme
}

// toggleTheme switches between the light and the dark theme and returns the new theme.
func (s *Service) toggleTheme() string {
	s.themeLock.Lock()
	defer s.themeLock.Unlock()
	if s.theme == config.ThemeDark {
		s.theme = config.ThemeLight
	} else {
		s.theme = config.ThemeDark
	}
	s.logger.Debug("theme toggled", slog.String("theme", s.theme))
	return s.theme
}
