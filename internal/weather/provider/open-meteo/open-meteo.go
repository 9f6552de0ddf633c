// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package openmeteo enriches readings of another weather.Provider with the hourly precipitation
// probability of the Open-Meteo forecast API.
package openmeteo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hectormalot/omgo"

	"github.com/wneessen/weathercard/internal/logger"
	"github.com/wneessen/weathercard/internal/weather"
)

const (
	name         = "open-meteo"
	apiTimeout   = time.Second * 10
	rainMetric   = "precipitation_probability"
	hourOfDayFmt = "2006-01-02T15"
)

var ErrNoHourlyValue = errors.New("no precipitation probability for the observation hour")

// forecaster is satisfied by *omgo.Client.
type forecaster interface {
	Forecast(ctx context.Context, loc omgo.Location, opts *omgo.Options) (*omgo.Forecast, error)
}

// RainEnricher is a weather.Provider that decorates a primary provider. Readings without a
// rain possibility are completed with the forecast probability for the observation hour at
// the station coordinates. Lookup failures are logged and never fail the reading.
type RainEnricher struct {
	primary weather.Provider
	client  forecaster
	log     *logger.Logger
	timeout time.Duration
	cache   *rainCache
}

func New(primary weather.Provider, log *logger.Logger) (*RainEnricher, error) {
	client, err := omgo.NewClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create Open-Meteo client: %w", err)
	}
	return newWithForecaster(primary, &client, log)
}

func newWithForecaster(primary weather.Provider, client forecaster, log *logger.Logger) (*RainEnricher, error) {
	if primary == nil {
		return nil, fmt.Errorf("primary weather provider is required")
	}
	if client == nil {
		return nil, fmt.Errorf("forecast client is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &RainEnricher{
		primary: primary,
		client:  client,
		log:     log,
		timeout: apiTimeout,
		cache:   newRainCache(cacheTTLHit, cacheTTLMiss),
	}, nil
}

func (r *RainEnricher) Name() string {
	return r.primary.Name() + "+" + name
}

func (r *RainEnricher) GetReading(ctx context.Context) (*weather.Reading, error) {
	reading, err := r.primary.GetReading(ctx)
	if err != nil {
		return nil, err
	}
	if reading.RainPossibility.IsSet() || !reading.HasCoordinates() || reading.ObservedAt.IsZero() {
		return reading, nil
	}

	key := newKey(reading.Latitude, reading.Longitude, reading.ObservedAt)
	if entry, ok := r.cache.get(key, time.Now()); ok {
		if entry.Found {
			reading.RainPossibility.Set(entry.Probability)
		}
		return reading, nil
	}

	probability, err := r.lookup(ctx, reading)
	if errors.Is(err, ErrNoHourlyValue) {
		r.cache.put(key, 0, false, time.Now())
	}
	if err != nil {
		r.log.Warn("failed to look up rain possibility", slog.String("provider", name),
			slog.String("location", reading.LocationName), logger.Err(err))
		return reading, nil
	}
	probability = clampPercent(probability)
	r.cache.put(key, probability, true, time.Now())
	reading.RainPossibility.Set(probability)

	return reading, nil
}

func (r *RainEnricher) lookup(ctx context.Context, reading *weather.Reading) (float64, error) {
	ctxFetch, cancelFetch := context.WithTimeout(ctx, r.timeout)
	defer cancelFetch()

	location, err := omgo.NewLocation(reading.Latitude, reading.Longitude)
	if err != nil {
		return 0, fmt.Errorf("invalid station coordinates: %w", err)
	}
	opts := &omgo.Options{
		PastDays:      1,
		Timezone:      "auto",
		HourlyMetrics: []string{rainMetric},
	}
	forecast, err := r.client.Forecast(ctxFetch, location, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to get forecast data: %w", err)
	}
	if forecast == nil {
		return 0, ErrNoHourlyValue
	}

	probability, ok := probabilityAt(forecast.HourlyTimes, forecast.HourlyMetrics[rainMetric], reading.ObservedAt)
	if !ok {
		return 0, ErrNoHourlyValue
	}
	return probability, nil
}

// probabilityAt returns the hourly value whose wall clock hour matches the given time. The
// forecast is requested in the station's timezone, so the wall clocks of both sides compare
// directly.
func probabilityAt(times []time.Time, values []float64, at time.Time) (float64, bool) {
	want := at.Format(hourOfDayFmt)
	for i, t := range times {
		if i >= len(values) {
			break
		}
		if t.Format(hourOfDayFmt) == want {
			return values[i], true
		}
	}
	return 0, false
}

func clampPercent(v float64) float64 {
	return min(max(v, 0), 100)
}
