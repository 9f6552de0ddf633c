// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package weather

import (
	"context"
	"time"

	"github.com/wneessen/weathercard/internal/vartype"
)

// Provider is implemented by each weather observation backend.
type Provider interface {
	Name() string
	GetReading(ctx context.Context) (*Reading, error)
}

// Reading is the normalized, display-ready representation of one observation. Measured
// values that the upstream did not supply stay unset.
type Reading struct {
	LocationName string
	StationID    string
	Latitude     float64
	Longitude    float64

	Description     vartype.VarString
	Temperature     vartype.VarFloat64 // °C
	WindSpeed       vartype.VarFloat64 // m/s
	RainPossibility vartype.VarFloat64 // percent

	// ObservationTime is the observation timestamp exactly as supplied upstream.
	ObservationTime string
	ObservedAt      time.Time
}

// NewReading returns a Reading for the given location with all measurements unset.
func NewReading(locationName string) *Reading {
	return &Reading{LocationName: locationName}
}

// HasCoordinates reports whether the station coordinates are known.
func (r *Reading) HasCoordinates() bool {
	return r.Latitude != 0 || r.Longitude != 0
}
