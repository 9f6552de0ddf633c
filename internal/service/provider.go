// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"strings"

	"github.com/wneessen/weathercard/internal/config"
	"github.com/wneessen/weathercard/internal/http"
	"github.com/wneessen/weathercard/internal/weather"
	"github.com/wneessen/weathercard/internal/weather/provider/cwb"
	openmeteo "github.com/wneessen/weathercard/internal/weather/provider/open-meteo"
)

// selectWeatherProvider creates the CWB observation provider and wraps it with the configured
// rain enrichment.
func (s *Service) selectWeatherProvider() (provider weather.Provider, err error) {
	elements := s.config.Weather.Elements
	provider, err = cwb.New(http.New(s.logger), cwb.Options{
		Endpoint:     s.config.Weather.Endpoint,
		APIKey:       s.config.Weather.APIKey,
		LocationName: s.config.Weather.LocationName,
		Timeout:      s.config.Weather.Timeout,
		Elements: cwb.Elements{
			WindSpeed:       elements.WindSpeed,
			Temperature:     elements.Temperature,
			Description:     elements.Description,
			RainPossibility: elements.RainPossibility,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create CWB weather provider: %w", err)
	}

	switch strings.ToLower(s.config.Rain.Provider) {
	case "":
	case config.RainProviderOpenMeteo:
		provider, err = openmeteo.New(provider, s.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Open-Meteo rain provider: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported rain provider: %s", s.config.Rain.Provider)
	}
	return provider, nil
}
