// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"
)

const (
	configEnv = "WEATHERCARD"

	DefaultTextTpl    = "{{.ConditionIcon}} {{num .Temperature}}°C{{if .IsLoading}} {{.LoadingIcon}}{{end}}"
	DefaultTooltipTpl = "{{.LocationName}}: {{.Description}}\n" +
		"{{loc \"temp\"}}: {{num .Temperature}}°C\n" +
		"{{loc \"windspeed\"}}: {{num .WindSpeed}} m/s\n" +
		"{{loc \"rain\"}}: {{percent .RainPossibility}}\n" +
		"{{loc \"observed\"}}: {{if .ObservedAt.IsZero}}{{.ObservationTime}}{{else}}{{localizedTime .ObservedAt}}{{end}}\n\n" +
		"🌅 {{localizedTime .SunriseTime}} • 🌇 {{localizedTime .SunsetTime}}" +
		"{{if .HasError}}\n\n{{loc \"updatefailed\"}}: {{.Error}}{{end}}"

	ThemeLight = "light"
	ThemeDark  = "dark"

	LogFormatText  = "text"
	LogFormatColor = "color"

	RainProviderOpenMeteo = "open-meteo"
)

// Config represents the application's configuration structure.
type Config struct {
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`
	// Allowed values: text, color
	LogFormat string `fig:"logformat" default:"text"`
	// Allowed values: light, dark
	Theme string `fig:"theme" default:"light"`

	DisableSleepMonitor bool `fig:"disable_sleep_monitor"`

	Weather struct {
		Endpoint     string        `fig:"endpoint"`
		APIKey       string        `fig:"apikey"`
		LocationName string        `fig:"location_name" default:"臺中"`
		Timeout      time.Duration `fig:"timeout" default:"10s"`

		// Element tags of the observation dataset
		Elements struct {
			WindSpeed       string `fig:"wind_speed" default:"WDSD"`
			Temperature     string `fig:"temperature" default:"TEMP"`
			Description     string `fig:"description" default:"Weather"`
			RainPossibility string `fig:"rain_possibility"`
		} `fig:"elements"`
	} `fig:"weather"`

	Rain struct {
		// Allowed values: "" (disabled), open-meteo
		Provider string `fig:"provider"`
	} `fig:"rain"`

	Intervals struct {
		WeatherUpdate time.Duration `fig:"weather_update" default:"15m"`
		Output        time.Duration `fig:"output" default:"30s"`
	} `fig:"intervals"`

	// Refresh throttles manually triggered refreshes
	Refresh struct {
		MinInterval time.Duration `fig:"min_interval" default:"10s"`
		Burst       int           `fig:"burst" default:"1"`
	} `fig:"refresh"`

	Templates struct {
		Text    string `fig:"text"`
		Tooltip string `fig:"tooltip"`
	} `fig:"templates"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	c.Theme = strings.ToLower(c.Theme)
	if c.Theme != ThemeLight && c.Theme != ThemeDark {
		return fmt.Errorf("invalid theme: %s", c.Theme)
	}
	c.LogFormat = strings.ToLower(c.LogFormat)
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatColor {
		return fmt.Errorf("invalid log format: %s", c.LogFormat)
	}
	c.Rain.Provider = strings.ToLower(c.Rain.Provider)
	if c.Rain.Provider != "" && c.Rain.Provider != RainProviderOpenMeteo {
		return fmt.Errorf("unsupported rain provider: %s", c.Rain.Provider)
	}
	if strings.TrimSpace(c.Weather.LocationName) == "" {
		return fmt.Errorf("weather location name must not be empty")
	}
	if c.Weather.Timeout <= 0 {
		return fmt.Errorf("invalid weather timeout: %s", c.Weather.Timeout)
	}
	if c.Intervals.WeatherUpdate <= 0 {
		return fmt.Errorf("invalid weather update interval: %s", c.Intervals.WeatherUpdate)
	}
	if c.Intervals.Output <= 0 {
		return fmt.Errorf("invalid output interval: %s", c.Intervals.Output)
	}
	if c.Refresh.MinInterval < 0 {
		return fmt.Errorf("invalid manual refresh interval: %s", c.Refresh.MinInterval)
	}
	if c.Refresh.Burst < 1 {
		return fmt.Errorf("invalid manual refresh burst: %d", c.Refresh.Burst)
	}
	if c.Locale == "" {
		c.Locale = getLocale()
	}
	if c.Templates.Text == "" {
		c.Templates.Text = DefaultTextTpl
	}
	if c.Templates.Tooltip == "" {
		c.Templates.Tooltip = DefaultTooltipTpl
	}

	return nil
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
