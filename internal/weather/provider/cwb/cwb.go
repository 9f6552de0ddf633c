// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package cwb implements a weather.Provider for the current observation dataset (O-A0003-001)
// of the Taiwanese Central Weather Bureau open data API.
package cwb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wneessen/weathercard/internal/http"
	"github.com/wneessen/weathercard/internal/weather"
)

const (
	name = "cwb"

	// DefaultEndpoint is the current observation dataset of the CWB open data API
	DefaultEndpoint = "https://opendata.cwb.gov.tw/api/v1/rest/datastore/O-A0003-001"

	obsTimeLayout = "2006-01-02 15:04:05"
)

var (
	ErrMissingAPIKey   = errors.New("CWB API key is required")
	ErrMissingLocation = errors.New("location name is required")

	// Observation times are reported in Taiwan local time, which has no DST.
	taipei = time.FixedZone("CST", 8*60*60)
)

// Elements holds the upstream element tags that are picked from the weatherElement list.
// RainPossibility is optional, the dataset does not provide it by default.
type Elements struct {
	WindSpeed       string
	Temperature     string
	Description     string
	RainPossibility string
}

// DefaultElements returns the element tags used by the O-A0003-001 dataset.
func DefaultElements() Elements {
	return Elements{
		WindSpeed:   "WDSD",
		Temperature: "TEMP",
		Description: "Weather",
	}
}

// Options configures a CWB provider.
type Options struct {
	Endpoint     string
	APIKey       string
	LocationName string
	Elements     Elements
	Timeout      time.Duration
}

type CWB struct {
	endpoint string
	apikey   string
	location string
	elements Elements
	timeout  time.Duration
	http     *http.Client
}

type response struct {
	Success string   `json:"success"`
	Records *records `json:"records"`
}

type records struct {
	Location []location `json:"location"`
}

type location struct {
	Latitude     json.RawMessage `json:"lat"`
	Longitude    json.RawMessage `json:"lon"`
	LocationName string          `json:"locationName"`
	StationID    string          `json:"stationId"`
	Time         struct {
		ObsTime string `json:"obsTime"`
	} `json:"time"`
	WeatherElement []element `json:"weatherElement"`
}

type element struct {
	ElementName  string          `json:"elementName"`
	ElementValue json.RawMessage `json:"elementValue"`
}

// value is a scalar element value. Upstream sends it either as a JSON string or as a JSON
// number.
type value string

func New(client *http.Client, opts Options) (*CWB, error) {
	if client == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if opts.LocationName == "" {
		return nil, ErrMissingLocation
	}

	provider := &CWB{
		endpoint: opts.Endpoint,
		apikey:   opts.APIKey,
		location: opts.LocationName,
		elements: opts.Elements,
		timeout:  opts.Timeout,
		http:     client,
	}
	defaults := DefaultElements()
	if provider.endpoint == "" {
		provider.endpoint = DefaultEndpoint
	}
	if provider.elements.WindSpeed == "" {
		provider.elements.WindSpeed = defaults.WindSpeed
	}
	if provider.elements.Temperature == "" {
		provider.elements.Temperature = defaults.Temperature
	}
	if provider.elements.Description == "" {
		provider.elements.Description = defaults.Description
	}
	if provider.timeout <= 0 {
		provider.timeout = http.DefaultTimeout
	}

	return provider, nil
}

func (c *CWB) Name() string {
	return name
}

// GetReading fetches the current observation for the configured location.
func (c *CWB) GetReading(ctx context.Context) (*weather.Reading, error) {
	return c.FetchCurrentWeather(ctx, c.location, c.apikey)
}

// FetchCurrentWeather performs exactly one request against the observation endpoint and
// normalizes the first location entry of the response into a weather.Reading. Failures are
// returned as *weather.FetchError.
func (c *CWB) FetchCurrentWeather(ctx context.Context, locationName, apiKey string) (*weather.Reading, error) {
	if locationName == "" {
		return nil, ErrMissingLocation
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	query := url.Values{}
	query.Set("Authorization", apiKey)
	query.Set("locationName", locationName)
	headers := map[string]string{"Accept": "application/json"}

	res := new(response)
	code, err := c.http.GetWithTimeout(ctx, c.endpoint, res, query, headers, c.timeout)
	if err != nil {
		return nil, classify(code, err)
	}

	return c.normalize(res)
}

// normalize picks the recognized elements of the first location entry. When a tag occurs
// more than once, the last occurrence wins.
func (c *CWB) normalize(res *response) (*weather.Reading, error) {
	if res.Records == nil {
		return nil, weather.NewFetchError(weather.ErrDecode, errors.New("response has no records field"))
	}
	if len(res.Records.Location) == 0 {
		return nil, weather.NewFetchError(weather.ErrDataAbsent, errors.New("response has no location entry"))
	}
	loc := res.Records.Location[0]
	if loc.WeatherElement == nil {
		return nil, weather.NewFetchError(weather.ErrDataAbsent,
			fmt.Errorf("location %q has no weatherElement list", loc.LocationName))
	}

	// Only values of recognized tags are parsed, unknown tags may carry any JSON type
	raw := make(map[string]json.RawMessage)
	for _, elem := range loc.WeatherElement {
		if c.recognized(elem.ElementName) {
			raw[elem.ElementName] = elem.ElementValue
		}
	}
	values := make(map[string]value, len(raw))
	for tag, rawValue := range raw {
		val, err := parseValue(rawValue)
		if err != nil {
			return nil, weather.NewFetchError(weather.ErrDecode, fmt.Errorf("element %s: %w", tag, err))
		}
		values[tag] = val
	}

	reading := &weather.Reading{
		LocationName:    loc.LocationName,
		StationID:       loc.StationID,
		ObservationTime: loc.Time.ObsTime,
	}
	if obsTime, err := time.ParseInLocation(obsTimeLayout, loc.Time.ObsTime, taipei); err == nil {
		reading.ObservedAt = obsTime
	}
	// Coordinates are optional, malformed ones are dropped
	if lat, ok := coordinate(loc.Latitude); ok {
		reading.Latitude = lat
	}
	if lon, ok := coordinate(loc.Longitude); ok {
		reading.Longitude = lon
	}

	if val, ok := values[c.elements.Description]; ok && !val.missing() {
		reading.Description.Set(string(val))
	}
	numeric := []struct {
		tag string
		set func(float64)
	}{
		{c.elements.Temperature, reading.Temperature.Set},
		{c.elements.WindSpeed, reading.WindSpeed.Set},
		{c.elements.RainPossibility, func(v float64) { reading.RainPossibility.Set(clampPercent(v)) }},
	}
	for _, field := range numeric {
		if field.tag == "" {
			continue
		}
		val, ok := values[field.tag]
		if !ok {
			continue
		}
		num, isSet, err := val.float()
		if err != nil {
			return nil, weather.NewFetchError(weather.ErrDecode,
				fmt.Errorf("element %s has a non-numeric value %q: %w", field.tag, string(val), err))
		}
		if isSet {
			field.set(num)
		}
	}

	return reading, nil
}

func (c *CWB) recognized(tag string) bool {
	switch tag {
	case "":
		return false
	case c.elements.WindSpeed, c.elements.Temperature, c.elements.Description, c.elements.RainPossibility:
		return true
	default:
		return false
	}
}

// classify maps HTTP client errors to the weather fetch error kinds.
func classify(code int, err error) error {
	switch {
	case errors.Is(err, http.ErrUnexpectedStatus):
		return &weather.FetchError{Kind: weather.ErrHTTPStatus, StatusCode: code, Err: err}
	case errors.Is(err, http.ErrDecodeJSON):
		return weather.NewFetchError(weather.ErrDecode, err)
	default:
		return weather.NewFetchError(weather.ErrNetwork, err)
	}
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// parseValue converts a raw element value into a value. Strings and numbers are accepted,
// null and an absent value yield an empty value. Any other JSON type is an error.
func parseValue(raw json.RawMessage) (value, error) {
	trimmed := strings.TrimSpace(string(raw))
	switch {
	case trimmed == "", trimmed == "null":
		return "", nil
	case trimmed[0] == '"':
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return "", fmt.Errorf("invalid element value %s: %w", trimmed, err)
		}
		return value(str), nil
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
		return "", fmt.Errorf("element value %s is neither a string nor a number", trimmed)
	}
	return value(trimmed), nil
}

func coordinate(raw json.RawMessage) (float64, bool) {
	val, err := parseValue(raw)
	if err != nil {
		return 0, false
	}
	num, ok, err := val.float()
	if err != nil || !ok {
		return 0, false
	}
	return num, true
}

// missing reports whether the upstream marked the value as not available. The dataset uses
// negative sentinel numbers and "X" for stations that could not measure a value.
func (v value) missing() bool {
	switch strings.TrimSpace(string(v)) {
	case "", "X", "-99", "-99.0", "-98", "-98.0", "-999", "-999.0", "-9999", "-9999.0":
		return true
	default:
		return false
	}
}

// float converts the value into a float64. It returns false without an error if the value
// is missing.
func (v value) float() (float64, bool, error) {
	if v.missing() {
		return 0, false, nil
	}
	num, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
	if err != nil {
		return 0, false, err
	}
	return num, true, nil
}
