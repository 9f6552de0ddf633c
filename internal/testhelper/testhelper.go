// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package testhelper provides shared helpers for the package tests.
package testhelper

import (
	"fmt"
	"net/http"
	"os"
	"testing"
)

const (
	// TestOnlineAPIURL is a reachable URL used by the integration tests
	TestOnlineAPIURL = "https://opendata.cwb.gov.tw/api/v1/rest/datastore/O-A0003-001"

	integrationEnv = "PERFORM_ONLINE_API_TESTS"
)

// MockRoundTripper is a http.RoundTripper that hands every request to Fn
type MockRoundTripper struct {
	Fn func(*http.Request) (*http.Response, error)
}

// RoundTrip implements the http.RoundTripper interface
func (m MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.Fn(req)
}

// PerformIntegrationTests skips the calling test unless online API tests were requested
func PerformIntegrationTests(t *testing.T) {
	t.Helper()
	if val := os.Getenv(integrationEnv); val != "true" {
		t.Skipf("skipping online API test, set %s=true to run it", integrationEnv)
	}
}

// FileResponder returns a round trip func that serves the given file with the given status code.
// The round trip may run on a goroutine of the HTTP client, so a missing file marks the test as
// failed and is returned as the round trip error.
func FileResponder(t testing.TB, file string, status int) func(*http.Request) (*http.Response, error) {
	t.Helper()
	return func(*http.Request) (*http.Response, error) {
		data, err := os.Open(file)
		if err != nil {
			t.Errorf("failed to open JSON response file: %s", err)
			return nil, fmt.Errorf("failed to open JSON response file: %w", err)
		}
		return &http.Response{
			StatusCode: status,
			Body:       data,
			Header:     make(http.Header),
		}, nil
	}
}
