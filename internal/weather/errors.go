// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package weather

import (
	"errors"
	"fmt"
)

// Fetch error kinds. Every FetchError carries exactly one of them.
var (
	ErrNetwork    = errors.New("network error")
	ErrHTTPStatus = errors.New("unexpected HTTP status")
	ErrDecode     = errors.New("malformed response")
	ErrDataAbsent = errors.New("observation data absent")
)

// FetchError describes a failed observation fetch. It matches its Kind and its
// underlying cause with errors.Is.
type FetchError struct {
	Kind       error
	StatusCode int
	Err        error
}

// NewFetchError returns a FetchError of the given kind wrapping err.
func NewFetchError(kind, err error) *FetchError {
	return &FetchError{Kind: kind, Err: err}
}

func (e *FetchError) Error() string {
	if e.Kind == ErrHTTPStatus {
		return fmt.Sprintf("%s %d: %s", e.Kind, e.StatusCode, e.Err)
	}
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
