// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fetcher

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned when the URL string does not parse as an
	// absolute http or https URL.
	ErrInvalidURL = errors.New("invalid image url")
	// ErrDecode is returned when the payload is not a decodable image.
	ErrDecode = errors.New("failed to decode image")
)

// TransportError wraps a failure to complete the HTTP round trip.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch %s: status %d", e.URL, e.StatusCode)
}
