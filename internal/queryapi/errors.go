// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package queryapi

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrMalformedResponse matches any *MalformedResponseError via errors.Is.
var ErrMalformedResponse = errors.New("malformed response")

// TransportError indicates the request never produced an HTTP response
// (connection refused, DNS failure, timeout).
type TransportError struct {
	Err error
}

// Error returns the underlying transport message unchanged.
func (e *TransportError) Error() string {
	if e.Err == nil {
		return "transport failure"
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServiceError indicates the service answered with a non-2xx status.
type ServiceError struct {
	Status int

	// Body holds the start of the response body for logging only.
	Body string
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// MalformedResponseError indicates a 2xx response whose payload does not
// have the expected shape.
type MalformedResponseError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return "malformed response: " + e.Reason
}

// Unwrap returns the underlying decode error, if any.
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMalformedResponse.
func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// Kind names the failure class of an error returned by the client.
type Kind string

const (
	KindNone      Kind = ""
	KindTransport Kind = "transport"
	KindService   Kind = "service"
	KindMalformed Kind = "malformed"
	KindUnknown   Kind = "unknown"
)

// KindOf classifies err into one of the client's failure classes.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var transportErr *TransportError
	var serviceErr *ServiceError
	switch {
	case errors.As(err, &serviceErr):
		return KindService
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformed
	case errors.As(err, &transportErr):
		return KindTransport
	default:
		return KindUnknown
	}
}

// IsServiceError returns the status code if err is a *ServiceError.
func IsServiceError(err error) (int, bool) {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Status, true
	}
	return 0, false
}
