// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
)

// =============================================================================
// TRANSPORT ERROR CLASSIFICATION
// =============================================================================

// ErrorClass buckets a transport failure for user-facing display.
type ErrorClass int

const (
	// ClassGeneric - unclassified transport or model failure
	ClassGeneric ErrorClass = iota

	// ClassAuth - the endpoint rejected our credentials
	ClassAuth

	// ClassRateLimit - the endpoint is throttling us
	ClassRateLimit

	// ClassNetwork - connection-level failure, endpoint unreachable
	ClassNetwork
)

// String returns the string representation of the class.
func (c ErrorClass) String() string {
	switch c {
	case ClassAuth:
		return "auth"
	case ClassRateLimit:
		return "rate-limit"
	case ClassNetwork:
		return "network"
	default:
		return "generic"
	}
}

// Hint returns a short, user-facing description for the class.
func (c ErrorClass) Hint() string {
	switch c {
	case ClassAuth:
		return "Authentication failed. Check your API key."
	case ClassRateLimit:
		return "Rate limited. Wait a moment and resend."
	case ClassNetwork:
		return "Cannot reach the assistant endpoint."
	default:
		return "The assistant request failed. Try resending."
	}
}

// TransportError is a classified chat transport failure. Prior messages
// stay intact; the user may recover by resending.
type TransportError struct {
	Class   ErrorClass
	Status  int
	Message string
	cause   error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return "transport (" + e.Class.String() + "): " + e.Message
}

// Unwrap exposes the underlying error so callers can still match
// sentinels like context.Canceled through errors.Is.
func (e *TransportError) Unwrap() error {
	return e.cause
}

// ClassifyStatus builds a TransportError from a non-2xx HTTP response.
func ClassifyStatus(status int, body string) *TransportError {
	class := ClassGeneric
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		class = ClassAuth
	case status == http.StatusTooManyRequests:
		class = ClassRateLimit
	case status >= 500:
		class = ClassNetwork
	}
	msg := strings.TrimSpace(body)
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &TransportError{Class: class, Status: status, Message: msg}
}

// ClassifyErr wraps a connection-level error as a TransportError.
// Already-classified errors pass through unchanged.
func ClassifyErr(err error) *TransportError {
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}

	class := ClassGeneric
	var netErr net.Error
	switch {
	case errors.As(err, &netErr):
		class = ClassNetwork
	case errors.Is(err, context.DeadlineExceeded):
		class = ClassNetwork
	}
	return &TransportError{Class: class, Message: err.Error(), cause: err}
}
