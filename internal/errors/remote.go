package errors

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// MapTransportError maps errors from an outbound API call to AppError instances.
// It handles common transport failure patterns:
// - context.DeadlineExceeded and net timeouts → Timeout
// - context.Canceled → Canceled
// - any other transport error → Unavailable
//
// Errors that are already AppErrors are returned unchanged.
func MapTransportError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{
			Code:    ErrCodeTimeout,
			Message: "Request timed out. Please try again.",
			Cause:   err,
		}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{
			Code:    ErrCodeCanceled,
			Message: "Request was canceled.",
			Cause:   err,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &AppError{
			Code:    ErrCodeTimeout,
			Message: "Request timed out. Please try again.",
			Cause:   err,
		}
	}

	return &AppError{
		Code:    ErrCodeUnavailable,
		Message: "The study tracker service is unreachable.",
		Cause:   err,
	}
}

// StatusParams groups the inputs for MapStatus.
type StatusParams struct {
	Status int
	// Login selects login semantics: 400/401 mean wrong email or password.
	Login bool
	// Detail is the server-provided message, if any.
	Detail string
}

// MapStatus maps a non-2xx API status to an AppError.
// Returns nil for 2xx statuses.
func MapStatus(p StatusParams) error {
	if p.Status >= 200 && p.Status < 300 {
		return nil
	}

	msg := p.Detail
	switch {
	case p.Login && (p.Status == http.StatusBadRequest || p.Status == http.StatusUnauthorized):
		if msg == "" {
			msg = "Invalid email or password."
		}
		return InvalidCredentials(msg)
	case p.Status == http.StatusUnauthorized || p.Status == http.StatusForbidden:
		if msg == "" {
			msg = "Your session is no longer valid."
		}
		return Unauthorized(msg)
	case p.Status == http.StatusNotFound:
		if msg == "" {
			msg = "Resource not found"
		}
		return NotFound(msg)
	case p.Status == http.StatusRequestTimeout || p.Status == http.StatusGatewayTimeout:
		return &AppError{Code: ErrCodeTimeout, Message: "Request timed out. Please try again."}
	default:
		return Unavailablef("The study tracker service answered %d %s.", p.Status, http.StatusText(p.Status))
	}
}

// IsTransient reports whether err should leave the stored credential untouched.
// Timeouts and cancellations count as transient.
func IsTransient(err error) bool {
	return IsUnavailable(err) || IsTimeout(err) || IsCanceled(err)
}
