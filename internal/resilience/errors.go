// Package resilience classifies fetch failures so the harvest pipeline can
// convert them into retryable or terminal record states.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// Kind is the retry classification of a failure.
type Kind string

const (
	// KindTransient failures are re-attempted by the comb loop.
	KindTransient Kind = "retryable"
	// KindTerminal failures are never retried.
	KindTerminal Kind = "terminal"
)

// Terminal tags attached to failures that will never be retried.
const (
	TagNotFound     = "NOT_FOUND"
	TagMalformedRef = "MALFORMED_REF"
	TagUnparseable  = "UNPARSEABLE"
	TagNoReference  = "NO_REFERENCE"
)

// ErrTerminal is matched by every TerminalError.
var ErrTerminal = errors.New("terminal failure")

// StatusError is returned when a remote host answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d from %s", e.StatusCode, e.URL)
}

// NewStatusError builds a StatusError for the given response code and URL.
func NewStatusError(statusCode int, url string) *StatusError {
	return &StatusError{StatusCode: statusCode, URL: url}
}

// TerminalError marks a failure that retrying cannot fix.
type TerminalError struct {
	Tag string
	Err error
}

func (e *TerminalError) Error() string {
	if e.Err == nil {
		return strings.ToLower(e.Tag)
	}
	return fmt.Sprintf("%s: %v", strings.ToLower(e.Tag), e.Err)
}

func (e *TerminalError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrTerminal) match any TerminalError.
func (e *TerminalError) Is(target error) bool {
	return target == ErrTerminal
}

// NewTerminalError wraps err as terminal with the given tag.
func NewTerminalError(tag string, err error) *TerminalError {
	return &TerminalError{Tag: tag, Err: err}
}

// Classify returns the retry classification of err together with the tag
// describing a terminal failure. A 503 response is terminal (NOT_FOUND):
// the remote host answers 503 for pages that do not exist, so retrying it
// would never converge. Errors matching ErrTerminal without a tag are
// UNPARSEABLE. Every other HTTP status and any network-level failure is
// transient.
func Classify(err error) (Kind, string) {
	if err == nil {
		return "", ""
	}

	if errors.Is(err, ErrTerminal) {
		var te *TerminalError
		if errors.As(err, &te) {
			return KindTerminal, te.Tag
		}
		return KindTerminal, TagUnparseable
	}

	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusServiceUnavailable {
		return KindTerminal, TagNotFound
	}

	return KindTransient, ""
}

// StatusCode extracts the HTTP status from err, or 0 when no response was received.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Causes reported by Cause.
const (
	CauseTerminal  = "terminal"
	CauseStatus    = "status"
	CauseNetwork   = "network"
	CauseCancelled = "cancelled"
	CauseOther     = "other"
)

// Cause names where a failure came from. A request cut off by context
// cancellation is reported as cancelled, not as a network failure.
func Cause(err error) string {
	switch {
	case errors.Is(err, ErrTerminal):
		return CauseTerminal
	case StatusCode(err) != 0:
		return CauseStatus
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CauseCancelled
	case IsNetworkError(err):
		return CauseNetwork
	default:
		return CauseOther
	}
}

// IsNetworkError reports whether err happened before a complete response
// was received: timeouts, resets, refused connections, DNS failures and
// truncated bodies. Context cancellation is not a network error.
func IsNetworkError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE)
}
