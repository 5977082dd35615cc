// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"errors"
	"fmt"
	"net/http"
)

// Error trees, matched with errors.Is. Each sentinel wraps its parent, so
// errors.Is(ErrNotConverged, ErrAgent) holds.
var (
	ErrAgent        = errors.New("agent error")
	ErrExecution    = fmt.Errorf("%w: execution", ErrAgent)
	ErrNotConverged = fmt.Errorf("%w: agent did not converge", ErrExecution)
	ErrSession      = fmt.Errorf("%w: session", ErrAgent)
)

// LLM backend failures.
var (
	ErrService         = errors.New("service error")
	ErrContentFilter   = fmt.Errorf("%w: content filter", ErrService)
	ErrInvalidRequest  = fmt.Errorf("%w: invalid request", ErrService)
	ErrInvalidResponse = fmt.Errorf("%w: invalid response", ErrService)
	ErrRateLimited     = fmt.Errorf("%w: rate limited", ErrService)
	ErrAuth            = fmt.Errorf("%w: authentication", ErrService)
)

// Tool failures. Execution and argument errors are reported back to the
// model; ErrToolTransport aborts the run.
var (
	ErrTool          = errors.New("tool error")
	ErrToolExecution = fmt.Errorf("%w: execution", ErrTool)
	ErrToolArguments = fmt.Errorf("%w: invalid arguments", ErrTool)
	ErrToolTransport = fmt.Errorf("%w: transport", ErrTool)
)

// ServiceError is an HTTP-level failure of the LLM backend. StatusCode is
// zero when no response was received.
type ServiceError struct {
	StatusCode int
	Message    string
	Code       string
	Err        error
}

func (e *ServiceError) Error() string {
	switch {
	case e.StatusCode == 0:
		return "service error: " + e.Message
	case e.Code != "":
		return fmt.Sprintf("service error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	default:
		return fmt.Sprintf("service error %d: %s", e.StatusCode, e.Message)
	}
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Retryable reports whether the same request may succeed later: throttling
// and server-side failures.
func (e *ServiceError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// ToolError identifies the tool that failed.
type ToolError struct {
	ToolName string
	Message  string
	Err      error
}

func (e *ToolError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("tool %q: %s", e.ToolName, msg)
}

func (e *ToolError) Unwrap() error { return e.Err }
