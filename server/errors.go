package server

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	af "github.com/sriaradhyula/simple-ai-agent/agentframework"
)

// Error kinds returned in [ErrorResponse].
const (
	KindInvalidRequest  = "invalid_request"
	KindSessionNotFound = "session_not_found"
	KindLLMUnavailable  = "llm_unavailable"
	KindToolUnavailable = "tool_unavailable"
	KindNotConverged    = "agent_did_not_converge"
	KindTimeout         = "timeout"
	KindAgentFailure    = "agent_failure"
	KindNotFound        = "not_found"
	KindInternal        = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// classify maps an agent run error to an HTTP status and error kind.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, KindTimeout
	case errors.Is(err, af.ErrNotConverged):
		return fiber.StatusLoopDetected, KindNotConverged
	case errors.Is(err, af.ErrToolTransport):
		return fiber.StatusBadGateway, KindToolUnavailable
	case errors.Is(err, af.ErrService):
		return fiber.StatusBadGateway, KindLLMUnavailable
	default:
		return fiber.StatusInternalServerError, KindAgentFailure
	}
}

func writeError(c *fiber.Ctx, status int, kind, message string) error {
	return c.Status(status).JSON(ErrorResponse{Error: kind, Message: message})
}

// errorHandler renders errors that escape a handler, including recovered
// panics, as an [ErrorResponse].
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		kind := KindInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			kind = KindNotFound
		case fiber.StatusBadRequest:
			kind = KindInvalidRequest
		}
		return writeError(c, fe.Code, kind, fe.Message)
	}
	return writeError(c, fiber.StatusInternalServerError, KindInternal, "an unexpected error occurred")
}
