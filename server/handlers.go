package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	af "github.com/sriaradhyula/simple-ai-agent/agentframework"
)

// QuestionRequest is the body of POST /question.
type QuestionRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

// HistoryMessage is one stored message as returned by
// GET /sessions/:id/messages.
type HistoryMessage struct {
	Role       string        `json:"role"`
	Text       string        `json:"text,omitempty"`
	ToolCalls  []HistoryCall `json:"tool_calls,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
}

// HistoryCall is a tool call requested by the assistant.
type HistoryCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// HistoryResponse is the body of GET /sessions/:id/messages.
type HistoryResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []HistoryMessage `json:"messages"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleQuestion runs the agent on a question and returns the final answer
// as a JSON string.
func (s *Server) handleQuestion(c *fiber.Ctx) error {
	var req QuestionRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return writeError(c, fiber.StatusBadRequest, KindInvalidRequest, "request body must be a JSON object with a question field")
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return writeError(c, fiber.StatusBadRequest, KindInvalidRequest, "question is required")
	}
	if n := utf8.RuneCountInString(question); s.config.MaxQuestionLength > 0 && n > s.config.MaxQuestionLength {
		return writeError(c, fiber.StatusBadRequest, KindInvalidRequest,
			fmt.Sprintf("question is %d characters long; the limit is %d", n, s.config.MaxQuestionLength))
	}

	var session *af.Session
	switch {
	case req.SessionID != "":
		var ok bool
		if session, ok = s.sessions.Get(req.SessionID); !ok {
			return writeError(c, fiber.StatusNotFound, KindSessionNotFound, fmt.Sprintf("session %q not found", req.SessionID))
		}
	case s.config.SharedSession:
		session = s.sessions.Shared()
	default:
		session = s.sessions.Create()
	}
	c.Set("X-Session-ID", session.ID())

	ctx := c.UserContext()
	if s.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RequestTimeout)
		defer cancel()
	}

	resp, err := s.agent.Run(ctx, []af.Message{af.NewUserMessage(question)}, af.WithSession(session))
	if err != nil {
		status, kind := classify(err)
		s.logger.ErrorContext(ctx, "agent run failed",
			"session_id", session.ID(),
			"kind", kind,
			"error", err,
		)
		return writeError(c, status, kind, err.Error())
	}

	return c.JSON(resp.Text())
}

func (s *Server) handleSessionMessages(c *fiber.Ctx) error {
	id := c.Params("id")
	session, ok := s.sessions.Get(id)
	if !ok {
		return writeError(c, fiber.StatusNotFound, KindSessionNotFound, fmt.Sprintf("session %q not found", id))
	}

	msgs, err := session.Messages(c.UserContext())
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, KindInternal, err.Error())
	}

	out := HistoryResponse{SessionID: id, Messages: make([]HistoryMessage, 0, len(msgs))}
	for _, m := range msgs {
		out.Messages = append(out.Messages, historyMessage(m))
	}
	return c.JSON(out)
}

func historyMessage(m af.Message) HistoryMessage {
	h := HistoryMessage{Role: string(m.Role), Text: m.Text()}
	for _, fc := range m.FunctionCalls() {
		h.ToolCalls = append(h.ToolCalls, HistoryCall{ID: fc.CallID, Name: fc.Name, Arguments: fc.Arguments})
	}
	for _, fr := range m.FunctionResults() {
		h.ToolCallID = fr.CallID
		if h.Text == "" {
			h.Text = fmt.Sprint(fr.Result)
		}
	}
	return h
}
