package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"portfoliochat/internal/chat"
	"portfoliochat/internal/core"
	"portfoliochat/internal/fallback"
	"portfoliochat/internal/ratelimit"
)

const msgUnexpected = "An unexpected error occurred. Please try again."

var errTrailingData = errors.New("unexpected data after JSON body")

// ChatService handles one chat turn.
type ChatService interface {
	Handle(ctx context.Context, clientKey string, req *chat.Request) (*chat.Response, error)
	Configured() bool
	Model() string
	UpstreamState() string
}

// StatusResponse describes the chat endpoint.
type StatusResponse struct {
	Status   string         `json:"status"`
	Model    string         `json:"model"`
	Features []string       `json:"features"`
	Upstream UpstreamStatus `json:"upstream"`
}

// UpstreamStatus reports whether the upstream can be called.
type UpstreamStatus struct {
	Configured bool   `json:"configured"`
	Circuit    string `json:"circuit"`
}

// FallbackRequest is the body of POST /api/chat/fallback.
type FallbackRequest struct {
	Message string `json:"message"`
}

// FallbackResponse carries the keyword bot's answer.
type FallbackResponse struct {
	Response string `json:"response"`
}

const statusRunning = "Portfolio AI Chat API is running"

var chatFeatures = []string{"RAG-based responses", "Conversation history", "Rate limiting"}

// Handler holds the HTTP handlers
type Handler struct {
	chat            ChatService
	bot             *fallback.Bot
	forwardedHeader string
	logger          *slog.Logger
}

// NewHandler creates a new handler
func NewHandler(svc ChatService, bot *fallback.Bot, forwardedHeader string, logger *slog.Logger) *Handler {
	if bot == nil {
		bot = fallback.NewDefault()
	}
	if forwardedHeader == "" {
		forwardedHeader = echo.HeaderXForwardedFor
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		chat:            svc,
		bot:             bot,
		forwardedHeader: forwardedHeader,
		logger:          logger,
	}
}

// Chat handles POST /api/chat
func (h *Handler) Chat(c echo.Context) error {
	// Without a credential the body is never read; Handle reports the
	// missing key before anything else.
	var req *chat.Request
	if h.chat.Configured() {
		req = &chat.Request{}
		if err := decodeBody(c.Request().Body, req); err != nil {
			return h.handleDecodeError(c, err)
		}
	}

	clientKey := ratelimit.ClientKey(c.Request().Header.Get(h.forwardedHeader))
	ctx := core.WithClientKey(c.Request().Context(), clientKey)
	c.SetRequest(c.Request().WithContext(ctx))

	resp, err := h.chat.Handle(ctx, clientKey, req)
	if err != nil {
		return h.handleChatError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Status handles GET /api/chat
func (h *Handler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{
		Status:   statusRunning,
		Model:    h.chat.Model(),
		Features: chatFeatures,
		Upstream: UpstreamStatus{
			Configured: h.chat.Configured(),
			Circuit:    h.chat.UpstreamState(),
		},
	})
}

// Fallback handles POST /api/chat/fallback
func (h *Handler) Fallback(c echo.Context) error {
	var req FallbackRequest
	if err := decodeBody(c.Request().Body, &req); err != nil {
		return h.handleDecodeError(c, err)
	}
	rule, reply := h.bot.Reply(req.Message)
	h.logger.Debug("fallback reply",
		"rule", rule,
		"request_id", core.GetRequestID(c.Request().Context()),
	)
	return c.JSON(http.StatusOK, FallbackResponse{Response: reply})
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleChatError(c echo.Context, err error) error {
	var gatewayErr *core.GatewayError
	if !errors.As(err, &gatewayErr) {
		h.logger.Error("chat request failed",
			"error", err,
			"request_id", core.GetRequestID(c.Request().Context()),
		)
	}
	return handleError(c, err)
}

// handleDecodeError renders a body read failure. Errors raised by the body
// limit keep their own status; anything else is a bad message.
func (h *Handler) handleDecodeError(c echo.Context, err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return handleError(c, core.NewInvalidRequestError(chat.MsgInvalidMessage, err))
}

// decodeBody decodes a single JSON value. An empty body decodes to the zero
// value; anything after the value is rejected.
func decodeBody(body io.Reader, v any) error {
	if body == nil {
		return nil
	}
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return err
		}
		return errTrailingData
	}
	return nil
}

// handleError converts gateway errors to appropriate HTTP responses
func handleError(c echo.Context, err error) error {
	var gatewayErr *core.GatewayError
	if errors.As(err, &gatewayErr) {
		if gatewayErr.Type == core.ErrorTypeRateLimit && gatewayErr.RetryAfter > 0 {
			secs := int(math.Ceil(gatewayErr.RetryAfter.Seconds()))
			c.Response().Header().Set(echo.HeaderRetryAfter, strconv.Itoa(secs))
		}
		return c.JSON(gatewayErr.HTTPStatusCode(), gatewayErr.ToJSON())
	}

	// Fallback for unexpected errors
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": msgUnexpected,
	})
}
