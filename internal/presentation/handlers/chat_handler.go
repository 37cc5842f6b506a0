package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"saham-assistant/internal/application/dto"
	"saham-assistant/internal/application/services"
	"saham-assistant/internal/domain/entities"
	"saham-assistant/internal/infrastructure/logger"
	"saham-assistant/internal/presentation/middleware"
)

// ChatHandler serves the chat endpoints.
type ChatHandler struct {
	chatService     services.ChatService
	glossaryService services.GlossaryService
	logger          logger.Logger
}

// NewChatHandler creates the chat handler.
func NewChatHandler(chatService services.ChatService, glossaryService services.GlossaryService, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatService:     chatService,
		glossaryService: glossaryService,
		logger:          log,
	}
}

// Chat handles POST /api/v1/chat. With stream=true the upstream SSE body is
// relayed as-is; otherwise the reply is returned with glossary annotations.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse("INVALID_REQUEST", "Invalid request body", err.Error()))
		return
	}

	userID := c.GetString(middleware.UserIDKey)

	if req.Stream {
		h.streamChat(c, userID, &req)
		return
	}

	response, err := h.chatService.Chat(c.Request.Context(), userID, &req)
	if err != nil {
		h.respondChatError(c, err)
		return
	}

	terms := h.glossaryService.DetectTerms(c.Request.Context(), response.Reply)
	payload := gin.H{
		"chat":  response,
		"terms": detectedTermDTOs(terms),
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(payload, "Chat completed"))
}

// ChatStream handles POST /api/v1/chat/stream. The stream flag in the body is
// ignored; this endpoint always relays SSE.
func (h *ChatHandler) ChatStream(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse("INVALID_REQUEST", "Invalid request body", err.Error()))
		return
	}

	h.streamChat(c, c.GetString(middleware.UserIDKey), &req)
}

// streamChat relays the provider's SSE bytes without decoding them.
func (h *ChatHandler) streamChat(c *gin.Context, userID string, req *dto.ChatRequest) {
	stream, sessionID, err := h.chatService.ChatStream(c.Request.Context(), userID, req)
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	defer stream.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Session-ID", sessionID)

	buf := make([]byte, 4096)
	for {
		n, readErr := stream.Read(buf)
		if n > 0 {
			if _, writeErr := c.Writer.Write(buf[:n]); writeErr != nil {
				return
			}
			c.Writer.Flush()
		}
		if readErr != nil {
			if readErr != io.EOF {
				h.logger.WithField("error", readErr.Error()).Warn("stream relay interrupted")
			}
			return
		}
	}
}

// ListSessions handles GET /api/v1/chat/sessions.
func (h *ChatHandler) ListSessions(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	sessions, err := h.chatService.ListSessions(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("failed to list sessions")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse("INTERNAL_ERROR", "Failed to list sessions", nil))
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(sessions, "Sessions retrieved"))
}

// GetSessionMessages handles GET /api/v1/chat/sessions/:id/messages.
func (h *ChatHandler) GetSessionMessages(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	messages, err := h.chatService.GetSessionMessages(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, entities.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse("NOT_FOUND", "Session not found", nil))
			return
		}
		h.logger.WithField("error", err.Error()).Error("failed to load session messages")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse("INTERNAL_ERROR", "Failed to load messages", nil))
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(messages, "Messages retrieved"))
}

// GetProfile handles GET /api/v1/profile.
func (h *ChatHandler) GetProfile(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	profile, err := h.chatService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("failed to load profile")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse("INTERNAL_ERROR", "Failed to load profile", nil))
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse(profile, "Profile retrieved"))
}

// respondChatError maps service failures to HTTP statuses.
func (h *ChatHandler) respondChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrDailyLimitReached):
		c.JSON(http.StatusTooManyRequests, dto.ErrorResponse("LIMIT_REACHED", "Daily chat limit reached", nil))
	case errors.Is(err, entities.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse("NOT_FOUND", "Session not found", nil))
	case entities.IsConfigurationError(err):
		h.logger.WithField("error", err.Error()).Error("gateway misconfigured")
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse("NO_PROVIDER", "AI service is not configured", nil))
	case entities.IsTimeoutError(err):
		c.JSON(http.StatusGatewayTimeout, dto.ErrorResponse("UPSTREAM_TIMEOUT", "AI provider timed out", nil))
	case entities.IsUpstreamError(err):
		h.logger.WithField("error", err.Error()).Error("upstream chat failure")
		c.JSON(http.StatusBadGateway, dto.ErrorResponse("UPSTREAM_ERROR", "AI provider request failed", nil))
	default:
		h.logger.WithField("error", err.Error()).Error("chat failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse("INTERNAL_ERROR", "Chat failed", nil))
	}
}

func detectedTermDTOs(terms []*entities.GlossaryTerm) []dto.DetectedTerm {
	result := make([]dto.DetectedTerm, 0, len(terms))
	for _, term := range terms {
		result = append(result, dto.DetectedTerm{
			Term:       term.Term,
			Definition: term.Definition,
			Category:   term.Category,
		})
	}
	return result
}
