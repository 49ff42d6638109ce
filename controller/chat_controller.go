package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/carcareai/carlo/models"
	"github.com/carcareai/carlo/services"
)

// Fixed user-facing replies. Upstream detail is logged server-side only;
// callers never see a stack trace or a partial answer.
const (
	emptyMessageReply = "Please send a message."
	upstreamReply     = "Sorry, I'm having trouble accessing my memory right now. Please try again."
	unavailableReply  = "The assistant is not configured yet. Please try again later."
)

// ChatController handles the HTTP surface of the chat pipeline. It depends
// on the ChatService to do the actual work.
type ChatController struct {
	chatService services.ChatService
}

// NewChatController creates a controller with its service dependency
// injected from main.
func NewChatController(service services.ChatService) *ChatController {
	return &ChatController{chatService: service}
}

// Chat is the Gin handler for POST /api/chat.
func (c *ChatController) Chat(ctx *gin.Context) {
	var req models.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.ChatResponse{Response: emptyMessageReply})
		return
	}

	answer, err := c.chatService.Chat(ctx.Request.Context(), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage):
			ctx.JSON(http.StatusBadRequest, models.ChatResponse{Response: emptyMessageReply})
		case errors.Is(err, services.ErrServiceUnavailable):
			log.Warn().Err(err).Msg("chat request rejected, service not configured")
			ctx.JSON(http.StatusServiceUnavailable, models.ChatResponse{Response: unavailableReply})
		default:
			log.Error().Err(err).Msg("chat pipeline failed")
			ctx.JSON(http.StatusInternalServerError, models.ChatResponse{Response: upstreamReply})
		}
		return
	}

	ctx.JSON(http.StatusOK, models.ChatResponse{Response: answer})
}
