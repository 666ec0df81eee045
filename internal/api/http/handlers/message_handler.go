package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tracker-bot/internal/api/dto"
	"github.com/spec-kit/tracker-bot/internal/bot"
	apperrors "github.com/spec-kit/tracker-bot/pkg/util"
)

// MessagesHandler receives chat events from gateways and returns replies.
type MessagesHandler struct {
	engine *bot.Engine
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(engine *bot.Engine) *MessagesHandler {
	return &MessagesHandler{engine: engine}
}

// Post handles POST /v1/messages.
func (h *MessagesHandler) Post(c *fiber.Ctx) error {
	var req dto.IncomingMessage
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.User) == "" || strings.TrimSpace(req.Channel) == "" {
		return apperrors.NewValidationError("channel and user required", nil)
	}

	replies := h.engine.HandleMessage(c.UserContext(), bot.Message{
		Channel: req.Channel,
		User:    req.User,
		Text:    req.Text,
	})

	items := make([]dto.ReplyResponse, 0, len(replies))
	for _, r := range replies {
		items = append(items, dto.ReplyResponse{
			Text:    r.Text,
			Private: r.Private,
			Action:  r.Action,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
