package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/wrapforge/internal/chat"
)

type chatRequest struct {
	WrapperID      int64  `json:"wrapperId"`
	Message        string `json:"message"`
	ConversationID int64  `json:"conversationId"`
}

func (s *Server) postChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.WrapperID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "wrapperId is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}

	resp, err := s.chat.Send(c.Request().Context(), chat.Request{
		WrapperID:      req.WrapperID,
		Message:        req.Message,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		if errors.Is(err, chat.ErrWrapperNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Wrapper not found")
		}
		// Upstream detail stays in the log; the caller gets a generic failure.
		log.Error().Err(err).Int64("wrapper_id", req.WrapperID).Msg("chat request failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process chat message")
	}
	return c.JSON(http.StatusOK, resp)
}
