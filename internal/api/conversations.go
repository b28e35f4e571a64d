package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/wrapforge/internal/storage"
	"github.com/wrapforge/internal/validate"
)

func (s *Server) getWrapperConversations(c echo.Context) error {
	wrapperID, err := parseID(c, "wrapperId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid wrapper ID")
	}

	conversations, err := s.store.ListConversationsByWrapper(c.Request().Context(), wrapperID)
	if err != nil {
		log.Error().Err(err).Int64("wrapper_id", wrapperID).Msg("failed to list conversations")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list conversations")
	}
	return c.JSON(http.StatusOK, conversations)
}

func (s *Server) createWrapperConversation(c echo.Context) error {
	wrapperID, err := parseID(c, "wrapperId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid wrapper ID")
	}

	nc, verr := validate.ConversationCreate(c.Request().Body, wrapperID)
	if verr != nil {
		return validationFailed(c, verr)
	}

	ctx := c.Request().Context()
	if _, err := s.store.GetWrapper(ctx, wrapperID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Wrapper not found")
		}
		log.Error().Err(err).Int64("wrapper_id", wrapperID).Msg("failed to check wrapper")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create conversation")
	}

	conversation, err := s.store.CreateConversation(ctx, nc)
	if err != nil {
		log.Error().Err(err).Int64("wrapper_id", wrapperID).Msg("failed to create conversation")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create conversation")
	}
	return c.JSON(http.StatusCreated, conversation)
}

func (s *Server) getConversation(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid conversation ID")
	}

	conversation, err := s.store.GetConversation(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Conversation not found")
		}
		log.Error().Err(err).Int64("conversation_id", id).Msg("failed to get conversation")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get conversation")
	}
	return c.JSON(http.StatusOK, conversation)
}
