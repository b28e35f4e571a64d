package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/wrapforge/internal/storage"
	"github.com/wrapforge/internal/validate"
)

func (s *Server) getWrapperPrompts(c echo.Context) error {
	wrapperID, err := parseID(c, "wrapperId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid wrapper ID")
	}

	prompts, err := s.store.ListPromptsByWrapper(c.Request().Context(), wrapperID)
	if err != nil {
		log.Error().Err(err).Int64("wrapper_id", wrapperID).Msg("failed to list prompts")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list prompts")
	}
	return c.JSON(http.StatusOK, prompts)
}

func (s *Server) createWrapperPrompt(c echo.Context) error {
	wrapperID, err := parseID(c, "wrapperId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid wrapper ID")
	}

	np, verr := validate.PromptCreate(c.Request().Body, wrapperID)
	if verr != nil {
		return validationFailed(c, verr)
	}

	ctx := c.Request().Context()
	if _, err := s.store.GetWrapper(ctx, wrapperID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Wrapper not found")
		}
		log.Error().Err(err).Int64("wrapper_id", wrapperID).Msg("failed to check wrapper")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create prompt")
	}

	prompt, err := s.store.CreatePrompt(ctx, np)
	if err != nil {
		log.Error().Err(err).Int64("wrapper_id", wrapperID).Msg("failed to create prompt")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create prompt")
	}
	return c.JSON(http.StatusCreated, prompt)
}

func (s *Server) updatePrompt(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid prompt ID")
	}

	patch, verr := validate.PromptUpdate(c.Request().Body)
	if verr != nil {
		return validationFailed(c, verr)
	}

	prompt, err := s.store.UpdatePrompt(c.Request().Context(), id, patch)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Prompt not found")
		}
		log.Error().Err(err).Int64("prompt_id", id).Msg("failed to update prompt")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update prompt")
	}
	return c.JSON(http.StatusOK, prompt)
}

func (s *Server) deletePrompt(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid prompt ID")
	}

	if err := s.store.DeletePrompt(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Prompt not found")
		}
		log.Error().Err(err).Int64("prompt_id", id).Msg("failed to delete prompt")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete prompt")
	}
	return c.NoContent(http.StatusNoContent)
}
