package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/wrapforge/internal/storage"
	"github.com/wrapforge/internal/validate"
)

func validationFailed(c echo.Context, verr *validate.Error) error {
	return c.JSON(http.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"fields": verr.Fields,
	})
}

func (s *Server) getWrappers(c echo.Context) error {
	wrappers, err := s.store.ListWrappers(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list wrappers")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list wrappers")
	}
	return c.JSON(http.StatusOK, wrappers)
}

func (s *Server) getWrapper(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid wrapper ID")
	}

	wrapper, err := s.store.GetWrapper(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Wrapper not found")
		}
		log.Error().Err(err).Int64("wrapper_id", id).Msg("failed to get wrapper")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get wrapper")
	}
	return c.JSON(http.StatusOK, wrapper)
}

func (s *Server) createWrapper(c echo.Context) error {
	// Ownership is forced to the configured demo user; there is no session
	// mechanism standing behind this API.
	nw, verr := validate.WrapperCreate(c.Request().Body, s.demoUserID)
	if verr != nil {
		return validationFailed(c, verr)
	}

	ctx := c.Request().Context()
	if _, err := s.store.GetUser(ctx, s.demoUserID); err != nil {
		log.Error().Err(err).Int64("user_id", s.demoUserID).Msg("wrapper owner missing")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create wrapper")
	}

	wrapper, err := s.store.CreateWrapper(ctx, nw)
	if err != nil {
		log.Error().Err(err).Msg("failed to create wrapper")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create wrapper")
	}
	return c.JSON(http.StatusCreated, wrapper)
}

func (s *Server) updateWrapper(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid wrapper ID")
	}

	patch, verr := validate.WrapperUpdate(c.Request().Body)
	if verr != nil {
		return validationFailed(c, verr)
	}

	wrapper, err := s.store.UpdateWrapper(c.Request().Context(), id, patch)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Wrapper not found")
		}
		log.Error().Err(err).Int64("wrapper_id", id).Msg("failed to update wrapper")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update wrapper")
	}
	return c.JSON(http.StatusOK, wrapper)
}

func (s *Server) deleteWrapper(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid wrapper ID")
	}

	if err := s.store.DeleteWrapper(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Wrapper not found")
		}
		log.Error().Err(err).Int64("wrapper_id", id).Msg("failed to delete wrapper")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete wrapper")
	}
	return c.NoContent(http.StatusNoContent)
}
