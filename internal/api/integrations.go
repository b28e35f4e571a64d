package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/wrapforge/internal/storage"
	"github.com/wrapforge/internal/validate"
)

func (s *Server) getWrapperIntegrations(c echo.Context) error {
	wrapperID, err := parseID(c, "wrapperId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid wrapper ID")
	}

	integrations, err := s.store.ListIntegrationsByWrapper(c.Request().Context(), wrapperID)
	if err != nil {
		log.Error().Err(err).Int64("wrapper_id", wrapperID).Msg("failed to list integrations")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list integrations")
	}
	return c.JSON(http.StatusOK, integrations)
}

func (s *Server) createWrapperIntegration(c echo.Context) error {
	wrapperID, err := parseID(c, "wrapperId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid wrapper ID")
	}

	ni, verr := validate.IntegrationCreate(c.Request().Body, wrapperID)
	if verr != nil {
		return validationFailed(c, verr)
	}

	ctx := c.Request().Context()
	if _, err := s.store.GetWrapper(ctx, wrapperID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Wrapper not found")
		}
		log.Error().Err(err).Int64("wrapper_id", wrapperID).Msg("failed to check wrapper")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create integration")
	}

	integration, err := s.store.CreateIntegration(ctx, ni)
	if err != nil {
		log.Error().Err(err).Int64("wrapper_id", wrapperID).Msg("failed to create integration")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create integration")
	}
	return c.JSON(http.StatusCreated, integration)
}

func (s *Server) updateIntegration(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid integration ID")
	}

	patch, verr := validate.IntegrationUpdate(c.Request().Body)
	if verr != nil {
		return validationFailed(c, verr)
	}

	integration, err := s.store.UpdateIntegration(c.Request().Context(), id, patch)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Integration not found")
		}
		log.Error().Err(err).Int64("integration_id", id).Msg("failed to update integration")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update integration")
	}
	return c.JSON(http.StatusOK, integration)
}

func (s *Server) deleteIntegration(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid integration ID")
	}

	if err := s.store.DeleteIntegration(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Integration not found")
		}
		log.Error().Err(err).Int64("integration_id", id).Msg("failed to delete integration")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete integration")
	}
	return c.NoContent(http.StatusNoContent)
}
