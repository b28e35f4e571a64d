package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/wrapforge/internal/storage"
	"github.com/wrapforge/internal/validate"
)

func (s *Server) createUser(c echo.Context) error {
	in, verr := validate.UserCreate(c.Request().Body)
	if verr != nil {
		return validationFailed(c, verr)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}

	user, err := s.store.CreateUser(c.Request().Context(), storage.NewUser{
		Username:     in.Username,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			return echo.NewHTTPError(http.StatusConflict, "Username already taken")
		}
		log.Error().Err(err).Msg("failed to create user")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}
	return c.JSON(http.StatusCreated, user)
}

func (s *Server) getUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	user, err := s.store.GetUser(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		log.Error().Err(err).Int64("user_id", id).Msg("failed to get user")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get user")
	}
	return c.JSON(http.StatusOK, user)
}
