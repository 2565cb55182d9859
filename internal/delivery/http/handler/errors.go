package handler

import (
	"errors"
	"strconv"

	"parttime-match/internal/delivery/http/middleware"
	"parttime-match/internal/domain/match"
	"parttime-match/internal/pkg/response"
	"parttime-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

func mapUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, err)
	case errors.Is(err, usecase.ErrNotFound), errors.Is(err, match.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Not found", nil, err)
	case errors.Is(err, usecase.ErrInvalidTransition):
		return middleware.NewAppError(fiber.StatusConflict, "Invalid status transition", nil, err)
	case errors.Is(err, usecase.ErrStorageConflict):
		return middleware.NewAppError(fiber.StatusConflict, "Match was updated concurrently, retry", nil, err)
	case errors.Is(err, usecase.ErrAlreadyExists):
		return middleware.NewAppError(fiber.StatusConflict, "Already exists", nil, err)
	case errors.Is(err, usecase.ErrPostClosed):
		return middleware.NewAppError(fiber.StatusConflict, "Post is closed", nil, err)
	case errors.Is(err, usecase.ErrIncompleteProfile):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Profile incomplete", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

func actorOrUnauthorized(c fiber.Ctx) (match.Actor, error) {
	actor, ok := middleware.ActorFromCtx(c)
	if !ok {
		return match.Actor{}, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	return actor, nil
}

func parseUUIDParam(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+name, nil, err)
	}
	return id, nil
}

func parseQueryInt(c fiber.Ctx, key string, defaultVal int) int {
	s := c.Query(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
