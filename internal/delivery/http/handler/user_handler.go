package handler

import (
	"errors"

	"parttime-match/internal/delivery/http/dto"
	"parttime-match/internal/delivery/http/middleware"
	"parttime-match/internal/pkg/response"
	"parttime-match/internal/usecase"
	useruc "parttime-match/internal/usecase/user"

	"github.com/gofiber/fiber/v3"
)

type UserHandler struct {
	uc usecase.UserUsecase
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func NewUserHandler(uc usecase.UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

func (h *UserHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/me", h.GetMe)
	r.Put("/me/password", h.ChangePassword)
}

func (h *UserHandler) GetMe(c fiber.Ctx) error {
	actor, err := actorOrUnauthorized(c)
	if err != nil {
		return err
	}

	usr, err := h.uc.GetMe(c.Context(), actor.ID)
	if err != nil {
		return mapUserUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserResponse(usr))
}

func (h *UserHandler) ChangePassword(c fiber.Ctx) error {
	actor, err := actorOrUnauthorized(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	if err := h.uc.ChangePassword(c.Context(), actor.ID, useruc.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}); err != nil {
		return mapUserUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func mapUserUsecaseError(err error) error {
	switch {
	case errors.Is(err, useruc.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	case errors.Is(err, useruc.ErrInvalidCredentials):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Current password is wrong", nil, err)
	case errors.Is(err, useruc.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "User not found", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
