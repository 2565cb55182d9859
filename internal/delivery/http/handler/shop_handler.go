package handler

import (
	"parttime-match/internal/delivery/http/dto"
	"parttime-match/internal/delivery/http/middleware"
	"parttime-match/internal/pkg/response"
	"parttime-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ShopHandler struct {
	profiles usecase.ProfileUsecase
}

type createShopRequest struct {
	Name string `json:"name"`
}

func NewShopHandler(profiles usecase.ProfileUsecase) *ShopHandler {
	return &ShopHandler{profiles: profiles}
}

func (h *ShopHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("", h.Create)
}

func (h *ShopHandler) Create(c fiber.Ctx) error {
	actor, err := actorOrUnauthorized(c)
	if err != nil {
		return err
	}

	var req createShopRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	sh, err := h.profiles.CreateShop(c.Context(), actor, req.Name)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Created(c, dto.NewShopResponse(sh))
}
