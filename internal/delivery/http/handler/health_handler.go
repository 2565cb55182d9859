package handler

import (
	"parttime-match/internal/pkg/response"
	"parttime-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type HealthHandler struct {
	uc usecase.HealthUsecase
}

func NewHealthHandler(uc usecase.HealthUsecase) *HealthHandler {
	return &HealthHandler{uc: uc}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

// Health reports 503 when the database is down; Redis is optional.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	st := h.uc.GetStatus(c.Context())
	if !st.DatabaseHealthy {
		return response.Error(c, fiber.StatusServiceUnavailable, response.MessageDegraded, st)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, st)
}
