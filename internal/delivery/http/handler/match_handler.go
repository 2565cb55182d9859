package handler

import (
	"parttime-match/internal/delivery/http/dto"
	"parttime-match/internal/delivery/http/middleware"
	"parttime-match/internal/domain/match"
	"parttime-match/internal/pkg/response"
	"parttime-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type MatchHandler struct {
	uc usecase.MatchStatusUsecase
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func NewMatchHandler(uc usecase.MatchStatusUsecase) *MatchHandler {
	return &MatchHandler{uc: uc}
}

// RegisterRoutes mounts under /posts, next to the post's other owner actions.
func (h *MatchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Patch("/:post_id/matches/:seeker_id/status", h.UpdateStatus)
}

func (h *MatchHandler) UpdateStatus(c fiber.Ctx) error {
	actor, err := actorOrUnauthorized(c)
	if err != nil {
		return err
	}
	postID, err := parseUUIDParam(c, "post_id")
	if err != nil {
		return err
	}
	seekerID, err := parseUUIDParam(c, "seeker_id")
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	to, err := match.ParseStatus(req.Status)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Unknown status", nil, err)
	}

	m, err := h.uc.UpdateStatus(c.Context(), actor, seekerID, postID, to)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMatchResponse(m))
}
