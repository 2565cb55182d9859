package handler

import (
	"parttime-match/internal/delivery/http/dto"
	"parttime-match/internal/delivery/http/middleware"
	"parttime-match/internal/domain/profile"
	"parttime-match/internal/pkg/response"
	"parttime-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type SeekerHandler struct {
	profiles        usecase.ProfileUsecase
	recommendations usecase.RecommendationUsecase
}

type upsertSeekerRequest struct {
	Location      *profile.Coordinates `json:"location"`
	AvailableDays []string             `json:"available_days"`
	Skills        []string             `json:"skills"`
	MinWage       *float64             `json:"min_wage"`
	Experience    string               `json:"experience"`
}

func NewSeekerHandler(profiles usecase.ProfileUsecase, recommendations usecase.RecommendationUsecase) *SeekerHandler {
	return &SeekerHandler{profiles: profiles, recommendations: recommendations}
}

func (h *SeekerHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Put("/me", h.UpsertMe)
	r.Get("/me", h.GetMe)
	r.Get("/me/recommendations", h.Recommendations)
}

// UpsertMe replaces the caller's seeker profile. Omitting "skills" leaves
// them unknown, which is different from sending an empty list.
func (h *SeekerHandler) UpsertMe(c fiber.Ctx) error {
	actor, err := actorOrUnauthorized(c)
	if err != nil {
		return err
	}

	var req upsertSeekerRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	s, err := h.profiles.UpsertSeeker(c.Context(), actor, usecase.SeekerInput{
		Location:      req.Location,
		AvailableDays: req.AvailableDays,
		Skills:        req.Skills,
		MinWage:       req.MinWage,
		Experience:    req.Experience,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSeekerResponse(s))
}

func (h *SeekerHandler) GetMe(c fiber.Ctx) error {
	actor, err := actorOrUnauthorized(c)
	if err != nil {
		return err
	}

	s, err := h.profiles.GetSeeker(c.Context(), actor)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSeekerResponse(s))
}

func (h *SeekerHandler) Recommendations(c fiber.Ctx) error {
	actor, err := actorOrUnauthorized(c)
	if err != nil {
		return err
	}

	limit, offset := pageParams(c)
	items, err := h.recommendations.Rank(c.Context(), actor.ID, limit, offset)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMatchListResponse(items, limit, offset))
}

func pageParams(c fiber.Ctx) (int, int) {
	limit := parseQueryInt(c, "limit", 20)
	offset := parseQueryInt(c, "offset", 0)
	if limit > 50 {
		limit = 50
	}
	if limit < 1 {
		limit = 20
	}
	return limit, offset
}
