package handler

import (
	"parttime-match/internal/delivery/http/dto"
	"parttime-match/internal/delivery/http/middleware"
	"parttime-match/internal/domain/profile"
	"parttime-match/internal/pkg/response"
	"parttime-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type PostHandler struct {
	profiles        usecase.ProfileUsecase
	recommendations usecase.RecommendationUsecase
	applications    usecase.ApplicationUsecase
}

type postRequest struct {
	ShopID         uuid.UUID            `json:"shop_id"`
	Title          string               `json:"title"`
	Category       string               `json:"category"`
	Location       *profile.Coordinates `json:"location"`
	Wage           float64              `json:"wage"`
	RequiredDays   []string             `json:"required_days"`
	RequiredSkills []string             `json:"required_skills"`
	Headcount      int                  `json:"headcount"`
}

func (r postRequest) input() usecase.PostInput {
	return usecase.PostInput{
		ShopID:         r.ShopID,
		Title:          r.Title,
		Category:       r.Category,
		Location:       r.Location,
		Wage:           r.Wage,
		RequiredDays:   r.RequiredDays,
		RequiredSkills: r.RequiredSkills,
		Headcount:      r.Headcount,
	}
}

type applyRequest struct {
	Message string `json:"message"`
}

func NewPostHandler(profiles usecase.ProfileUsecase, recommendations usecase.RecommendationUsecase, applications usecase.ApplicationUsecase) *PostHandler {
	return &PostHandler{profiles: profiles, recommendations: recommendations, applications: applications}
}

func (h *PostHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("", h.Create)
	r.Get("/:post_id", h.Get)
	r.Put("/:post_id", h.Update)
	r.Post("/:post_id/close", h.Close)
	r.Post("/:post_id/reopen", h.Reopen)
	r.Get("/:post_id/candidates", h.Candidates)
	r.Post("/:post_id/applications", h.Apply)
	r.Get("/:post_id/applications", h.ListApplications)
}

func (h *PostHandler) Create(c fiber.Ctx) error {
	actor, err := actorOrUnauthorized(c)
	if err != nil {
		return err
	}

	var req postRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	if req.ShopID == uuid.Nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "shop_id is required", nil, nil)
	}

	p, err := h.profiles.CreatePost(c.Context(), actor, req.input())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Created(c, dto.NewPostResponse(p))
}

func (h *PostHandler) Get(c fiber.Ctx) error {
	postID, err := parseUUIDParam(c, "post_id")
	if err != nil {
		return err
	}

	p, err := h.profiles.GetPost(c.Context(), postID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewPostResponse(p))
}

func (h *PostHandler) Update(c fiber.Ctx) error {
	actor, err := actorOrUnauthorized(c)
	if err != nil {
		return err
	}
	postID, err := parseUUIDParam(c, "post_id")
	if err != nil {
		return err
	}

	var req postRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	p, err := h.profiles.UpdatePost(c.Context(), actor, postID, req.input())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewPostResponse(p))
}

func (h *PostHandler) Close(c fiber.Ctx) error  { return h.setOpen(c, false) }
func (h *PostHandler) Reopen(c fiber.Ctx) error { return h.setOpen(c, true) }

func (h *PostHandler) setOpen(c fiber.Ctx, open bool) error {
	actor, err := actorOrUnauthorized(c)
	if err != nil {
		return err
	}
	postID, err := parseUUIDParam(c, "post_id")
	if err != nil {
		return err
	}

	p, err := h.profiles.SetPostOpen(c.Context(), actor, postID, open)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewPostResponse(p))
}

func (h *PostHandler) Candidates(c fiber.Ctx) error {
	actor, err := actorOrUnauthorized(c)
	if err != nil {
		return err
	}
	postID, err := parseUUIDParam(c, "post_id")
	if err != nil {
		return err
	}

	limit, offset := pageParams(c)
	items, err := h.recommendations.Candidates(c.Context(), actor, postID, limit, offset)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMatchListResponse(items, limit, offset))
}

func (h *PostHandler) Apply(c fiber.Ctx) error {
	actor, err := actorOrUnauthorized(c)
	if err != nil {
		return err
	}
	postID, err := parseUUIDParam(c, "post_id")
	if err != nil {
		return err
	}

	var req applyRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
		}
	}

	a, err := h.applications.Apply(c.Context(), actor, postID, req.Message)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Created(c, dto.NewApplicationResponse(a))
}

func (h *PostHandler) ListApplications(c fiber.Ctx) error {
	actor, err := actorOrUnauthorized(c)
	if err != nil {
		return err
	}
	postID, err := parseUUIDParam(c, "post_id")
	if err != nil {
		return err
	}

	limit, offset := pageParams(c)
	items, err := h.applications.ListForPost(c.Context(), actor, postID, limit, offset)
	if err != nil {
		return mapUsecaseError(err)
	}

	out := make([]dto.ApplicationResponse, 0, len(items))
	for _, a := range items {
		out = append(out, dto.NewApplicationResponse(a))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}
