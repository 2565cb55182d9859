package dto

import (
	"time"

	"parttime-match/internal/domain/profile"

	"github.com/google/uuid"
)

type SeekerResponse struct {
	ID            uuid.UUID            `json:"id"`
	Location      *profile.Coordinates `json:"location"`
	AvailableDays profile.WeekdaySet   `json:"available_days"`
	Skills        []string             `json:"skills"`
	MinWage       *float64             `json:"min_wage"`
	Experience    string               `json:"experience"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func NewSeekerResponse(s profile.Seeker) SeekerResponse {
	return SeekerResponse{
		ID:            s.ID,
		Location:      s.Location,
		AvailableDays: s.AvailableDays,
		Skills:        s.Skills,
		MinWage:       s.MinWage,
		Experience:    s.Experience,
		UpdatedAt:     s.UpdatedAt,
	}
}

type ShopResponse struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func NewShopResponse(s profile.Shop) ShopResponse {
	return ShopResponse{ID: s.ID, OwnerID: s.OwnerID, Name: s.Name, CreatedAt: s.CreatedAt}
}

type PostResponse struct {
	ID             uuid.UUID            `json:"id"`
	ShopID         uuid.UUID            `json:"shop_id"`
	Title          string               `json:"title"`
	Category       string               `json:"category"`
	Location       *profile.Coordinates `json:"location"`
	Wage           float64              `json:"wage"`
	RequiredDays   profile.WeekdaySet   `json:"required_days"`
	RequiredSkills []string             `json:"required_skills"`
	Headcount      int                  `json:"headcount"`
	IsOpen         bool                 `json:"is_open"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

func NewPostResponse(p profile.Post) PostResponse {
	return PostResponse{
		ID:             p.ID,
		ShopID:         p.ShopID,
		Title:          p.Title,
		Category:       p.Category,
		Location:       p.Location,
		Wage:           p.Wage,
		RequiredDays:   p.RequiredDays,
		RequiredSkills: p.RequiredSkills,
		Headcount:      p.Headcount,
		IsOpen:         p.IsOpen,
		UpdatedAt:      p.UpdatedAt,
	}
}

type ApplicationResponse struct {
	ID        uuid.UUID `json:"id"`
	SeekerID  uuid.UUID `json:"seeker_id"`
	PostID    uuid.UUID `json:"post_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func NewApplicationResponse(a profile.Application) ApplicationResponse {
	return ApplicationResponse{ID: a.ID, SeekerID: a.SeekerID, PostID: a.PostID, Message: a.Message, CreatedAt: a.CreatedAt}
}
