package dto

import (
	"time"

	"parttime-match/internal/domain/match"
	"parttime-match/internal/domain/matching"

	"github.com/google/uuid"
)

type MatchResponse struct {
	SeekerID     uuid.UUID        `json:"seeker_id"`
	PostID       uuid.UUID        `json:"post_id"`
	OverallScore float64          `json:"overall_score"`
	Factors      matching.Factors `json:"factors"`
	Status       string           `json:"status"`
	Version      int64            `json:"version"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func NewMatchResponse(m match.Match) MatchResponse {
	return MatchResponse{
		SeekerID:     m.SeekerID,
		PostID:       m.PostID,
		OverallScore: m.OverallScore,
		Factors:      m.Factors,
		Status:       string(m.Status),
		Version:      m.Version,
		UpdatedAt:    m.UpdatedAt,
	}
}

type MatchListResponse struct {
	Items  []MatchResponse `json:"items"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

func NewMatchListResponse(ms []match.Match, limit, offset int) MatchListResponse {
	out := MatchListResponse{Items: make([]MatchResponse, 0, len(ms)), Limit: limit, Offset: offset}
	for _, m := range ms {
		out.Items = append(out.Items, NewMatchResponse(m))
	}
	return out
}
