package profile

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Coordinates is a WGS84 point in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Seeker is the read model the matching engine needs from a job seeker profile.
// A nil Skills slice means the seeker never filled the field; an empty one means
// "no skills".
type Seeker struct {
	ID            uuid.UUID
	Location      *Coordinates
	AvailableDays WeekdaySet
	Skills        []string
	MinWage       *float64
	Experience    string
	UpdatedAt     time.Time
}

// Post is the read model of a shop's job listing.
type Post struct {
	ID             uuid.UUID
	ShopID         uuid.UUID
	OwnerID        uuid.UUID
	Title          string
	Category       string
	Location       *Coordinates
	Wage           float64
	RequiredDays   WeekdaySet
	RequiredSkills []string
	Headcount      int
	IsOpen         bool
	UpdatedAt      time.Time
}

type Shop struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	CreatedAt time.Time
}

type Application struct {
	ID        uuid.UUID
	SeekerID  uuid.UUID
	PostID    uuid.UUID
	Message   string
	CreatedAt time.Time
}

// NormalizeSkills lowercases, trims, folds synonyms and de-duplicates tags,
// keeping nil as nil.
func NormalizeSkills(in []string) []string {
	if in == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.Join(strings.Fields(s), " "))
		if s == "" {
			continue
		}
		s = CanonicalSkill(s)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
