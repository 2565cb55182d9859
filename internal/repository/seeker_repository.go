package repository

import (
	"context"
	"fmt"
	"time"

	"parttime-match/internal/database"
	dbpostgres "parttime-match/internal/database/postgres"
	"parttime-match/internal/domain/profile"

	"github.com/google/uuid"
)

type SeekerRepository interface {
	UpsertSeeker(ctx context.Context, s profile.Seeker) error
	GetSeeker(ctx context.Context, id uuid.UUID) (profile.Seeker, error)
	ListSeekers(ctx context.Context, limit, offset int) ([]profile.Seeker, error)
}

type PostgresSeekerRepository struct {
	db database.DB
}

func NewPostgresSeekerRepository(db database.DB) *PostgresSeekerRepository {
	return &PostgresSeekerRepository{db: db}
}

const seekerColumns = `id, latitude, longitude, available_days, skills, min_wage, experience, updated_at`

func (r *PostgresSeekerRepository) UpsertSeeker(ctx context.Context, s profile.Seeker) error {
	if s.ID == uuid.Nil {
		return fmt.Errorf("upsert seeker: %w", ErrNotFound)
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	lat, lng := splitCoordinates(s.Location)

	_, err := r.db.Exec(ctx,
		`INSERT INTO seekers (id, latitude, longitude, available_days, skills, min_wage, experience, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (id) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			available_days = EXCLUDED.available_days,
			skills = EXCLUDED.skills,
			min_wage = EXCLUDED.min_wage,
			experience = EXCLUDED.experience,
			updated_at = EXCLUDED.updated_at`,
		s.ID,
		lat,
		lng,
		int16(s.AvailableDays),
		s.Skills,
		s.MinWage,
		s.Experience,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert seeker: %w", err)
	}
	return nil
}

func (r *PostgresSeekerRepository) GetSeeker(ctx context.Context, id uuid.UUID) (profile.Seeker, error) {
	row := r.db.QueryRow(ctx, `SELECT `+seekerColumns+` FROM seekers WHERE id = $1`, id)
	s, err := scanSeeker(row)
	if err != nil {
		if dbpostgres.IsNoRows(err) {
			return profile.Seeker{}, ErrNotFound
		}
		return profile.Seeker{}, fmt.Errorf("get seeker: %w", err)
	}
	return s, nil
}

func (r *PostgresSeekerRepository) ListSeekers(ctx context.Context, limit, offset int) ([]profile.Seeker, error) {
	limit, offset = clampPage(limit, offset)

	rows, err := r.db.Query(ctx,
		`SELECT `+seekerColumns+`
		 FROM seekers
		 ORDER BY id ASC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list seekers: %w", err)
	}
	defer rows.Close()

	out := make([]profile.Seeker, 0)
	for rows.Next() {
		s, err := scanSeeker(rows)
		if err != nil {
			return nil, fmt.Errorf("list seekers: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list seekers: %w", err)
	}
	return out, nil
}

func scanSeeker(row database.Row) (profile.Seeker, error) {
	var (
		s        profile.Seeker
		lat, lng *float64
		days     int16
	)
	if err := row.Scan(&s.ID, &lat, &lng, &days, &s.Skills, &s.MinWage, &s.Experience, &s.UpdatedAt); err != nil {
		return profile.Seeker{}, err
	}
	s.Location = joinCoordinates(lat, lng)
	s.AvailableDays = profile.WeekdaySet(days)
	return s, nil
}

func splitCoordinates(c *profile.Coordinates) (*float64, *float64) {
	if c == nil {
		return nil, nil
	}
	lat, lng := c.Latitude, c.Longitude
	return &lat, &lng
}

func joinCoordinates(lat, lng *float64) *profile.Coordinates {
	if lat == nil || lng == nil {
		return nil
	}
	return &profile.Coordinates{Latitude: *lat, Longitude: *lng}
}
