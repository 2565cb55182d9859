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

type PostRepository interface {
	CreatePost(ctx context.Context, p profile.Post) error
	UpdatePost(ctx context.Context, p profile.Post) error
	SetPostOpen(ctx context.Context, id uuid.UUID, open bool, at time.Time) error
	GetPost(ctx context.Context, id uuid.UUID) (profile.Post, error)
	ListOpenPosts(ctx context.Context, limit, offset int) ([]profile.Post, error)
}

type PostgresPostRepository struct {
	db database.DB
}

func NewPostgresPostRepository(db database.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

const postSelect = `SELECT p.id, p.shop_id, s.owner_id, p.title, p.category, p.latitude, p.longitude,
		p.wage, p.required_days, p.required_skills, p.headcount, p.is_open, p.updated_at
	 FROM posts p
	 JOIN shops s ON s.id = p.shop_id`

func (r *PostgresPostRepository) CreatePost(ctx context.Context, p profile.Post) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	lat, lng := splitCoordinates(p.Location)

	_, err := r.db.Exec(ctx,
		`INSERT INTO posts (id, shop_id, title, category, latitude, longitude, wage, required_days,
			required_skills, headcount, is_open, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$12)`,
		p.ID,
		p.ShopID,
		p.Title,
		p.Category,
		lat,
		lng,
		p.Wage,
		int16(p.RequiredDays),
		p.RequiredSkills,
		p.Headcount,
		p.IsOpen,
		p.UpdatedAt,
	)
	if err != nil {
		if dbpostgres.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (r *PostgresPostRepository) UpdatePost(ctx context.Context, p profile.Post) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	lat, lng := splitCoordinates(p.Location)

	n, err := r.db.Exec(ctx,
		`UPDATE posts SET
			title = $2,
			category = $3,
			latitude = $4,
			longitude = $5,
			wage = $6,
			required_days = $7,
			required_skills = $8,
			headcount = $9,
			is_open = $10,
			updated_at = $11
		 WHERE id = $1`,
		p.ID,
		p.Title,
		p.Category,
		lat,
		lng,
		p.Wage,
		int16(p.RequiredDays),
		p.RequiredSkills,
		p.Headcount,
		p.IsOpen,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresPostRepository) SetPostOpen(ctx context.Context, id uuid.UUID, open bool, at time.Time) error {
	n, err := r.db.Exec(ctx, `UPDATE posts SET is_open = $2, updated_at = $3 WHERE id = $1`, id, open, at)
	if err != nil {
		return fmt.Errorf("set post open: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresPostRepository) GetPost(ctx context.Context, id uuid.UUID) (profile.Post, error) {
	p, err := scanPost(r.db.QueryRow(ctx, postSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if dbpostgres.IsNoRows(err) {
			return profile.Post{}, ErrNotFound
		}
		return profile.Post{}, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

func (r *PostgresPostRepository) ListOpenPosts(ctx context.Context, limit, offset int) ([]profile.Post, error) {
	limit, offset = clampPage(limit, offset)

	rows, err := r.db.Query(ctx,
		postSelect+`
		 WHERE p.is_open = true
		 ORDER BY p.id ASC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list open posts: %w", err)
	}
	defer rows.Close()

	out := make([]profile.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("list open posts: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list open posts: %w", err)
	}
	return out, nil
}

func scanPost(row database.Row) (profile.Post, error) {
	var (
		p        profile.Post
		lat, lng *float64
		days     int16
	)
	err := row.Scan(
		&p.ID,
		&p.ShopID,
		&p.OwnerID,
		&p.Title,
		&p.Category,
		&lat,
		&lng,
		&p.Wage,
		&days,
		&p.RequiredSkills,
		&p.Headcount,
		&p.IsOpen,
		&p.UpdatedAt,
	)
	if err != nil {
		return profile.Post{}, err
	}
	p.Location = joinCoordinates(lat, lng)
	p.RequiredDays = profile.WeekdaySet(days)
	return p, nil
}
