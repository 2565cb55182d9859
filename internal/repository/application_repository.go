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

type ApplicationRepository interface {
	CreateApplication(ctx context.Context, a profile.Application) error
	ListApplicationsByPost(ctx context.Context, postID uuid.UUID, limit, offset int) ([]profile.Application, error)
}

type PostgresApplicationRepository struct {
	db database.DB
}

func NewPostgresApplicationRepository(db database.DB) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{db: db}
}

func (r *PostgresApplicationRepository) CreateApplication(ctx context.Context, a profile.Application) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO applications (id, seeker_id, post_id, message, created_at) VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.SeekerID, a.PostID, a.Message, a.CreatedAt,
	)
	if err != nil {
		if dbpostgres.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

func (r *PostgresApplicationRepository) ListApplicationsByPost(ctx context.Context, postID uuid.UUID, limit, offset int) ([]profile.Application, error) {
	limit, offset = clampPage(limit, offset)

	rows, err := r.db.Query(ctx,
		`SELECT id, seeker_id, post_id, message, created_at
		 FROM applications
		 WHERE post_id = $1
		 ORDER BY created_at ASC, id ASC
		 LIMIT $2 OFFSET $3`,
		postID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	out := make([]profile.Application, 0)
	for rows.Next() {
		var a profile.Application
		if err := rows.Scan(&a.ID, &a.SeekerID, &a.PostID, &a.Message, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("list applications: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return out, nil
}
