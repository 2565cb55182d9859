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

type ShopRepository interface {
	CreateShop(ctx context.Context, s profile.Shop) error
	GetShop(ctx context.Context, id uuid.UUID) (profile.Shop, error)
}

type PostgresShopRepository struct {
	db database.DB
}

func NewPostgresShopRepository(db database.DB) *PostgresShopRepository {
	return &PostgresShopRepository{db: db}
}

func (r *PostgresShopRepository) CreateShop(ctx context.Context, s profile.Shop) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO shops (id, owner_id, name, created_at) VALUES ($1,$2,$3,$4)`,
		s.ID, s.OwnerID, s.Name, s.CreatedAt,
	)
	if err != nil {
		if dbpostgres.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create shop: %w", err)
	}
	return nil
}

func (r *PostgresShopRepository) GetShop(ctx context.Context, id uuid.UUID) (profile.Shop, error) {
	var s profile.Shop
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, name, created_at FROM shops WHERE id = $1`, id,
	).Scan(&s.ID, &s.OwnerID, &s.Name, &s.CreatedAt)
	if err != nil {
		if dbpostgres.IsNoRows(err) {
			return profile.Shop{}, ErrNotFound
		}
		return profile.Shop{}, fmt.Errorf("get shop: %w", err)
	}
	return s, nil
}
