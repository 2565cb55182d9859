package seeder

import (
	"context"

	"parttime-match/internal/database"
	"parttime-match/internal/domain/user"
	"parttime-match/internal/repository"
)

type Seeder interface {
	Name() string
	Run(ctx context.Context, t Target) error
}

// Target is where seeders write. DB is nil for the memory driver, so
// seeders only use it for Postgres-specific checks.
type Target struct {
	DB      database.DB
	Users   user.Repository
	Seekers repository.SeekerRepository
	Shops   repository.ShopRepository
	Posts   repository.PostRepository
}
