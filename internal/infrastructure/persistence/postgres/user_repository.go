package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"parttime-match/internal/database"
	dbpostgres "parttime-match/internal/database/postgres"
	"parttime-match/internal/domain/match"
	"parttime-match/internal/domain/user"

	"github.com/google/uuid"
)

// UserRepository keeps its statements prepared on the pool's database/sql
// handle for the lifetime of the process.
type UserRepository struct {
	stmtCreate     *sql.Stmt
	stmtGetByID    *sql.Stmt
	stmtGetByEmail *sql.Stmt
	stmtExists     *sql.Stmt
	stmtPassword   *sql.Stmt
}

func NewUserRepository(ctx context.Context, db database.DB) (*UserRepository, error) {
	sqldb := db.SQLDB()
	if sqldb == nil {
		return nil, errors.New("user repository: database/sql handle unavailable")
	}

	r := &UserRepository{}
	prepare := func(dst **sql.Stmt, query string) error {
		s, err := sqldb.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		*dst = s
		return nil
	}

	queries := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&r.stmtCreate, `INSERT INTO users (id, email, password_hash, role, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $5)`},
		{&r.stmtGetByID, `SELECT id, email, password_hash, role, created_at, updated_at FROM users WHERE id = $1`},
		{&r.stmtGetByEmail, `SELECT id, email, password_hash, role, created_at, updated_at FROM users WHERE email = $1`},
		{&r.stmtExists, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`},
		{&r.stmtPassword, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`},
	}
	for _, q := range queries {
		if err := prepare(q.dst, q.query); err != nil {
			_ = r.Close()
			return nil, err
		}
	}

	return r, nil
}

func (r *UserRepository) Close() error {
	var firstErr error
	closeStmt := func(s *sql.Stmt) {
		if s == nil {
			return
		}
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	closeStmt(r.stmtCreate)
	closeStmt(r.stmtGetByID)
	closeStmt(r.stmtGetByEmail)
	closeStmt(r.stmtExists)
	closeStmt(r.stmtPassword)

	return firstErr
}

func (r *UserRepository) CreateUser(ctx context.Context, u user.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := r.stmtCreate.ExecContext(ctx, u.ID, normalizeEmail(u.Email), u.PasswordHash, string(u.Role), u.CreatedAt)
	if err != nil && dbpostgres.IsUniqueViolation(err) {
		return user.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return scanUser(r.stmtGetByID.QueryRowContext(ctx, id))
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.stmtGetByEmail.QueryRowContext(ctx, normalizeEmail(email)))
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var ok bool
	if err := r.stmtExists.QueryRowContext(ctx, normalizeEmail(email)).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res, err := r.stmtPassword.ExecContext(ctx, id, passwordHash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func scanUser(row database.Row) (user.User, error) {
	var (
		u    user.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if dbpostgres.IsNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	u.Role = match.Role(role)
	return u, nil
}
