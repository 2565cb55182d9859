package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"parttime-match/internal/database"
	dbpostgres "parttime-match/internal/database/postgres"
	"parttime-match/internal/domain/match"

	"github.com/google/uuid"
)

type MatchRepository interface {
	// Upsert inserts a pending match or refreshes the score of an existing one.
	// Status and version are never changed by it.
	Upsert(ctx context.Context, m match.Upsert) error
	Get(ctx context.Context, seekerID, postID uuid.UUID) (match.Match, error)
	// SetStatus writes c.To only if the stored version still equals
	// c.ExpectedVersion, returning match.ErrStorageConflict otherwise.
	SetStatus(ctx context.Context, c match.StatusChange) (match.Match, error)
	// TopMatchesForSeeker lists matches on open posts by score desc,
	// updated_at desc, post id asc.
	TopMatchesForSeeker(ctx context.Context, seekerID uuid.UUID, limit, offset int) ([]match.Match, error)
	TopCandidatesForPost(ctx context.Context, postID uuid.UUID, limit, offset int) ([]match.Match, error)
	ListSeekerIDsByPost(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error)
	CountByStatus(ctx context.Context, postID uuid.UUID, status match.Status) (int, error)
	// DeletePending removes a match nobody has acted on yet. Rows past pending
	// are kept together with their history.
	DeletePending(ctx context.Context, seekerID, postID uuid.UUID) (bool, error)
}

type PostgresMatchRepository struct {
	db database.DB
}

func NewPostgresMatchRepository(db database.DB) *PostgresMatchRepository {
	return &PostgresMatchRepository{db: db}
}

const matchColumns = `m.seeker_id, m.post_id, m.overall_score, m.factors, m.status, m.version, m.created_at, m.updated_at`

func (r *PostgresMatchRepository) Upsert(ctx context.Context, m match.Upsert) error {
	if m.SeekerID == uuid.Nil || m.PostID == uuid.Nil {
		return nil
	}
	if m.ScoredAt.IsZero() {
		m.ScoredAt = time.Now().UTC()
	}
	factors, err := json.Marshal(m.Factors)
	if err != nil {
		return fmt.Errorf("upsert match: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO matches (seeker_id, post_id, overall_score, factors, status, version, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,1,$6,$6)
		 ON CONFLICT (seeker_id, post_id) DO UPDATE SET
			overall_score = EXCLUDED.overall_score,
			factors = EXCLUDED.factors,
			updated_at = EXCLUDED.updated_at`,
		m.SeekerID,
		m.PostID,
		m.Score,
		factors,
		string(match.StatusPending),
		m.ScoredAt,
	)
	if err != nil {
		return fmt.Errorf("upsert match: %w", err)
	}
	return nil
}

func (r *PostgresMatchRepository) Get(ctx context.Context, seekerID, postID uuid.UUID) (match.Match, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM matches m WHERE m.seeker_id = $1 AND m.post_id = $2`,
		seekerID, postID,
	)
	m, err := scanMatch(row)
	if err != nil {
		if dbpostgres.IsNoRows(err) {
			return match.Match{}, match.ErrNotFound
		}
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	return m, nil
}

func (r *PostgresMatchRepository) SetStatus(ctx context.Context, c match.StatusChange) (match.Match, error) {
	if c.At.IsZero() {
		c.At = time.Now().UTC()
	}
	entry, err := json.Marshal([]match.HistoryEntry{{From: c.From, To: c.To, ActorID: c.ActorID, At: c.At}})
	if err != nil {
		return match.Match{}, fmt.Errorf("set match status: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`UPDATE matches m SET
			status = $4,
			version = m.version + 1,
			updated_at = $5,
			status_history = m.status_history || $6::jsonb
		 WHERE m.seeker_id = $1 AND m.post_id = $2 AND m.version = $3
		 RETURNING `+matchColumns,
		c.SeekerID,
		c.PostID,
		c.ExpectedVersion,
		string(c.To),
		c.At,
		entry,
	)
	m, err := scanMatch(row)
	if err == nil {
		return m, nil
	}
	if !dbpostgres.IsNoRows(err) {
		return match.Match{}, fmt.Errorf("set match status: %w", err)
	}

	if _, gerr := r.Get(ctx, c.SeekerID, c.PostID); gerr != nil {
		return match.Match{}, gerr
	}
	return match.Match{}, match.ErrStorageConflict
}

func (r *PostgresMatchRepository) TopMatchesForSeeker(ctx context.Context, seekerID uuid.UUID, limit, offset int) ([]match.Match, error) {
	limit, offset = clampPage(limit, offset)
	return r.list(ctx, "top matches",
		`SELECT `+matchColumns+`
		 FROM matches m
		 JOIN posts p ON p.id = m.post_id
		 WHERE m.seeker_id = $1 AND p.is_open = true
		 ORDER BY m.overall_score DESC, m.updated_at DESC, m.post_id ASC
		 LIMIT $2 OFFSET $3`,
		seekerID, limit, offset,
	)
}

func (r *PostgresMatchRepository) TopCandidatesForPost(ctx context.Context, postID uuid.UUID, limit, offset int) ([]match.Match, error) {
	limit, offset = clampPage(limit, offset)
	return r.list(ctx, "top candidates",
		`SELECT `+matchColumns+`
		 FROM matches m
		 WHERE m.post_id = $1
		 ORDER BY m.overall_score DESC, m.updated_at DESC, m.seeker_id ASC
		 LIMIT $2 OFFSET $3`,
		postID, limit, offset,
	)
}

func (r *PostgresMatchRepository) ListSeekerIDsByPost(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT seeker_id FROM matches WHERE post_id = $1 ORDER BY seeker_id ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("list seekers by post: %w", err)
	}
	defer rows.Close()

	out := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list seekers by post: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list seekers by post: %w", err)
	}
	return out, nil
}

func (r *PostgresMatchRepository) CountByStatus(ctx context.Context, postID uuid.UUID, status match.Status) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM matches WHERE post_id = $1 AND status = $2`,
		postID, string(status),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}
	return n, nil
}

func (r *PostgresMatchRepository) DeletePending(ctx context.Context, seekerID, postID uuid.UUID) (bool, error) {
	n, err := r.db.Exec(ctx,
		`DELETE FROM matches WHERE seeker_id = $1 AND post_id = $2 AND status = $3`,
		seekerID, postID, string(match.StatusPending),
	)
	if err != nil {
		return false, fmt.Errorf("delete pending match: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresMatchRepository) list(ctx context.Context, op, query string, args ...any) ([]match.Match, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]match.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func scanMatch(row database.Row) (match.Match, error) {
	var (
		m       match.Match
		factors []byte
		status  string
	)
	if err := row.Scan(&m.SeekerID, &m.PostID, &m.OverallScore, &factors, &status, &m.Version, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return match.Match{}, err
	}
	if len(factors) > 0 {
		if err := json.Unmarshal(factors, &m.Factors); err != nil {
			return match.Match{}, err
		}
	}
	m.Status = match.Status(status)
	return m, nil
}
