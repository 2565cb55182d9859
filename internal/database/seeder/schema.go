package seeder

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"parttime-match/internal/database"
)

// seededColumns lists the columns each seeder writes. A database migrated to
// an older schema fails here instead of halfway through a seed.
var seededColumns = map[string][]string{
	"users":   {"id", "email", "password_hash", "role"},
	"seekers": {"id", "latitude", "longitude", "available_days", "skills", "min_wage"},
	"shops":   {"id", "owner_id", "name"},
	"posts":   {"id", "shop_id", "wage", "required_days", "required_skills", "headcount", "is_open"},
}

// EnsureSeededTables checks every listed table for the columns the seeders
// write and reports all missing ones together.
func EnsureSeededTables(ctx context.Context, db database.DB, tables ...string) error {
	if db == nil {
		return errors.New("nil db")
	}

	var errs []error
	for _, table := range tables {
		want, ok := seededColumns[table]
		if !ok {
			return fmt.Errorf("no seeded columns known for table %q", table)
		}
		have, err := tableColumns(ctx, db, table)
		if err != nil {
			return fmt.Errorf("read columns of %s: %w", table, err)
		}
		for _, col := range want {
			if !slices.Contains(have, col) {
				errs = append(errs, fmt.Errorf("missing column %s.%s", table, col))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("schema mismatch, run migrate first: %w", errors.Join(errs...))
	}
	return nil
}

func tableColumns(ctx context.Context, db database.DB, table string) ([]string, error) {
	rows, err := db.Query(ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1`,
		table,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
