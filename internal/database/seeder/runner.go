package seeder

import (
	"context"
	"fmt"
)

type Runner struct {
	Seeders []Seeder
}

func (r Runner) Run(ctx context.Context, t Target) error {
	if t.Users == nil || t.Seekers == nil || t.Shops == nil || t.Posts == nil {
		return fmt.Errorf("incomplete seed target")
	}
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		if err := s.Run(ctx, t); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
	}
	return nil
}
