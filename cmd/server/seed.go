package main

import (
	"parttime-match/internal/app"
	"parttime-match/internal/database/seeder"
	"parttime-match/internal/domain/profile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo owners, seekers and posts, then score them",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg, lg, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = lg.Sync() }()

		c, err := app.NewContainer(ctx, cfg, lg)
		if err != nil {
			lg.Error("failed to build container", zap.Error(err))
			return err
		}
		defer func() { _ = c.Close() }()

		r := seeder.Runner{Seeders: seeder.Defaults()}
		if err := r.Run(ctx, seeder.Target{
			DB:      c.DB,
			Users:   c.Users,
			Seekers: c.Seekers,
			Shops:   c.Shops,
			Posts:   c.Posts,
		}); err != nil {
			lg.Error("seeding failed", zap.Error(err))
			return err
		}

		scored := 0
		err = c.Recompute.ForEachOpenPost(ctx, func(p profile.Post) error {
			rep, err := c.Recompute.RecomputeForPost(ctx, p.ID)
			scored += rep.Scored
			return err
		})
		if err != nil {
			lg.Error("scoring seeded data failed", zap.Error(err))
			return err
		}

		lg.Info("demo data seeded", zap.Int("scored", scored), zap.String("password", seeder.DemoPassword))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
