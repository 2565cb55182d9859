package main

import (
	"context"
	"errors"
	"fmt"

	"parttime-match/internal/app"
	"parttime-match/internal/domain/profile"
	"parttime-match/internal/usecase"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute matches synchronously for a seeker, a post or every open post",
	RunE: func(cmd *cobra.Command, _ []string) error {
		seeker, _ := cmd.Flags().GetString("seeker")
		post, _ := cmd.Flags().GetString("post")
		all, _ := cmd.Flags().GetBool("all")
		clearLocks, _ := cmd.Flags().GetBool("clear-locks")
		return recompute(cmd.Context(), seeker, post, all, clearLocks)
	},
}

func init() {
	rootCmd.AddCommand(recomputeCmd)

	recomputeCmd.Flags().String("seeker", "", "seeker id to recompute")
	recomputeCmd.Flags().String("post", "", "post id to recompute")
	recomputeCmd.Flags().Bool("all", false, "recompute every open post")
	recomputeCmd.Flags().Bool("clear-locks", false, "delete stale recompute locks from redis first")
	recomputeCmd.MarkFlagsMutuallyExclusive("seeker", "post", "all")
}

func recompute(ctx context.Context, seeker, post string, all, clearLocks bool) error {
	if seeker == "" && post == "" && !all && !clearLocks {
		return errors.New("one of --seeker, --post, --all or --clear-locks is required")
	}

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

	if clearLocks {
		n, err := c.Redis.DeleteByPattern(ctx, "recompute:lock:*")
		if err != nil {
			lg.Warn("clearing locks", zap.Error(err))
		}
		lg.Info("recompute locks cleared", zap.Int("deleted", n))
	}

	var report usecase.BatchReport
	switch {
	case seeker != "":
		id, err := uuid.Parse(seeker)
		if err != nil {
			return fmt.Errorf("invalid --seeker: %w", err)
		}
		report, err = c.Recompute.RecomputeForSeeker(ctx, id)
		if err != nil {
			return err
		}
	case post != "":
		id, err := uuid.Parse(post)
		if err != nil {
			return fmt.Errorf("invalid --post: %w", err)
		}
		report, err = c.Recompute.RecomputeForPost(ctx, id)
		if err != nil {
			return err
		}
	case all:
		err := c.Recompute.ForEachOpenPost(ctx, func(p profile.Post) error {
			r, err := c.Recompute.RecomputeForPost(ctx, p.ID)
			if err != nil {
				return err
			}
			report.Merge(r)
			return nil
		})
		if err != nil {
			return err
		}
	default:
		return nil
	}

	lg.Info("recompute finished", zap.Int("scored", report.Scored), zap.Int("failures", len(report.Failures)))
	for _, f := range report.Failures {
		lg.Debug("pair skipped",
			zap.String("seeker_id", f.SeekerID.String()),
			zap.String("post_id", f.PostID.String()),
			zap.Error(f.Err),
		)
	}
	return nil
}
