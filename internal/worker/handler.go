package worker

import (
	"context"
	"errors"
	"fmt"

	"parttime-match/internal/logger"
	"parttime-match/internal/usecase"

	"go.uber.org/zap"
)

// RecomputeHandler runs one dispatcher key through the recompute use case.
// Profiles deleted between enqueue and run are skipped quietly.
func RecomputeHandler(uc usecase.RecomputeUsecase, log *zap.Logger) Handler {
	log = logger.OrNop(log).Named("recompute_handler")

	return func(ctx context.Context, k Key) error {
		var (
			report usecase.BatchReport
			err    error
		)
		switch k.Kind {
		case KindSeeker:
			report, err = uc.RecomputeForSeeker(ctx, k.ID)
		case KindPost:
			report, err = uc.RecomputeForPost(ctx, k.ID)
		default:
			return fmt.Errorf("unknown recompute kind %q", k.Kind)
		}
		if errors.Is(err, usecase.ErrNotFound) {
			log.Debug("recompute target gone", zap.String("key", k.String()))
			return nil
		}
		if err != nil {
			return err
		}

		log.Info("recompute batch",
			zap.String("key", k.String()),
			zap.Int("scored", report.Scored),
			zap.Int("failures", len(report.Failures)),
		)
		return nil
	}
}
