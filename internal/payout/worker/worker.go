// Package worker exports the payout maturity backlog as metrics. Maturity is
// a data-driven threshold, not a timer: nothing changes state here, the worker
// only observes how much is due or holding at each poll.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/lienclock/internal/clock"
	"github.com/smallbiznis/lienclock/internal/observability/metrics"
	payoutdomain "github.com/smallbiznis/lienclock/internal/payout/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   payoutdomain.Repository
	Policy payoutdomain.PayoutPolicy
	Clock  clock.Clock
	Config Config `optional:"true"`
}

type Worker struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   payoutdomain.Repository
	policy payoutdomain.PayoutPolicy
	clock  clock.Clock
	cfg    Config
}

func NewWorker(p Params) *Worker {
	return &Worker{
		db:     p.DB,
		log:    p.Log.Named("payout.worker"),
		repo:   p.Repo,
		policy: p.Policy,
		clock:  p.Clock,
		cfg:    p.Config.withDefaults(),
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Warn("payout backlog poll failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if w.db == nil || w.repo == nil {
		return errors.New("payout_worker_unavailable")
	}

	now := w.clock.Now()
	cutoff := now.Add(-w.policy.HoldPeriod())

	rows, err := w.repo.Backlog(ctx, w.db, cutoff, now)
	if err != nil {
		return err
	}

	observer := metrics.Payout()
	observer.ResetBacklog()
	for _, row := range rows {
		observer.ObserveBroker(row.BrokerID.String(), row.DueCents, row.OnHoldCents, row.OldestUnpaidAgeMs)
	}
	observer.ObservePollCompleted()
	return nil
}
