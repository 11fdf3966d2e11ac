// workers/orphan_sweeper.go
package workers

import (
	"context"
	"fmt"
	"time"

	"bodoge-manager/repository"
	"bodoge-manager/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

// OrphanSweeper periodically removes play states, ownerships and matches that
// point at deleted games.
type OrphanSweeper struct {
	store    services.SweepStore
	interval time.Duration
	sched    gocron.Scheduler
}

func NewOrphanSweeper(store services.SweepStore, interval time.Duration) *OrphanSweeper {
	return &OrphanSweeper{store: store, interval: interval}
}

// Start schedules the sweep, running it once right away.
func (w *OrphanSweeper) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("orphan sweeper scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() {
			_, _ = w.RunOnce(ctx)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("orphan sweeper job: %w", err)
	}
	sched.Start()
	w.sched = sched
	logrus.Infof("🔁 [SWEEP] orphan sweeper started (every %s)", w.interval)
	return nil
}

func (w *OrphanSweeper) Stop() error {
	if w.sched == nil {
		return nil
	}
	return w.sched.Shutdown()
}

// RunOnce performs one sweep and logs what it removed.
func (w *OrphanSweeper) RunOnce(ctx context.Context) (repository.SweepResult, error) {
	res, err := w.store.SweepOrphans(ctx)
	if err != nil {
		logrus.WithError(err).Error("[SWEEP] orphan sweep failed")
		return res, err
	}
	if res.Total() == 0 {
		logrus.Debug("[SWEEP] nothing to clean")
		return res, nil
	}
	logrus.WithFields(logrus.Fields{
		"play_states":   res.PlayStates,
		"ownerships":    res.Ownerships,
		"matches":       res.Matches,
		"match_players": res.MatchPlayers,
	}).Info("✅ [SWEEP] removed orphaned rows")
	return res, nil
}
