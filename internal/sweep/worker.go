package sweep

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	alertsservice "timeclock_backend/internal/alerts/service"
	timeclockrepo "timeclock_backend/internal/timeclock/repository"
	"timeclock_backend/platform/config"
	"timeclock_backend/platform/logger"
)

// sweepConcurrency bounds parallel per-user evaluations within one sweep.
const sweepConcurrency = 8

// Sweeper evaluates every open journey against the working limits.
type Sweeper struct {
	entries timeclockrepo.EntryReader
	alerts  *alertsservice.Service
	log     *logger.Logger
	now     func() time.Time
}

// NewSweeper creates a sweeper.
func NewSweeper(entries timeclockrepo.EntryReader, alerts *alertsservice.Service, log *logger.Logger) *Sweeper {
	return &Sweeper{
		entries: entries,
		alerts:  alerts,
		now:     time.Now,
		log:     log,
	}
}

// HandleSweep processes one sweep task: every user with an open journey gets
// re-evaluated. A failure for one user does not stop the rest; the first
// error is returned so asynq retries the sweep.
func (s *Sweeper) HandleSweep(ctx context.Context, _ *asynq.Task) error {
	userIDs, err := s.entries.UserIDsWithOpenJourney(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	flagged := 0

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(sweepConcurrency)
	results := make([]bool, len(userIDs))

	for i, userID := range userIDs {
		i, userID := i, userID
		group.Go(func() error {
			inconsistency, err := s.alerts.Evaluate(groupCtx, userID, now)
			if err != nil {
				s.log.Error("sweep evaluation failed", "user_id", userID, "error", err)
				return err
			}
			results[i] = inconsistency != nil
			return nil
		})
	}

	err = group.Wait()
	for _, hit := range results {
		if hit {
			flagged++
		}
	}

	s.log.Info("alert sweep completed",
		"open_journeys", len(userIDs), "flagged", flagged)
	return err
}

// NewServer builds the asynq server and mux serving sweep tasks.
func NewServer(cfg config.SchedulerConfig, sweeper *Sweeper, log *logger.Logger) (*asynq.Server, *asynq.ServeMux, error) {
	redisOpt, err := RedisClientOpt(cfg)
	if err != nil {
		return nil, nil, err
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.GetAsynqConcurrency(),
		Queues: map[string]int{
			cfg.GetAsynqQueueName(): 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			log.Error("sweep task failed", "task", task.Type(), "error", err)
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskAlertSweep, sweeper.HandleSweep)

	return server, mux, nil
}
