package sweep

import (
	"fmt"

	"github.com/hibiken/asynq"

	"timeclock_backend/platform/config"
	"timeclock_backend/platform/logger"
)

// NewScheduler builds an asynq scheduler that enqueues the alert sweep task
// at the configured interval.
func NewScheduler(cfg config.SchedulerConfig, log *logger.Logger) (*asynq.Scheduler, error) {
	redisOpt, err := RedisClientOpt(cfg)
	if err != nil {
		return nil, err
	}

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{})

	task := asynq.NewTask(TaskAlertSweep, nil)
	entryID, err := scheduler.Register(
		fmt.Sprintf("@every %s", cfg.GetSweepInterval()),
		task,
		asynq.Queue(cfg.GetAsynqQueueName()),
	)
	if err != nil {
		return nil, fmt.Errorf("register sweep task: %w", err)
	}

	log.Info("sweep task scheduled",
		"entry_id", entryID, "interval", cfg.GetSweepInterval().String())
	return scheduler, nil
}
