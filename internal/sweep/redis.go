package sweep

import (
	"crypto/tls"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"timeclock_backend/platform/config"
)

// RedisClientOpt builds the asynq Redis connection options from
// configuration.
func RedisClientOpt(cfg config.SchedulerConfig) (asynq.RedisClientOpt, error) {
	if cfg.GetRedisURL() == "" {
		return asynq.RedisClientOpt{}, fmt.Errorf("REDIS_URL is required for the sweep scheduler")
	}

	parsed, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return asynq.RedisClientOpt{}, fmt.Errorf("parse redis url: %w", err)
	}

	opt := asynq.RedisClientOpt{
		Addr:     parsed.Addr,
		Username: parsed.Username,
		Password: parsed.Password,
		DB:       parsed.DB,
	}
	if parsed.TLSConfig != nil {
		opt.TLSConfig = parsed.TLSConfig
		if cfg.GetRedisTLSInsecure() {
			opt.TLSConfig = &tls.Config{InsecureSkipVerify: true}
		}
	}

	return opt, nil
}
