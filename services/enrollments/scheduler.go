package enrollments

import (
	"context"
	"time"

	"school/logger"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// StartScheduler runs DispatchPending on schedule (cron syntax or "@every 30s")
// and returns the started cron so the caller can stop it at shutdown.
func StartScheduler(db *gorm.DB, schedule string, p Policy) (*cron.Cron, error) {
	log := logger.Log.With("component", "enrollment-outbox")
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		n, err := DispatchPending(ctx, db, p)
		if err != nil {
			log.Warn("dispatch pending enrollment intents", "error", err)
			return
		}
		if n > 0 {
			log.Info("enrollment intents dispatched", "count", n)
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Info("enrollment outbox scheduler started", "schedule", schedule, "max_attempts", p.withDefaults().MaxAttempts)
	return c, nil
}
