package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"vitalis/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// Scheduler runs the background jobs: the nightly learning batch, the
// morning/evening analysis fan-outs, and the follow-up dispatcher. Every
// job runs behind a Redis lock so only one instance executes it.
type Scheduler struct {
	scheduler  gocron.Scheduler
	redis      *services.RedisService
	instanceID string
}

// NewScheduler creates a scheduler with UTC cron semantics
func NewScheduler(redis *services.RedisService) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		scheduler:  scheduler,
		redis:      redis,
		instanceID: uuid.New().String(),
	}, nil
}

// RegisterCron registers a job on a cron expression (UTC)
func (s *Scheduler) RegisterCron(name string, cronExpr string, lockTTL time.Duration, run func(ctx context.Context) error) error {
	_, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			s.runLocked(name, lockTTL, run)
		}),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", name, err)
	}

	log.Printf("📅 [SCHEDULER] Registered job '%s' (cron: %s)", name, cronExpr)
	return nil
}

// RegisterInterval registers a job that runs on a fixed interval
func (s *Scheduler) RegisterInterval(name string, interval time.Duration, lockTTL time.Duration, run func(ctx context.Context) error) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			s.runLocked(name, lockTTL, run)
		}),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", name, err)
	}

	log.Printf("📅 [SCHEDULER] Registered job '%s' (every %v)", name, interval)
	return nil
}

// runLocked executes a job behind a distributed lock. The lock key includes
// a minute-level window so a retried or skewed instance cannot double-run
// within the same scheduling tick.
func (s *Scheduler) runLocked(name string, lockTTL time.Duration, run func(ctx context.Context) error) {
	ctx := context.Background()

	lockKey := fmt.Sprintf("job-lock:%s:%d", name, time.Now().Unix()/60)
	acquired, err := s.redis.AcquireLock(ctx, lockKey, s.instanceID, lockTTL)
	if err != nil {
		log.Printf("❌ [SCHEDULER] Failed to acquire lock for job '%s': %v", name, err)
		return
	}
	if !acquired {
		log.Printf("⏭️ [SCHEDULER] Job '%s' already running on another instance", name)
		return
	}
	defer func() {
		if _, err := s.redis.ReleaseLock(ctx, lockKey, s.instanceID); err != nil {
			log.Printf("⚠️ [SCHEDULER] Failed to release lock for job '%s': %v", name, err)
		}
	}()

	start := time.Now()
	log.Printf("▶️ [SCHEDULER] Running job '%s'", name)

	if err := run(ctx); err != nil {
		log.Printf("❌ [SCHEDULER] Job '%s' failed after %v: %v", name, time.Since(start), err)
		return
	}

	log.Printf("✅ [SCHEDULER] Job '%s' completed in %v", name, time.Since(start))
}

// Start begins executing registered jobs
func (s *Scheduler) Start() {
	s.scheduler.Start()
	log.Printf("🚀 [SCHEDULER] Started with %d jobs", len(s.scheduler.Jobs()))
}

// Stop shuts the scheduler down and waits for running jobs
func (s *Scheduler) Stop() error {
	log.Println("🛑 [SCHEDULER] Stopping...")
	return s.scheduler.Shutdown()
}
