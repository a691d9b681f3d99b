package jobs

import (
	"context"
	"log"

	"vitalis/internal/learning"
)

// LearningJob runs the nightly learning batch over all onboarded users
type LearningJob struct {
	learning *learning.Service
}

// NewLearningJob creates a new learning job
func NewLearningJob(learningService *learning.Service) *LearningJob {
	return &LearningJob{learning: learningService}
}

// Run executes one learning batch. Per-user failures are contained by the
// batch itself, so an error here means the batch could not start at all.
func (j *LearningJob) Run(ctx context.Context) error {
	results, err := j.learning.RunBatch(ctx)
	if err != nil {
		return err
	}

	succeeded := 0
	for _, r := range results {
		if r.OK {
			succeeded++
		}
	}
	log.Printf("🧠 [LEARNING-JOB] Batch complete: %d/%d users succeeded", succeeded, len(results))
	return nil
}
