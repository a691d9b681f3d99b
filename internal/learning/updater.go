package learning

import (
	"context"
	"fmt"

	"vitalis/internal/models"
	"vitalis/internal/services"
)

// Updater merges miner outputs into the user model and writes the derived
// memory facts. Both writes are idempotent, so re-running a window with no
// new inputs reproduces the same state.
type Updater struct {
	userModels *services.UserModelService
	memory     *services.MemoryService
}

// NewUpdater creates a model updater
func NewUpdater(userModels *services.UserModelService, memory *services.MemoryService) *Updater {
	return &Updater{userModels: userModels, memory: memory}
}

// Apply merges one run's miner outputs and upserts the memory facts they
// imply. Nil miner outputs leave their model fields and facts untouched.
func (u *Updater) Apply(ctx context.Context, userID string, upd models.UserModelUpdate) error {
	if _, err := u.userModels.Apply(ctx, userID, upd); err != nil {
		return fmt.Errorf("failed to apply user model update: %w", err)
	}

	for _, fact := range deriveFacts(userID, upd) {
		if err := u.memory.Upsert(ctx, fact); err != nil {
			return fmt.Errorf("failed to write memory fact %s/%s: %w", fact.MemoryType, fact.Key, err)
		}
	}
	return nil
}

// deriveFacts selects miner outputs worth surfacing as standalone memory
// facts for the decision-path prompt.
func deriveFacts(userID string, upd models.UserModelUpdate) []*models.MemoryFact {
	var facts []*models.MemoryFact

	if ep := upd.EngagementPatterns; ep != nil {
		confidence := sampleConfidence(ep.SampleCount)
		if len(ep.PreferredHours) > 0 {
			facts = append(facts, &models.MemoryFact{
				UserID:     userID,
				MemoryType: models.MemoryTypePattern,
				Key:        "preferred_nudge_hours",
				Value:      ep.PreferredHours,
				Source:     models.MemorySourceLearned,
				Confidence: confidence,
			})
		}
		if len(ep.ResponsiveCategories) > 0 {
			facts = append(facts, &models.MemoryFact{
				UserID:     userID,
				MemoryType: models.MemoryTypePreference,
				Key:        "responsive_categories",
				Value:      ep.ResponsiveCategories,
				Source:     models.MemorySourceLearned,
				Confidence: confidence,
			})
		}
		if len(ep.IgnoredCategories) > 0 {
			facts = append(facts, &models.MemoryFact{
				UserID:     userID,
				MemoryType: models.MemoryTypePreference,
				Key:        "ignored_categories",
				Value:      ep.IgnoredCategories,
				Source:     models.MemorySourceLearned,
				Confidence: confidence,
			})
		}
	}

	if hp := upd.HealthPriorities; hp != nil && hp.PrimaryFocus != "" {
		total := 0
		for _, c := range hp.MetricFrequency {
			total += c
		}
		confidence := 0.5
		if total > 0 {
			confidence = float64(hp.MetricFrequency[hp.PrimaryFocus]) / float64(total)
		}
		facts = append(facts, &models.MemoryFact{
			UserID:     userID,
			MemoryType: models.MemoryTypeFact,
			Key:        "primary_health_focus",
			Value:      hp.PrimaryFocus,
			Source:     models.MemorySourceLearned,
			Confidence: confidence,
		})
	}

	return facts
}

// sampleConfidence maps a sample count to [0,1]: 30 samples in a 30-day
// window is full confidence.
func sampleConfidence(samples int) float64 {
	c := float64(samples) / 30.0
	if c > 1 {
		return 1
	}
	if c < 0.1 {
		return 0.1
	}
	return c
}
