package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"vitalis/internal/database"
	"vitalis/internal/models"
)

// NudgeService writes nudges and achievements into the product store
type NudgeService struct {
	db *database.DB
}

// NewNudgeService creates a new nudge service
func NewNudgeService(db *database.DB) *NudgeService {
	return &NudgeService{db: db}
}

// InsertNudge inserts a nudge for the notification layer to deliver
func (s *NudgeService) InsertNudge(ctx context.Context, n *models.Nudge) error {
	if n.Urgency == "" {
		n.Urgency = models.NudgeUrgencyNormal
	}
	if n.Category == "" {
		n.Category = "general"
	}
	n.CreatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO nudges (user_id, message, category, urgency, is_alert, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.UserID, n.Message, n.Category, n.Urgency, n.IsAlert, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert nudge: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		n.ID = id
	}

	log.Printf("✅ [NUDGE] Inserted %s nudge for user %s (category: %s)", n.Urgency, n.UserID, n.Category)
	return nil
}

// RecentNudges returns the user's most recent nudges, newest first
func (s *NudgeService) RecentNudges(ctx context.Context, userID string, limit int) ([]models.Nudge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, message, category, urgency, is_alert, created_at
		FROM nudges
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query nudges: %w", err)
	}
	defer rows.Close()

	var nudges []models.Nudge
	for rows.Next() {
		var n models.Nudge
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Category, &n.Urgency, &n.IsAlert, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan nudge: %w", err)
		}
		nudges = append(nudges, n)
	}
	return nudges, rows.Err()
}

// HasAchievement reports whether the user already earned the achievement type
func (s *NudgeService) HasAchievement(ctx context.Context, userID, achievementType string) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM achievements
		WHERE user_id = ? AND achievement_type = ?
		LIMIT 1`,
		userID, achievementType).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query achievement: %w", err)
	}
	return true, nil
}

// InsertAchievement records a milestone. The unique (user, type) key makes a
// concurrent duplicate insert fail instead of double-recording.
func (s *NudgeService) InsertAchievement(ctx context.Context, a *models.Achievement) error {
	a.CreatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO achievements (user_id, achievement_type, message, created_at)
		VALUES (?, ?, ?, ?)`,
		a.UserID, a.AchievementType, a.Message, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert achievement: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		a.ID = id
	}

	log.Printf("🏆 [ACHIEVEMENT] Recorded %q for user %s", a.AchievementType, a.UserID)
	return nil
}
