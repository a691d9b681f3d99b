package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vitalis/internal/database"
	"vitalis/internal/models"
)

// ErrNoActiveGoal is returned when a goal adjustment targets a goal type the
// user has no active goal for.
var ErrNoActiveGoal = errors.New("no active goal of that type")

// HealthService reads and writes the MySQL vitals/product store
type HealthService struct {
	db *database.DB
}

// NewHealthService creates a new health service
func NewHealthService(db *database.DB) *HealthService {
	return &HealthService{db: db}
}

// RecentVitals returns readings of one metric since the given time, ordered
// oldest first (the order the trend analyzers expect).
func (s *HealthService) RecentVitals(ctx context.Context, userID, metricType string, since time.Time) ([]models.VitalReading, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, metric_type, value, value2, unit, recorded_at
		FROM vitals
		WHERE user_id = ? AND metric_type = ? AND recorded_at >= ?
		ORDER BY recorded_at ASC`,
		userID, metricType, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query vitals: %w", err)
	}
	defer rows.Close()

	var readings []models.VitalReading
	for rows.Next() {
		var r models.VitalReading
		if err := rows.Scan(&r.ID, &r.UserID, &r.MetricType, &r.Value, &r.Value2, &r.Unit, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vital reading: %w", err)
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// RecordVital inserts a reading and the matching health-log activity entry
func (s *HealthService) RecordVital(ctx context.Context, r *models.VitalReading) error {
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO vitals (user_id, metric_type, value, value2, unit, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.UserID, r.MetricType, r.Value, r.Value2, r.Unit, r.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to insert vital: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		r.ID = id
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO health_logs (user_id, metric_type, logged_at)
		VALUES (?, ?, ?)`,
		r.UserID, r.MetricType, r.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to insert health log: %w", err)
	}

	return nil
}

// HealthLogsSince returns the user's logging activity since the given time,
// ordered oldest first.
func (s *HealthService) HealthLogsSince(ctx context.Context, userID string, since time.Time) ([]models.HealthLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, metric_type, logged_at
		FROM health_logs
		WHERE user_id = ? AND logged_at >= ?
		ORDER BY logged_at ASC`,
		userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query health logs: %w", err)
	}
	defer rows.Close()

	var logs []models.HealthLog
	for rows.Next() {
		var l models.HealthLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.MetricType, &l.LoggedAt); err != nil {
			return nil, fmt.Errorf("failed to scan health log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// Streak computes the consecutive-day logging streak ending today or
// yesterday. A day counts when it has at least one health-log entry.
func (s *HealthService) Streak(ctx context.Context, userID string, now time.Time) (models.StreakState, error) {
	// 90 days of distinct logging days is plenty for any realistic streak
	rows, err := s.db.QueryContext(ctx, `
		SELECT DATE(logged_at) AS day, MAX(logged_at) AS last_log
		FROM health_logs
		WHERE user_id = ? AND logged_at >= ?
		GROUP BY DATE(logged_at)
		ORDER BY day DESC`,
		userID, now.AddDate(0, 0, -90))
	if err != nil {
		return models.StreakState{}, fmt.Errorf("failed to query streak days: %w", err)
	}
	defer rows.Close()

	type dayEntry struct {
		day     time.Time
		lastLog time.Time
	}
	var days []dayEntry
	for rows.Next() {
		var e dayEntry
		if err := rows.Scan(&e.day, &e.lastLog); err != nil {
			return models.StreakState{}, fmt.Errorf("failed to scan streak day: %w", err)
		}
		days = append(days, e)
	}
	if err := rows.Err(); err != nil {
		return models.StreakState{}, err
	}

	if len(days) == 0 {
		return models.StreakState{}, nil
	}

	today := now.Truncate(24 * time.Hour)
	head := days[0].day.Truncate(24 * time.Hour)

	// A streak survives until a full day is missed: the most recent logging
	// day must be today or yesterday.
	if head.Before(today.AddDate(0, 0, -1)) {
		return models.StreakState{}, nil
	}

	streak := 1
	lastLogged := days[0].lastLog
	for i := 1; i < len(days); i++ {
		prev := days[i-1].day.Truncate(24 * time.Hour)
		cur := days[i].day.Truncate(24 * time.Hour)
		if !cur.Equal(prev.AddDate(0, 0, -1)) {
			break
		}
		streak++
	}

	return models.StreakState{Current: streak, LastLoggedAt: &lastLogged}, nil
}

// LatestScore returns the most recent computed health score, or nil when the
// user has none yet.
func (s *HealthService) LatestScore(ctx context.Context, userID string) (*models.HealthScore, error) {
	var score models.HealthScore
	err := s.db.QueryRowContext(ctx, `
		SELECT score, computed_at
		FROM health_scores
		WHERE user_id = ?
		ORDER BY computed_at DESC
		LIMIT 1`,
		userID).Scan(&score.Score, &score.ComputedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query health score: %w", err)
	}
	return &score, nil
}

// ActiveGoals returns the user's active goals
func (s *HealthService) ActiveGoals(ctx context.Context, userID string) ([]models.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, goal_type, target, unit, active, COALESCE(audit_note, ''), created_at, updated_at
		FROM goals
		WHERE user_id = ? AND active = TRUE
		ORDER BY created_at ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		var g models.Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.GoalType, &g.Target, &g.Unit, &g.Active, &g.AuditNote, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// ActiveGoalByType returns the single active goal of the given type.
// Returns ErrNoActiveGoal when the user has none.
func (s *HealthService) ActiveGoalByType(ctx context.Context, userID, goalType string) (*models.Goal, error) {
	var g models.Goal
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, goal_type, target, unit, active, COALESCE(audit_note, ''), created_at, updated_at
		FROM goals
		WHERE user_id = ? AND goal_type = ? AND active = TRUE
		LIMIT 1`,
		userID, goalType).Scan(&g.ID, &g.UserID, &g.GoalType, &g.Target, &g.Unit, &g.Active, &g.AuditNote, &g.CreatedAt, &g.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoActiveGoal
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query goal: %w", err)
	}
	return &g, nil
}

// AdjustGoalTarget updates a goal's target. The audit note records the
// previous target so adjustments stay traceable.
func (s *HealthService) AdjustGoalTarget(ctx context.Context, goalID int64, newTarget float64, auditNote string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE goals SET target = ?, audit_note = ?, updated_at = ?
		WHERE id = ?`,
		newTarget, auditNote, time.Now().UTC(), goalID)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("goal %d not found", goalID)
	}
	return nil
}
