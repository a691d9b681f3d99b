package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trigger types that start one decision-path invocation
const (
	TriggerScheduled       = "scheduled"
	TriggerVitalLogged     = "vital_logged"
	TriggerMorningAnalysis = "morning_analysis"
	TriggerEveningAnalysis = "evening_analysis"
	TriggerStreakCheck     = "streak_check"
	TriggerManual          = "manual"
)

// ValidTriggerType reports whether t is a known trigger type
func ValidTriggerType(t string) bool {
	switch t {
	case TriggerScheduled, TriggerVitalLogged, TriggerMorningAnalysis,
		TriggerEveningAnalysis, TriggerStreakCheck, TriggerManual:
		return true
	}
	return false
}

// Action types recorded in the append-only action log
const (
	ActionNudge          = "nudge"
	ActionCelebration    = "celebration"
	ActionGoalAdjustment = "goal_adjustment"
	ActionFollowup       = "followup_scheduled"
	ActionEscalation     = "escalation"
)

// Action log entry statuses
const (
	ActionStatusExecuted = "executed"
	ActionStatusFailed   = "failed"
)

// ActionLogEntry is one agent action. The collection is append-only and is
// the sole source of truth for duplicate suppression and quota counting —
// entries are never mutated or deleted.
type ActionLogEntry struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        string             `bson:"userId" json:"user_id"`
	ActionType    string             `bson:"actionType" json:"action_type"`
	Payload       map[string]any     `bson:"payload,omitempty" json:"payload,omitempty"`
	TriggerReason string             `bson:"triggerReason" json:"trigger_reason"`
	TriggerType   string             `bson:"triggerType" json:"trigger_type"`
	Status        string             `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"createdAt" json:"created_at"`
}

// TriggerRequest is the decision-path request body.
// UserID is only honored for service callers; end-user callers always act
// on themselves.
type TriggerRequest struct {
	UserID         string         `json:"userId,omitempty"`
	TriggerType    string         `json:"triggerType"`
	TriggerPayload map[string]any `json:"triggerPayload,omitempty"`
}

// ActionResult reports the outcome of one proposed tool call
type ActionResult struct {
	Tool    string          `json:"tool"`
	Args    json.RawMessage `json:"args,omitempty"`
	Success bool            `json:"success"`
	Blocked bool            `json:"blocked,omitempty"`
	Reason  string          `json:"reason,omitempty"` // Guardrail denial reason
	Result  string          `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ContextSnapshot carries key context values back to the caller for diagnostics
type ContextSnapshot struct {
	Streak     int     `json:"streak"`
	Score      float64 `json:"score"`
	BPTrend    string  `json:"bpTrend"`
	SugarTrend string  `json:"sugarTrend"`
}

// DecisionResponse is the decision-path response body
type DecisionResponse struct {
	Success  bool            `json:"success"`
	Analysis string          `json:"analysis,omitempty"`
	Actions  []ActionResult  `json:"actions"`
	Context  ContextSnapshot `json:"context"`
}

// Scheduled task statuses
const (
	TaskStatusPending    = "pending"
	TaskStatusDispatched = "dispatched"
)

// ScheduledTask is the output-only follow-up queue written by the
// schedule_followup tool and consumed by the follow-up dispatcher job.
type ScheduledTask struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       string             `bson:"userId" json:"user_id"`
	TaskType     string             `bson:"taskType" json:"task_type"`
	ScheduledFor time.Time          `bson:"scheduledFor" json:"scheduled_for"`
	Priority     int                `bson:"priority" json:"priority"`
	Payload      map[string]any     `bson:"payload,omitempty" json:"payload,omitempty"`
	Status       string             `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"createdAt" json:"created_at"`
	DispatchedAt *time.Time         `bson:"dispatchedAt,omitempty" json:"dispatched_at,omitempty"`
}
