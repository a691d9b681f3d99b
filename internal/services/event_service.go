package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// ActionEvent is published on `user:{id}:agent` whenever the agent executes
// an action, so the notification/UI surface can react without polling.
type ActionEvent struct {
	Type       string         `json:"type"` // Always "agent_action"
	UserID     string         `json:"userId"`
	ActionType string         `json:"actionType"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// EventService publishes agent events over Redis pub/sub. A nil EventService
// is valid and drops events, so callers never need to nil-check.
type EventService struct {
	redis *RedisService
}

// NewEventService creates an event publisher backed by Redis
func NewEventService(redis *RedisService) *EventService {
	return &EventService{redis: redis}
}

// PublishAction publishes an executed-action event on the user's agent channel.
// Publish failures are logged, not returned: the action already happened and
// event delivery is best-effort.
func (s *EventService) PublishAction(ctx context.Context, userID, actionType string, payload map[string]any) {
	if s == nil || s.redis == nil {
		return
	}

	event := ActionEvent{
		Type:       "agent_action",
		UserID:     userID,
		ActionType: actionType,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("⚠️ [EVENTS] Failed to marshal action event: %v", err)
		return
	}

	channel := fmt.Sprintf("user:%s:agent", userID)
	if err := s.redis.Publish(ctx, channel, data); err != nil {
		log.Printf("⚠️ [EVENTS] Failed to publish action event on %s: %v", channel, err)
	}
}
