package dto

import (
	"time"

	"github.com/google/uuid"

	"academy-scheduler/constant"
)

// SessionSnapshot is the slice of a session a notification needs; queue
// consumers never read the sessions table.
type SessionSnapshot struct {
	SessionId   uuid.UUID  `json:"sessionId"`
	Title       string     `json:"title"`
	ScheduledAt *time.Time `json:"scheduledAt"`
	JoinUrl     string     `json:"joinUrl"`
}

// NotificationMessage is the payload published to the notifications queue.
// One message carries one audience batch for one event.
type NotificationMessage struct {
	Kind         constant.NotificationKind `json:"kind"`
	Session      SessionSnapshot           `json:"session"`
	UserIds      []uuid.UUID               `json:"userIds"`
	MinutesUntil int                       `json:"minutesUntil,omitempty"`
	RecordingUrl string                    `json:"recordingUrl,omitempty"`
}

// RoomEvent is the video provider's webhook payload.
type RoomEvent struct {
	Type      string `json:"type" binding:"required"`
	Room      string `json:"room" binding:"required"`
	Timestamp int64  `json:"timestamp"`
}

const (
	RoomEventSessionStarted = "session.started"
	RoomEventSessionEnded   = "session.ended"
)

// RolloverResult reports what the rollover service did for one ended session.
type RolloverResult struct {
	Created     bool       `json:"created"`
	Reason      string     `json:"reason,omitempty"`
	SessionId   uuid.UUID  `json:"sessionId,omitempty"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
}

// DispatchSummary counts per-channel outcomes of one notification batch.
type DispatchSummary struct {
	Attempted   int `json:"attempted"`
	PushSent    int `json:"pushSent"`
	PushFailed  int `json:"pushFailed"`
	EmailSent   int `json:"emailSent"`
	EmailFailed int `json:"emailFailed"`
}

// SessionSummary is the structure expected back from the LLM gateway.
type SessionSummary struct {
	Summary       string   `json:"summary"`
	KeyPoints     []string `json:"key_points"`
	TopicsCovered []string `json:"topics_covered"`
}
