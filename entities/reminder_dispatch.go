package entities

import (
	"time"

	"github.com/google/uuid"

	"academy-scheduler/constant"
)

// ReminderDispatch marks that reminders for one (session, window) pair were
// handed to the notification queue. The unique index gives at-most-once
// dispatch per window under overlapping scans.
type ReminderDispatch struct {
	ID           uuid.UUID           `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SessionId    uuid.UUID           `json:"session_id" gorm:"type:uuid;not null;uniqueIndex:unique_session_window"`
	WindowKind   constant.WindowKind `json:"window_kind" gorm:"type:varchar(20);not null;uniqueIndex:unique_session_window"`
	DispatchedAt time.Time           `json:"dispatched_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (ReminderDispatch) TableName() string {
	return "reminder_dispatches"
}
