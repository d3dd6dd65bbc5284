package entities

import (
	"time"

	"github.com/google/uuid"

	"academy-scheduler/constant"
)

type Session struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title       string     `json:"title" gorm:"type:varchar(255);not null"`
	Description *string    `json:"description" gorm:"type:text"`
	CourseId    *uuid.UUID `json:"course_id" gorm:"type:uuid;index:idx_sessions_course_id"`
	HostId      uuid.UUID  `json:"host_id" gorm:"type:uuid;not null;index:idx_sessions_host_id"`
	Status      constant.SessionStatus `json:"status" gorm:"type:varchar(20);not null;default:'scheduled';index:idx_sessions_status"`

	ScheduledAt *time.Time `json:"scheduled_at" gorm:"type:timestamptz;index:idx_sessions_scheduled_at"`
	StartedAt   *time.Time `json:"started_at" gorm:"type:timestamptz"`
	EndedAt     *time.Time `json:"ended_at" gorm:"type:timestamptz"`

	IsRecurring           bool    `json:"is_recurring" gorm:"not null;default:false"`
	RecurrenceDay         *string `json:"recurrence_day" gorm:"type:varchar(10)"`
	RecurrenceTime        *string `json:"recurrence_time" gorm:"type:varchar(8)"`
	RecurrenceDescription *string `json:"recurrence_description" gorm:"type:varchar(255)"`

	// Set on rollover-created occurrences; the unique index is what makes
	// rollover safe under retried webhooks.
	PrecedingSessionId *uuid.UUID `json:"preceding_session_id" gorm:"type:uuid;uniqueIndex:unique_preceding_session_id"`

	MeetingRoomName string `json:"meeting_room_name" gorm:"type:varchar(255)"`
	MeetingRoomUrl  string `json:"meeting_room_url" gorm:"type:varchar(500)"`

	RecordingUrl             *string `json:"recording_url" gorm:"type:varchar(500)"`
	RecordingDurationSeconds *int    `json:"recording_duration_seconds" gorm:"type:integer"`
	RecordingObjectName      *string `json:"recording_object_name" gorm:"type:varchar(500)"`

	Summary       *string `json:"summary" gorm:"type:text"`
	KeyPoints     *string `json:"key_points" gorm:"type:jsonb"`
	TopicsCovered *string `json:"topics_covered" gorm:"type:jsonb"`

	PriceAmount   int64  `json:"price_amount" gorm:"type:bigint;not null;default:0"`
	PriceCurrency string `json:"price_currency" gorm:"type:varchar(3);not null;default:'USD'"`
	IsPurchasable bool   `json:"is_purchasable" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (Session) TableName() string {
	return "sessions"
}

// HasRecurrenceRule reports whether the session carries a complete weekly rule.
func (s *Session) HasRecurrenceRule() bool {
	return s.IsRecurring && s.RecurrenceDay != nil && *s.RecurrenceDay != "" &&
		s.RecurrenceTime != nil && *s.RecurrenceTime != ""
}
