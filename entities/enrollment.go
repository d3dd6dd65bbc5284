package entities

import (
	"time"

	"github.com/google/uuid"

	"academy-scheduler/constant"
)

type Enrollment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserId    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index:idx_enrollments_user_id"`
	CourseId  uuid.UUID `json:"course_id" gorm:"type:uuid;not null;index:idx_enrollments_course_id"`
	Status    constant.EnrollmentStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt time.Time `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
