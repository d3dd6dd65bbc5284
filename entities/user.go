package entities

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	DisplayName *string   `json:"display_name" gorm:"type:varchar(255)"`
	Email       *string   `json:"email" gorm:"type:varchar(255)"`
	PushEnabled bool      `json:"push_enabled" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (User) TableName() string {
	return "users"
}
