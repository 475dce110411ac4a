package notification

import "time"

type Notification struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	Message   string    `gorm:"column:message;not null"`
	Read      bool      `gorm:"column:read;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
}

func (Notification) TableName() string {
	return "notifications"
}
