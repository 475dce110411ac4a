package event

import "time"

type Event struct {
	ID            int64     `gorm:"primaryKey"`
	Name          string    `gorm:"column:name;not null"`
	Status        string    `gorm:"column:status;not null;default:active"`
	Type          string    `gorm:"column:type;not null;default:event"`
	BudgetCents   *int64    `gorm:"column:budget_cents"`
	Subcategories string    `gorm:"column:subcategories"`
	CreatedAt     time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time `gorm:"column:updated_at;default:now()"`
}

func (Event) TableName() string {
	return "events"
}

// EventMember links an event (cost center) to a requester allowed to submit
// payment requests against it.
type EventMember struct {
	ID      int64 `gorm:"primaryKey"`
	EventID int64 `gorm:"column:event_id;not null;index"`
	UserID  int64 `gorm:"column:user_id;not null;index"`
}

func (EventMember) TableName() string {
	return "event_members"
}
