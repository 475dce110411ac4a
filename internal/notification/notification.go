package notification

import (
	"time"

	notificationDatamodel "github.com/payflowhq/payflow/internal/core/datamodel/notification"
)

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func ToDataModel(n *Notification) *notificationDatamodel.Notification {
	return &notificationDatamodel.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func FromDataModel(dm *notificationDatamodel.Notification) *Notification {
	return &Notification{
		ID:        dm.ID,
		UserID:    dm.UserID,
		Message:   dm.Message,
		Read:      dm.Read,
		CreatedAt: dm.CreatedAt,
	}
}
