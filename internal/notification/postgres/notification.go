package postgres

import (
	notificationDatamodel "github.com/payflowhq/payflow/internal/core/datamodel/notification"
	"github.com/payflowhq/payflow/internal/notification"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(n *notification.Notification) error {
	dm := notification.ToDataModel(n)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	n.ID = dm.ID
	n.CreatedAt = dm.CreatedAt
	return nil
}

func (r *NotificationRepository) ListForUser(userID int64) ([]*notification.Notification, error) {
	var dms []notificationDatamodel.Notification
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}

	notifications := make([]*notification.Notification, 0, len(dms))
	for i := range dms {
		notifications = append(notifications, notification.FromDataModel(&dms[i]))
	}
	return notifications, nil
}

func (r *NotificationRepository) CountUnread(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&notificationDatamodel.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkAllRead is a single batched update.
func (r *NotificationRepository) MarkAllRead(userID int64) error {
	return r.db.Model(&notificationDatamodel.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}
