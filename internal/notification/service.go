package notification

import (
	"fmt"
)

type Repository interface {
	Create(n *Notification) error
	ListForUser(userID int64) ([]*Notification, error)
	CountUnread(userID int64) (int64, error)
	MarkAllRead(userID int64) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Notify(userID int64, message string) (*Notification, error) {
	n := &Notification{
		UserID:  userID,
		Message: message,
	}
	if err := s.repo.Create(n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return n, nil
}

// ListForUser returns the user's notifications newest first.
func (s *Service) ListForUser(userID int64) ([]*Notification, error) {
	notifications, err := s.repo.ListForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *Service) CountUnread(userID int64) (int64, error) {
	return s.repo.CountUnread(userID)
}

// MarkAllRead flips every unread notification for the user in one batched
// update.
func (s *Service) MarkAllRead(userID int64) error {
	if err := s.repo.MarkAllRead(userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
