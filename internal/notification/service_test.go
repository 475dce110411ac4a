package notification_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/payflowhq/payflow/internal/core/datamodel/user"
	"github.com/payflowhq/payflow/internal/core/events"
	"github.com/payflowhq/payflow/internal/notification"
	userDomain "github.com/payflowhq/payflow/internal/user"
)

func TestNotification(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Module Suite")
}

type mockNotificationRepository struct {
	notifications []*notification.Notification
	nextID        int64
	createError   error
}

func newMockNotificationRepository() *mockNotificationRepository {
	return &mockNotificationRepository{nextID: 1}
}

func (m *mockNotificationRepository) Create(n *notification.Notification) error {
	if m.createError != nil {
		return m.createError
	}
	n.ID = m.nextID
	m.nextID++
	n.CreatedAt = time.Now()
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *mockNotificationRepository) ListForUser(userID int64) ([]*notification.Notification, error) {
	var out []*notification.Notification
	for i := len(m.notifications) - 1; i >= 0; i-- {
		if m.notifications[i].UserID == userID {
			out = append(out, m.notifications[i])
		}
	}
	return out, nil
}

func (m *mockNotificationRepository) CountUnread(userID int64) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepository) MarkAllRead(userID int64) error {
	for _, n := range m.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (m *mockNotificationRepository) forUser(userID int64) []*notification.Notification {
	var out []*notification.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type mockUserDirectory struct {
	byRole map[string][]*userDomain.User
}

func (m *mockUserDirectory) ListActiveByRole(role string) ([]*userDomain.User, error) {
	return m.byRole[role], nil
}

var _ = Describe("Notification EventHandler", func() {
	var (
		repo      *mockNotificationRepository
		directory *mockUserDirectory
		service   *notification.Service
		handler   *notification.EventHandler
		ctx       context.Context
	)

	BeforeEach(func() {
		repo = newMockNotificationRepository()
		directory = &mockUserDirectory{byRole: map[string][]*userDomain.User{
			user.RoleManager: {
				{ID: 10, Name: "Maria Souza", Role: user.RoleManager},
				{ID: 11, Name: "Pedro Rocha", Role: user.RoleManager},
			},
			user.RoleFinance: {
				{ID: 20, Name: "Carlos Dias", Role: user.RoleFinance},
			},
		}}
		service = notification.NewService(repo)
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		handler = notification.NewEventHandler(service, directory, logger)
		ctx = context.Background()
	})

	Describe("HandleRequestSubmitted", func() {
		It("notifies exactly every manager", func() {
			evt := events.NewRequestSubmittedEvent(7, 1, 15075, 3)
			Expect(handler.HandleRequestSubmitted(ctx, evt)).To(Succeed())

			Expect(repo.notifications).To(HaveLen(2))
			Expect(repo.forUser(10)).To(HaveLen(1))
			Expect(repo.forUser(11)).To(HaveLen(1))
			Expect(repo.forUser(10)[0].Message).To(ContainSubstring("#7"))
			Expect(repo.forUser(10)[0].Message).To(ContainSubstring("150,75"))
		})

		It("creates nothing and does not fail when no manager exists", func() {
			directory.byRole[user.RoleManager] = nil

			evt := events.NewRequestSubmittedEvent(7, 1, 15075, 3)
			Expect(handler.HandleRequestSubmitted(ctx, evt)).To(Succeed())
			Expect(repo.notifications).To(BeEmpty())
		})
	})

	Describe("HandleRequestApproved", func() {
		It("notifies the requester and every finance user", func() {
			evt := events.NewRequestApprovedEvent(7, 1, 10, 15075)
			Expect(handler.HandleRequestApproved(ctx, evt)).To(Succeed())

			Expect(repo.notifications).To(HaveLen(2))
			Expect(repo.forUser(1)).To(HaveLen(1))
			Expect(repo.forUser(1)[0].Message).To(ContainSubstring("approved"))
			Expect(repo.forUser(20)).To(HaveLen(1))
			Expect(repo.forUser(20)[0].Message).To(ContainSubstring("ready for payment"))
		})
	})

	Describe("HandleRequestRejected", func() {
		It("notifies only the requester, naming the rejecting role", func() {
			evt := events.NewRequestRejectedEvent(7, 1, "invoice mismatch", user.RoleFinance, false)
			Expect(handler.HandleRequestRejected(ctx, evt)).To(Succeed())

			Expect(repo.notifications).To(HaveLen(1))
			Expect(repo.notifications[0].UserID).To(Equal(int64(1)))
			Expect(repo.notifications[0].Message).To(ContainSubstring("finance"))
			Expect(repo.notifications[0].Message).To(ContainSubstring("invoice mismatch"))
		})

		It("words a self rejection differently", func() {
			evt := events.NewRequestRejectedEvent(7, 1, "wrong supplier", user.RoleRequester, true)
			Expect(handler.HandleRequestRejected(ctx, evt)).To(Succeed())

			Expect(repo.notifications).To(HaveLen(1))
			Expect(repo.notifications[0].Message).To(ContainSubstring("You rejected"))
		})
	})

	Describe("HandleRequestPaid", func() {
		It("notifies only the requester", func() {
			evt := events.NewRequestPaidEvent(7, 1, 15075, "receipt-1")
			Expect(handler.HandleRequestPaid(ctx, evt)).To(Succeed())

			Expect(repo.notifications).To(HaveLen(1))
			Expect(repo.notifications[0].UserID).To(Equal(int64(1)))
			Expect(repo.notifications[0].Message).To(ContainSubstring("paid"))
		})
	})

	Describe("wired through the event bus", func() {
		It("reacts to published lifecycle events", func() {
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
			bus := events.NewEventBus(logger)
			handler.RegisterEventHandlers(bus)

			evt := events.NewRequestSubmittedEvent(9, 1, 8000, 3)
			Expect(bus.PublishSync(ctx, evt)).To(Succeed())
			Expect(repo.notifications).To(HaveLen(2))
		})
	})
})

var _ = Describe("Notification Service", func() {
	var (
		repo    *mockNotificationRepository
		service *notification.Service
	)

	BeforeEach(func() {
		repo = newMockNotificationRepository()
		service = notification.NewService(repo)
	})

	It("lists newest first", func() {
		first, err := service.Notify(1, "first")
		Expect(err).NotTo(HaveOccurred())
		second, err := service.Notify(1, "second")
		Expect(err).NotTo(HaveOccurred())

		notifications, err := service.ListForUser(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(notifications).To(HaveLen(2))
		Expect(notifications[0].ID).To(Equal(second.ID))
		Expect(notifications[1].ID).To(Equal(first.ID))
	})

	It("counts and clears unread in one batch", func() {
		_, err := service.Notify(1, "a")
		Expect(err).NotTo(HaveOccurred())
		_, err = service.Notify(1, "b")
		Expect(err).NotTo(HaveOccurred())
		_, err = service.Notify(2, "c")
		Expect(err).NotTo(HaveOccurred())

		count, err := service.CountUnread(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(int64(2)))

		Expect(service.MarkAllRead(1)).To(Succeed())

		count, err = service.CountUnread(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(BeZero())

		count, err = service.CountUnread(2)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(int64(1)))
	})
})
