package event_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal_errors "github.com/payflowhq/payflow/internal"
	"github.com/payflowhq/payflow/internal/event"
)

func TestEvent(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Event Module Suite")
}

type mockEventRepository struct {
	events map[int64]*event.Event
	nextID int64
}

func newMockEventRepository() *mockEventRepository {
	return &mockEventRepository{
		events: make(map[int64]*event.Event),
		nextID: 1,
	}
}

func (m *mockEventRepository) GetByID(eventID int64) (*event.Event, error) {
	e, ok := m.events[eventID]
	if !ok {
		return nil, internal_errors.ErrEventNotFound
	}
	copied := *e
	return &copied, nil
}

func (m *mockEventRepository) ListAll() ([]*event.Event, error) {
	var out []*event.Event
	for _, e := range m.events {
		out = append(out, e)
	}
	return out, nil
}

func (m *mockEventRepository) ListActiveForUser(userID int64) ([]*event.Event, error) {
	var out []*event.Event
	for _, e := range m.events {
		if e.IsActive() && e.HasMember(userID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEventRepository) Create(e *event.Event) error {
	e.ID = m.nextID
	m.nextID++
	stored := *e
	m.events[e.ID] = &stored
	return nil
}

func (m *mockEventRepository) Update(e *event.Event) error {
	stored := *e
	m.events[e.ID] = &stored
	return nil
}

type mockSpendRepository struct {
	spent map[int64]int64
}

func (m *mockSpendRepository) SpentByEvent() (map[int64]int64, error) {
	return m.spent, nil
}

var _ = Describe("Event Service", func() {
	var (
		repo      *mockEventRepository
		spendRepo *mockSpendRepository
		service   *event.Service
	)

	BeforeEach(func() {
		repo = newMockEventRepository()
		spendRepo = &mockSpendRepository{spent: map[int64]int64{}}
		service = event.NewService(repo, spendRepo)
	})

	seed := func(name, status string, members ...int64) *event.Event {
		e := &event.Event{Name: name, Status: status, Type: event.TypeEvent, MemberIDs: members}
		Expect(repo.Create(e)).To(Succeed())
		return e
	}

	Describe("ListCreatable", func() {
		It("returns only active events the user is a member of", func() {
			active := seed("Tech Conference", event.StatusActive, 1, 2)
			seed("Closed Gala", event.StatusInactive, 1)
			seed("Other Team Offsite", event.StatusActive, 3)

			creatable, err := service.ListCreatable(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(creatable).To(HaveLen(1))
			Expect(creatable[0].ID).To(Equal(active.ID))
		})
	})

	Describe("AssertAcceptsRequests", func() {
		It("accepts an active event with the requester as member", func() {
			e := seed("Tech Conference", event.StatusActive, 1)

			got, err := service.AssertAcceptsRequests(e.ID, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(e.ID))
		})

		It("refuses an inactive event", func() {
			e := seed("Closed Gala", event.StatusInactive, 1)

			_, err := service.AssertAcceptsRequests(e.ID, 1)
			Expect(err).To(MatchError(internal_errors.ErrEventNotAvailable))
		})

		It("refuses a non-member", func() {
			e := seed("Tech Conference", event.StatusActive, 1)

			_, err := service.AssertAcceptsRequests(e.ID, 99)
			Expect(err).To(MatchError(internal_errors.ErrEventNotAvailable))
		})

		It("propagates not found", func() {
			_, err := service.AssertAcceptsRequests(404, 1)
			Expect(err).To(MatchError(internal_errors.ErrEventNotFound))
		})
	})

	Describe("spent decoration", func() {
		It("attaches paid totals per event and leaves others at zero", func() {
			a := seed("Tech Conference", event.StatusActive, 1)
			b := seed("Acme Holding", event.StatusActive, 1)
			spendRepo.spent[a.ID] = 15075

			got, err := service.GetByID(a.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.SpentCents).To(Equal(int64(15075)))

			got, err = service.GetByID(b.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.SpentCents).To(BeZero())
		})
	})

	Describe("Create", func() {
		It("starts events active and defaults the type", func() {
			e, err := service.Create(&event.CreateEventDTO{Name: "Spring Summit", MemberIDs: []int64{1}})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Status).To(Equal(event.StatusActive))
			Expect(e.Type).To(Equal(event.TypeEvent))
		})

		It("rejects a missing name", func() {
			_, err := service.Create(&event.CreateEventDTO{})
			Expect(err).To(HaveOccurred())
		})

		It("rejects a negative budget", func() {
			budget := int64(-1)
			_, err := service.Create(&event.CreateEventDTO{Name: "X", BudgetCents: &budget})
			Expect(err).To(HaveOccurred())
		})
	})
})
