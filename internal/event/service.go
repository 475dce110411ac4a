package event

import (
	"fmt"

	internal_errors "github.com/payflowhq/payflow/internal"
)

type Repository interface {
	GetByID(eventID int64) (*Event, error)
	ListAll() ([]*Event, error)
	ListActiveForUser(userID int64) ([]*Event, error)
	Create(e *Event) error
	Update(e *Event) error
}

// SpendRepository reports how much has already been paid out per cost
// center. Implemented by the payment request store.
type SpendRepository interface {
	SpentByEvent() (map[int64]int64, error)
}

type Service struct {
	repo      Repository
	spendRepo SpendRepository
}

func NewService(repo Repository, spendRepo SpendRepository) *Service {
	return &Service{
		repo:      repo,
		spendRepo: spendRepo,
	}
}

func (s *Service) GetByID(eventID int64) (*Event, error) {
	e, err := s.repo.GetByID(eventID)
	if err != nil {
		return nil, err
	}

	spent, err := s.spendRepo.SpentByEvent()
	if err != nil {
		return nil, fmt.Errorf("failed to compute spent amounts: %w", err)
	}
	e.SpentCents = spent[e.ID]

	return e, nil
}

func (s *Service) List() ([]*Event, error) {
	events, err := s.repo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	spent, err := s.spendRepo.SpentByEvent()
	if err != nil {
		return nil, fmt.Errorf("failed to compute spent amounts: %w", err)
	}
	for _, e := range events {
		e.SpentCents = spent[e.ID]
	}

	return events, nil
}

// ListCreatable returns the cost centers a requester may submit new payment
// requests against: active events where the user is a member.
func (s *Service) ListCreatable(userID int64) ([]*Event, error) {
	events, err := s.repo.ListActiveForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list creatable events: %w", err)
	}
	return events, nil
}

func (s *Service) Create(dto *CreateEventDTO) (*Event, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	e := &Event{
		Name:          dto.Name,
		Status:        StatusActive,
		Type:          dto.Type,
		BudgetCents:   dto.BudgetCents,
		Subcategories: dto.Subcategories,
		MemberIDs:     dto.MemberIDs,
	}
	if e.MemberIDs == nil {
		e.MemberIDs = []int64{}
	}

	if err := s.repo.Create(e); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return e, nil
}

func (s *Service) Update(eventID int64, dto *UpdateEventDTO) (*Event, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	e, err := s.repo.GetByID(eventID)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		e.Name = *dto.Name
	}
	if dto.Status != nil {
		e.Status = *dto.Status
	}
	if dto.BudgetCents != nil {
		e.BudgetCents = dto.BudgetCents
	}
	if dto.Subcategories != nil {
		e.Subcategories = *dto.Subcategories
	}
	if dto.MemberIDs != nil {
		e.MemberIDs = *dto.MemberIDs
	}

	if err := s.repo.Update(e); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return e, nil
}

// AssertAcceptsRequests verifies the event exists, is active and that the
// given requester is among its members.
func (s *Service) AssertAcceptsRequests(eventID, requesterID int64) (*Event, error) {
	e, err := s.repo.GetByID(eventID)
	if err != nil {
		return nil, err
	}

	if !e.IsActive() || !e.HasMember(requesterID) {
		return nil, internal_errors.ErrEventNotAvailable
	}
	return e, nil
}
