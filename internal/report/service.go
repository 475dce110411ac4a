package report

import (
	"fmt"
	"time"

	"github.com/payflowhq/payflow/internal/request"
)

// Repository feeds the exports: paid requests in a creation-date range,
// decorated with requester and event names.
type Repository interface {
	ListPaidCreatedBetween(start, end time.Time) ([]*request.Request, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// PaymentsCSV renders the paid requests created in [start, end] as the
// semicolon-delimited export format.
func (s *Service) PaymentsCSV(start, end time.Time) ([]byte, error) {
	requests, err := s.repo.ListPaidCreatedBetween(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load paid requests: %w", err)
	}
	return renderCSV(requests), nil
}

// PaymentsCalendar renders the paid requests created in [start, end] as an
// iCalendar file with one all-day event per payment.
func (s *Service) PaymentsCalendar(start, end time.Time) ([]byte, error) {
	requests, err := s.repo.ListPaidCreatedBetween(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load paid requests: %w", err)
	}
	return renderICS(requests), nil
}
