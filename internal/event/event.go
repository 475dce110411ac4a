package event

import (
	"strings"
	"time"

	eventDatamodel "github.com/payflowhq/payflow/internal/core/datamodel/event"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"

	TypeEvent   = "event"
	TypeCompany = "company"
)

// Event is a cost center that payment requests are attributed to. Members
// are the requesters allowed to submit against it.
type Event struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Status        string    `json:"status"`
	Type          string    `json:"type"`
	BudgetCents   *int64    `json:"budget_cents,omitempty"`
	SpentCents    int64     `json:"spent_cents"`
	Subcategories []string  `json:"subcategories,omitempty"`
	MemberIDs     []int64   `json:"member_ids"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (e *Event) IsActive() bool {
	return e.Status == StatusActive
}

func (e *Event) HasMember(userID int64) bool {
	for _, id := range e.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func ToDataModel(e *Event) *eventDatamodel.Event {
	return &eventDatamodel.Event{
		ID:            e.ID,
		Name:          e.Name,
		Status:        e.Status,
		Type:          e.Type,
		BudgetCents:   e.BudgetCents,
		Subcategories: strings.Join(e.Subcategories, ","),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func FromDataModel(dm *eventDatamodel.Event) *Event {
	e := &Event{
		ID:          dm.ID,
		Name:        dm.Name,
		Status:      dm.Status,
		Type:        dm.Type,
		BudgetCents: dm.BudgetCents,
		MemberIDs:   []int64{},
		CreatedAt:   dm.CreatedAt,
		UpdatedAt:   dm.UpdatedAt,
	}
	if dm.Subcategories != "" {
		e.Subcategories = strings.Split(dm.Subcategories, ",")
	}
	return e
}
