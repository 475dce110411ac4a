package postgres

import (
	"errors"

	internal_errors "github.com/payflowhq/payflow/internal"
	eventDatamodel "github.com/payflowhq/payflow/internal/core/datamodel/event"
	eventDomain "github.com/payflowhq/payflow/internal/event"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(eventID int64) (*eventDomain.Event, error) {
	var dm eventDatamodel.Event
	if err := r.db.First(&dm, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal_errors.ErrEventNotFound
		}
		return nil, err
	}

	e := eventDomain.FromDataModel(&dm)
	members, err := r.memberIDs(eventID)
	if err != nil {
		return nil, err
	}
	e.MemberIDs = members

	return e, nil
}

func (r *Repository) ListAll() ([]*eventDomain.Event, error) {
	var dms []eventDatamodel.Event
	if err := r.db.Order("name asc").Find(&dms).Error; err != nil {
		return nil, err
	}
	return r.attachMembers(dms)
}

func (r *Repository) ListActiveForUser(userID int64) ([]*eventDomain.Event, error) {
	var dms []eventDatamodel.Event
	err := r.db.
		Joins("JOIN event_members em ON em.event_id = events.id").
		Where("events.status = ? AND em.user_id = ?", eventDomain.StatusActive, userID).
		Order("events.name asc").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return r.attachMembers(dms)
}

func (r *Repository) Create(e *eventDomain.Event) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		dm := eventDomain.ToDataModel(e)
		if err := tx.Create(dm).Error; err != nil {
			return err
		}
		e.ID = dm.ID
		e.CreatedAt = dm.CreatedAt
		e.UpdatedAt = dm.UpdatedAt

		for _, userID := range e.MemberIDs {
			member := eventDatamodel.EventMember{EventID: dm.ID, UserID: userID}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) Update(e *eventDomain.Event) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		dm := eventDomain.ToDataModel(e)
		if err := tx.Save(dm).Error; err != nil {
			return err
		}

		if err := tx.Where("event_id = ?", e.ID).Delete(&eventDatamodel.EventMember{}).Error; err != nil {
			return err
		}
		for _, userID := range e.MemberIDs {
			member := eventDatamodel.EventMember{EventID: e.ID, UserID: userID}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) memberIDs(eventID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&eventDatamodel.EventMember{}).
		Where("event_id = ?", eventID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

func (r *Repository) attachMembers(dms []eventDatamodel.Event) ([]*eventDomain.Event, error) {
	events := make([]*eventDomain.Event, 0, len(dms))
	for i := range dms {
		e := eventDomain.FromDataModel(&dms[i])
		members, err := r.memberIDs(e.ID)
		if err != nil {
			return nil, err
		}
		e.MemberIDs = members
		events = append(events, e)
	}
	return events, nil
}
