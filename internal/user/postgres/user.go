package postgres

import (
	"errors"

	"github.com/payflowhq/payflow/internal/core/datamodel/user"
	userDomain "github.com/payflowhq/payflow/internal/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(userID int64) (*userDomain.User, error) {
	var dm user.User
	if err := r.db.First(&dm, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userDomain.ErrNotFound
		}
		return nil, err
	}
	return userDomain.FromDataModel(&dm), nil
}

func (r *Repository) GetByEmail(email string) (*userDomain.User, error) {
	var dm user.User
	if err := r.db.First(&dm, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userDomain.ErrNotFound
		}
		return nil, err
	}
	return userDomain.FromDataModel(&dm), nil
}

func (r *Repository) ListActive() ([]*userDomain.User, error) {
	var dms []user.User
	if err := r.db.Where("is_active = ?", true).Order("name asc").Find(&dms).Error; err != nil {
		return nil, err
	}

	users := make([]*userDomain.User, 0, len(dms))
	for i := range dms {
		users = append(users, userDomain.FromDataModel(&dms[i]))
	}
	return users, nil
}

func (r *Repository) ListActiveByRole(role string) ([]*userDomain.User, error) {
	var dms []user.User
	if err := r.db.Where("is_active = ? AND role = ?", true, role).Order("name asc").Find(&dms).Error; err != nil {
		return nil, err
	}

	users := make([]*userDomain.User, 0, len(dms))
	for i := range dms {
		users = append(users, userDomain.FromDataModel(&dms[i]))
	}
	return users, nil
}

func (r *Repository) Create(u *userDomain.User) error {
	dm := userDomain.ToDataModel(u)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	u.ID = dm.ID
	u.CreatedAt = dm.CreatedAt
	u.UpdatedAt = dm.UpdatedAt
	return nil
}

func (r *Repository) Update(u *userDomain.User) error {
	dm := userDomain.ToDataModel(u)
	return r.db.Save(dm).Error
}
