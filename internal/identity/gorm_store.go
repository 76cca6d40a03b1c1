package identity

import (
	"context"
	"errors"

	"church-service/internal/model"

	"gorm.io/gorm"
)

// GormStore is the Postgres-backed Store implementation. gorm's
// ErrRecordNotFound is mapped to ErrNotFound at this boundary so callers never
// depend on the ORM.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) UserByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

func (s *GormStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

func (s *GormStore) ChurchByID(ctx context.Context, id uint) (*model.Church, error) {
	var church model.Church
	if err := s.db.WithContext(ctx).First(&church, id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &church, nil
}

func (s *GormStore) MemberByUserID(ctx context.Context, userID uint) (*model.Member, error) {
	var member model.Member
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&member).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &member, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
