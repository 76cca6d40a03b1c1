package setup

import (
	"context"

	"church-service/internal/model"

	"gorm.io/gorm"
)

// Advisory lock key for the bootstrap critical section. Any fixed value works
// as long as nothing else in the system locks on it.
const bootstrapLockKey = 0x43485527

// GormStore is the Postgres-backed Store implementation.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) SuperAdminCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("role = ?", model.RoleSuperAdmin).
		Count(&count).Error
	return count, err
}

// CreateChurchWithAdmin persists the church and its super admin in a single
// transaction. A session-independent advisory lock is taken before the
// initialized re-check, so two concurrent initialize calls cannot both pass
// the check: the second blocks on the lock and then sees the first one's
// committed super admin.
func (s *GormStore) CreateChurchWithAdmin(ctx context.Context, church *model.Church, admin *model.User) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	// Held until commit or rollback
	if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", bootstrapLockKey).Error; err != nil {
		tx.Rollback()
		return err
	}

	var count int64
	if err := tx.Model(&model.User{}).Where("role = ?", model.RoleSuperAdmin).Count(&count).Error; err != nil {
		tx.Rollback()
		return err
	}
	if count > 0 {
		tx.Rollback()
		return ErrAlreadyInitialized
	}

	if err := tx.Create(church).Error; err != nil {
		tx.Rollback()
		return err
	}

	admin.ChurchID = &church.ID
	if err := tx.Create(admin).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
