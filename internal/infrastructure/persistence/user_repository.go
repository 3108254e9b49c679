package persistence

import (
	"context"
	"errors"

	"github.com/casaverde/backoffice/internal/domain/identity"
	"github.com/casaverde/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID, nil when it does not exist
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := dbFromContext(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FirstActiveByRole returns the oldest active user holding the role
func (r *GormUserRepository) FirstActiveByRole(ctx context.Context, role identity.RoleCode) (*identity.User, error) {
	return r.firstWhere(ctx, "role = ? AND is_active = ?", role, true)
}

// FirstSuperuser returns the oldest superuser
func (r *GormUserRepository) FirstSuperuser(ctx context.Context) (*identity.User, error) {
	return r.firstWhere(ctx, "is_superuser = ?", true)
}

// FirstActive returns the oldest active user
func (r *GormUserRepository) FirstActive(ctx context.Context) (*identity.User, error) {
	return r.firstWhere(ctx, "is_active = ?", true)
}

func (r *GormUserRepository) firstWhere(ctx context.Context, query string, args ...interface{}) (*identity.User, error) {
	var model models.UserModel
	if err := dbFromContext(ctx, r.db).
		Where(query, args...).
		Order("created_at ASC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
