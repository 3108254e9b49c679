package persistence

import (
	"context"
	"errors"

	"github.com/casaverde/backoffice/internal/domain/ledger"
	"github.com/casaverde/backoffice/internal/domain/sales"
	"github.com/casaverde/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProjectRepository implements sales.ProjectRepository using GORM
type GormProjectRepository struct {
	db       *gorm.DB
	fallback ledger.MoraConfig
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// NewGormProjectRepositoryWithFallback creates a repository that fills
// missing per-project mora parameters from the given defaults. Projects
// migrated from the legacy spreadsheet carry zero values there.
func NewGormProjectRepositoryWithFallback(db *gorm.DB, fallback ledger.MoraConfig) *GormProjectRepository {
	return &GormProjectRepository{db: db, fallback: fallback}
}

// FindByID finds a project by its ID, nil when it does not exist
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Project, error) {
	var model models.ProjectModel
	if err := dbFromContext(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	project := model.ToDomain()
	if project.PaymentGraceDays == 0 {
		project.PaymentGraceDays = r.fallback.GraceDays
	}
	if project.MoraRateMonthly.IsZero() {
		project.MoraRateMonthly = r.fallback.MonthlyRate
	}
	return project, nil
}

var _ sales.ProjectRepository = (*GormProjectRepository)(nil)
