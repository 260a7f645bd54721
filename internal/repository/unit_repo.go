package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Khalick/student-portal-api/internal/models"
)

// UnitRepository exposes persistence helpers for the unit catalog.
type UnitRepository interface {
	Create(ctx context.Context, unit *models.Unit) error
	GetByID(ctx context.Context, id uint) (models.Unit, error)
	GetByCode(ctx context.Context, code string) (models.Unit, error)
	FirstOrCreate(ctx context.Context, code, name string) (models.Unit, error)
	List(ctx context.Context) ([]models.Unit, error)
}

type unitRepository struct {
	db *gorm.DB
}

// NewUnitRepository constructs the unit repository.
func NewUnitRepository(db *gorm.DB) UnitRepository {
	return &unitRepository{db: db}
}

func (r *unitRepository) Create(ctx context.Context, unit *models.Unit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}

func (r *unitRepository) GetByID(ctx context.Context, id uint) (models.Unit, error) {
	var unit models.Unit
	if err := r.db.WithContext(ctx).First(&unit, id).Error; err != nil {
		return models.Unit{}, err
	}

	return unit, nil
}

func (r *unitRepository) GetByCode(ctx context.Context, code string) (models.Unit, error) {
	var unit models.Unit
	err := r.db.WithContext(ctx).
		Where("unit_code = ?", strings.TrimSpace(code)).
		First(&unit).Error
	if err != nil {
		return models.Unit{}, err
	}

	return unit, nil
}

// FirstOrCreate looks a unit up by code, creating the catalog entry the first
// time a legacy registration references it.
func (r *unitRepository) FirstOrCreate(ctx context.Context, code, name string) (models.Unit, error) {
	unit := models.Unit{UnitCode: strings.TrimSpace(code)}
	err := r.db.WithContext(ctx).
		Where("unit_code = ?", unit.UnitCode).
		Attrs(models.Unit{UnitName: strings.TrimSpace(name)}).
		FirstOrCreate(&unit).Error
	if err != nil {
		return models.Unit{}, err
	}

	return unit, nil
}

func (r *unitRepository) List(ctx context.Context) ([]models.Unit, error) {
	var units []models.Unit
	if err := r.db.WithContext(ctx).Order("unit_code ASC").Find(&units).Error; err != nil {
		return nil, err
	}

	return units, nil
}
