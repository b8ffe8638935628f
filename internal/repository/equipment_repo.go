package repository

import (
	"context"

	"github.com/plradhouane-dev/gmao/internal/dto"
	"github.com/plradhouane-dev/gmao/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EquipmentRepository defines the data access contract for equipment.
// Services depend on this interface, not on the concrete GORM
// implementation, enabling clean unit testing via stubs.
type EquipmentRepository interface {
	Create(ctx context.Context, e *model.Equipment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Equipment, error)
	FindBySerial(ctx context.Context, serial string) (*model.Equipment, error)
	List(ctx context.Context, filter dto.EquipmentFilter) ([]model.Equipment, int64, error)
	Update(ctx context.Context, e *model.Equipment) error
}

type equipmentRepo struct{ db *gorm.DB }

func NewEquipmentRepository(db *gorm.DB) EquipmentRepository { return &equipmentRepo{db: db} }

func (r *equipmentRepo) Create(ctx context.Context, e *model.Equipment) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *equipmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Equipment, error) {
	var e model.Equipment
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	return &e, err
}

func (r *equipmentRepo) FindBySerial(ctx context.Context, serial string) (*model.Equipment, error) {
	var e model.Equipment
	err := r.db.WithContext(ctx).Where("serial_number = ?", serial).First(&e).Error
	return &e, err
}

func (r *equipmentRepo) List(ctx context.Context, filter dto.EquipmentFilter) ([]model.Equipment, int64, error) {
	var items []model.Equipment
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Equipment{})
	if filter.Serial != "" {
		q = q.Where("serial_number ILIKE ?", "%"+filter.Serial+"%")
	}
	if filter.Brand != "" {
		q = q.Where("brand ILIKE ?", "%"+filter.Brand+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("serial_number ASC").Limit(filter.Limit).Offset(offset).Find(&items).Error
	return items, total, err
}

func (r *equipmentRepo) Update(ctx context.Context, e *model.Equipment) error {
	return r.db.WithContext(ctx).Save(e).Error
}
