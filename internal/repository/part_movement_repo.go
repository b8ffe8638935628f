package repository

import (
	"context"

	"github.com/plradhouane-dev/gmao/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PartMovementFilter defines filters for listing stock movements.
type PartMovementFilter struct {
	PartID *uuid.UUID
	Type   string
	Page   int
	Limit  int
}

type PartMovementRepository interface {
	CreateTx(tx *gorm.DB, m *model.PartMovement) error
	List(ctx context.Context, filter PartMovementFilter) ([]model.PartMovement, int64, error)
}

type partMovementRepo struct{ db *gorm.DB }

func NewPartMovementRepository(db *gorm.DB) PartMovementRepository {
	return &partMovementRepo{db: db}
}

func (r *partMovementRepo) CreateTx(tx *gorm.DB, m *model.PartMovement) error {
	return tx.Create(m).Error
}

func (r *partMovementRepo) List(ctx context.Context, filter PartMovementFilter) ([]model.PartMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.PartMovement{}).Preload("Part")
	if filter.PartID != nil {
		q = q.Where("part_id = ?", *filter.PartID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var movements []model.PartMovement
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&movements).Error
	return movements, total, err
}
