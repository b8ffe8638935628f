package repository

import (
	"context"
	"time"

	"github.com/plradhouane-dev/gmao/internal/dto"
	"github.com/plradhouane-dev/gmao/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScheduleRepository interface {
	Create(ctx context.Context, e *model.ScheduleEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ScheduleEntry, error)
	List(ctx context.Context, filter dto.ScheduleFilter) ([]model.ScheduleEntry, int64, error)
	// ListDueBetween returns non-completed entries due inside [from, to],
	// ordered by due date. The reminder cron is its main caller.
	ListDueBetween(ctx context.Context, from, to time.Time) ([]model.ScheduleEntry, error)
	Update(ctx context.Context, e *model.ScheduleEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type scheduleRepo struct{ db *gorm.DB }

func NewScheduleRepository(db *gorm.DB) ScheduleRepository { return &scheduleRepo{db: db} }

func (r *scheduleRepo) Create(ctx context.Context, e *model.ScheduleEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *scheduleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ScheduleEntry, error) {
	var e model.ScheduleEntry
	err := r.db.WithContext(ctx).Preload("Equipment").First(&e, "id = ?", id).Error
	return &e, err
}

func (r *scheduleRepo) List(ctx context.Context, filter dto.ScheduleFilter) ([]model.ScheduleEntry, int64, error) {
	var items []model.ScheduleEntry
	var total int64

	q := r.db.WithContext(ctx).Model(&model.ScheduleEntry{})
	if filter.EquipmentID != "" {
		q = q.Where("equipment_id = ?", filter.EquipmentID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Equipment").Order("due_date ASC").
		Limit(filter.Limit).Offset(offset).Find(&items).Error
	return items, total, err
}

func (r *scheduleRepo) ListDueBetween(ctx context.Context, from, to time.Time) ([]model.ScheduleEntry, error) {
	var items []model.ScheduleEntry
	err := r.db.WithContext(ctx).
		Preload("Equipment").
		Where("due_date >= ? AND due_date <= ? AND status <> ?", from, to, model.ScheduleStatusCompleted).
		Order("due_date ASC").
		Find(&items).Error
	return items, err
}

func (r *scheduleRepo) Update(ctx context.Context, e *model.ScheduleEntry) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *scheduleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ScheduleEntry{}, "id = ?", id).Error
}
