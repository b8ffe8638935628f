package repository

import (
	"context"
	"errors"

	"github.com/plradhouane-dev/gmao/internal/apperr"
	"github.com/plradhouane-dev/gmao/internal/dto"
	"github.com/plradhouane-dev/gmao/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PartRepository is the data access contract for spare parts.
// AdjustStockTx is the single mutation point for stock_quantity; the
// guarded UPDATE re-checks the quantity inside the caller's transaction,
// so a check made during pre-flight validation cannot be raced past.
type PartRepository interface {
	Create(ctx context.Context, p *model.Part) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Part, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Part, error)
	FindByReference(ctx context.Context, reference string) (*model.Part, error)
	List(ctx context.Context, filter dto.PartFilter) ([]model.Part, int64, error)
	ListAll(ctx context.Context) ([]model.Part, error)
	ListLowStock(ctx context.Context, threshold int) ([]model.Part, error)
	Update(ctx context.Context, p *model.Part) error
	Delete(ctx context.Context, id uuid.UUID) error
	UsageCount(ctx context.Context, partID uuid.UUID) (int64, error)

	// AdjustStockTx applies a delta inside tx. It fails with an
	// insufficient-stock error when the delta would drive the quantity
	// below zero, and a referential error when the part row is gone.
	AdjustStockTx(tx *gorm.DB, id uuid.UUID, delta int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type partRepo struct{ db *gorm.DB }

func NewPartRepository(db *gorm.DB) PartRepository { return &partRepo{db: db} }

func (r *partRepo) Create(ctx context.Context, p *model.Part) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *partRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Part, error) {
	var p model.Part
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *partRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Part, error) {
	var p model.Part
	err := tx.First(&p, "id = ?", id).Error
	return &p, err
}

func (r *partRepo) FindByReference(ctx context.Context, reference string) (*model.Part, error) {
	var p model.Part
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&p).Error
	return &p, err
}

func (r *partRepo) List(ctx context.Context, filter dto.PartFilter) ([]model.Part, int64, error) {
	var parts []model.Part
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Part{})
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Reference != "" {
		q = q.Where("reference = ?", filter.Reference)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&parts).Error
	return parts, total, err
}

func (r *partRepo) ListAll(ctx context.Context) ([]model.Part, error) {
	var parts []model.Part
	err := r.db.WithContext(ctx).Order("name ASC").Find(&parts).Error
	return parts, err
}

func (r *partRepo) ListLowStock(ctx context.Context, threshold int) ([]model.Part, error) {
	var parts []model.Part
	err := r.db.WithContext(ctx).
		Where("stock_quantity <= ?", threshold).
		Order("name ASC").
		Find(&parts).Error
	return parts, err
}

func (r *partRepo) Update(ctx context.Context, p *model.Part) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *partRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Part{}, "id = ?", id).Error
}

func (r *partRepo) UsageCount(ctx context.Context, partID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.PartUsage{}).
		Where("part_id = ?", partID).Count(&n).Error
	return n, err
}

func (r *partRepo) AdjustStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	res := tx.Model(&model.Part{}).
		Where("id = ? AND stock_quantity + ? >= 0", id, delta).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Distinguish "gone" from "would go negative".
		var p model.Part
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Referentialf("part %s no longer exists", id)
			}
			return err
		}
		return apperr.InsufficientStockf(
			"insufficient stock for part %s: have %d, delta %d", p.Reference, p.StockQuantity, delta)
	}
	return nil
}

func (r *partRepo) DB() *gorm.DB { return r.db }
