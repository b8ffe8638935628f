package repository

import (
	"context"

	"github.com/plradhouane-dev/gmao/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InterventionRepository is the data access contract for interventions
// and their part-usage lines. The Tx variants exist because create, edit
// and delete are multi-row sequences that must commit or roll back as a
// single unit together with the stock adjustments they trigger.
type InterventionRepository interface {
	CreateTx(tx *gorm.DB, iv *model.Intervention) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Intervention, error)
	ListByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]model.Intervention, error)
	UpdateTx(tx *gorm.DB, iv *model.Intervention) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error

	CreateUsageTx(tx *gorm.DB, u *model.PartUsage) error
	DeleteUsagesTx(tx *gorm.DB, interventionID uuid.UUID) error
	UpdateTotalCostTx(tx *gorm.DB, id uuid.UUID, total decimal.Decimal) error

	DB() *gorm.DB
}

type interventionRepo struct{ db *gorm.DB }

func NewInterventionRepository(db *gorm.DB) InterventionRepository {
	return &interventionRepo{db: db}
}

func (r *interventionRepo) CreateTx(tx *gorm.DB, iv *model.Intervention) error {
	return tx.Create(iv).Error
}

func (r *interventionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Intervention, error) {
	var iv model.Intervention
	err := r.db.WithContext(ctx).
		Preload("Usages").
		Preload("Usages.Part").
		Preload("Equipment").
		First(&iv, "id = ?", id).Error
	return &iv, err
}

func (r *interventionRepo) ListByEquipment(ctx context.Context, equipmentID uuid.UUID) ([]model.Intervention, error) {
	var items []model.Intervention
	err := r.db.WithContext(ctx).
		Preload("Usages").
		Preload("Usages.Part").
		Where("equipment_id = ?", equipmentID).
		Order("entry_date DESC").
		Find(&items).Error
	return items, err
}

func (r *interventionRepo) UpdateTx(tx *gorm.DB, iv *model.Intervention) error {
	return tx.Model(&model.Intervention{}).Where("id = ?", iv.ID).Updates(map[string]interface{}{
		"entry_date":     iv.EntryDate,
		"exit_date":      iv.ExitDate,
		"repair_details": iv.RepairDetails,
		"technician":     iv.Technician,
		"labor_cost":     iv.LaborCost,
		"total_cost":     iv.TotalCost,
	}).Error
}

func (r *interventionRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Intervention{}, "id = ?", id).Error
}

func (r *interventionRepo) CreateUsageTx(tx *gorm.DB, u *model.PartUsage) error {
	return tx.Create(u).Error
}

func (r *interventionRepo) DeleteUsagesTx(tx *gorm.DB, interventionID uuid.UUID) error {
	return tx.Delete(&model.PartUsage{}, "intervention_id = ?", interventionID).Error
}

func (r *interventionRepo) UpdateTotalCostTx(tx *gorm.DB, id uuid.UUID, total decimal.Decimal) error {
	return tx.Model(&model.Intervention{}).Where("id = ?", id).
		Update("total_cost", total).Error
}

func (r *interventionRepo) DB() *gorm.DB { return r.db }
