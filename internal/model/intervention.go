package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Intervention is one repair visit for a piece of equipment.
// TotalCost = LaborCost + sum of its part usage line costs; it is
// recomputed inside the same transaction as any usage change.
type Intervention struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EquipmentID   uuid.UUID `gorm:"type:uuid;not null;index"`
	EntryDate     time.Time `gorm:"not null"`
	ExitDate      *time.Time
	RepairDetails string
	Technician    string
	LaborCost     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalCost     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Equipment *Equipment  `gorm:"foreignKey:EquipmentID"`
	Usages    []PartUsage `gorm:"foreignKey:InterventionID"`
}

// PartUsage records how many units of a part one intervention consumed.
// LineCost freezes quantity × unit price at recording time, so later
// price edits do not rewrite history.
type PartUsage struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InterventionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	PartID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	QuantityUsed   int             `gorm:"not null;check:quantity_used > 0"`
	LineCost       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt      time.Time

	Part *Part `gorm:"foreignKey:PartID"`
}
