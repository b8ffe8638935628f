package model

import (
	"time"

	"github.com/google/uuid"
)

// PartMovement records every change to a part's stock quantity.
// Written inside the same transaction as the stock update itself, so the
// movement trail and the quantity can never diverge.
type PartMovement struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PartID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type        string     `gorm:"not null"` // "usage" | "usage_reversal" | "delete_restore" | "manual_adjust"
	Quantity    int        `gorm:"not null"` // positive = into stock, negative = out
	StockBefore int        `gorm:"not null"`
	StockAfter  int        `gorm:"not null"`
	Reason      string
	ReferenceID *uuid.UUID `gorm:"type:uuid"` // intervention id when applicable
	CreatedAt   time.Time

	Part *Part `gorm:"foreignKey:PartID"`
}

func (PartMovement) TableName() string { return "part_movements" }
