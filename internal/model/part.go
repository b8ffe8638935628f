package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Part is a spare part held in stock. StockQuantity is the single
// authoritative quantity field; every mutation goes through the guarded
// AdjustStockTx so it can never drop below zero.
type Part struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string    `gorm:"index;not null"`
	Reference     string    `gorm:"uniqueIndex;not null"`
	Supplier      string
	UnitPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	StockQuantity int             `gorm:"not null;default:0;check:stock_quantity >= 0"`
	Description   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
