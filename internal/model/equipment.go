package model

import (
	"time"

	"github.com/google/uuid"
)

// Equipment is a tracked machine, identified by its serial number.
// Rows are created on first search-miss by serial and never deleted;
// the repair history of a sold unit stays queryable.
type Equipment struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SerialNumber string    `gorm:"uniqueIndex;not null"`
	Brand        string    `gorm:"not null"`
	Model        string    `gorm:"not null"`
	PurchaseDate *time.Time
	SaleDate     *time.Time
	BuyerID      *string
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Equipment) TableName() string { return "equipment" }
