package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreatePartRequest struct {
	Name        string          `json:"name"        validate:"required,min=1,max=120"`
	Reference   string          `json:"reference"   validate:"required,min=1,max=64"`
	Supplier    string          `json:"supplier"`
	UnitPrice   decimal.Decimal `json:"unit_price"  validate:"min=0"`
	Stock       int             `json:"stock"       validate:"min=0"`
	Description string          `json:"description"`
}

type UpdatePartRequest struct {
	Name        *string          `json:"name"       validate:"omitempty,min=1,max=120"`
	Reference   *string          `json:"reference"  validate:"omitempty,min=1,max=64"`
	Supplier    *string          `json:"supplier"`
	UnitPrice   *decimal.Decimal `json:"unit_price" validate:"omitempty,min=0"`
	Description *string          `json:"description"`
}

// AdjustStockRequest is a direct stock correction outside any intervention.
type AdjustStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Reason string `json:"reason" validate:"required,min=1"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type PartFilter struct {
	Name      string `form:"name"`
	Reference string `form:"reference"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PartResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Reference     string          `json:"reference"`
	Supplier      string          `json:"supplier"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StockQuantity int             `json:"stock_quantity"`
	Description   string          `json:"description"`
	LowStock      bool            `json:"low_stock"`
}

type PartListResponse struct {
	Data  []PartResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type PartMovementResponse struct {
	ID          string  `json:"id"`
	PartID      string  `json:"part_id"`
	PartName    string  `json:"part_name"`
	Type        string  `json:"type"`
	Quantity    int     `json:"quantity"`
	StockBefore int     `json:"stock_before"`
	StockAfter  int     `json:"stock_after"`
	Reason      string  `json:"reason"`
	ReferenceID *string `json:"reference_id"`
	CreatedAt   string  `json:"created_at"`
}
