package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateEquipmentRequest struct {
	SerialNumber string  `json:"serial_number" validate:"required,min=1,max=64"`
	Brand        string  `json:"brand"         validate:"required,min=1,max=120"`
	Model        string  `json:"model"         validate:"required,min=1,max=120"`
	PurchaseDate *string `json:"purchase_date"` // YYYY-MM-DD
	SaleDate     *string `json:"sale_date"`
	BuyerID      *string `json:"buyer_id"`
	Notes        string  `json:"notes"`
}

type UpdateEquipmentRequest struct {
	Brand        *string `json:"brand"  validate:"omitempty,min=1,max=120"`
	Model        *string `json:"model"  validate:"omitempty,min=1,max=120"`
	PurchaseDate *string `json:"purchase_date"`
	SaleDate     *string `json:"sale_date"`
	BuyerID      *string `json:"buyer_id"`
	Notes        *string `json:"notes"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type EquipmentFilter struct {
	Serial string `form:"serial"`
	Brand  string `form:"brand"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type EquipmentResponse struct {
	ID           string  `json:"id"`
	SerialNumber string  `json:"serial_number"`
	Brand        string  `json:"brand"`
	Model        string  `json:"model"`
	PurchaseDate *string `json:"purchase_date"`
	SaleDate     *string `json:"sale_date"`
	BuyerID      *string `json:"buyer_id"`
	Notes        string  `json:"notes"`
}

type EquipmentListResponse struct {
	Data  []EquipmentResponse `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}
