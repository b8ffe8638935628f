package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// PartUsageRequest is one requested part line. Quantities are validated
// against current stock at apply time, not at form-selection time.
type PartUsageRequest struct {
	PartID   string `json:"part_id"  validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type CreateInterventionRequest struct {
	EquipmentID   string             `json:"equipment_id"   validate:"required,uuid"`
	EntryDate     string             `json:"entry_date"     validate:"required"` // YYYY-MM-DD
	ExitDate      *string            `json:"exit_date"`
	RepairDetails string             `json:"repair_details"`
	Technician    string             `json:"technician"`
	LaborCost     decimal.Decimal    `json:"labor_cost"     validate:"min=0"`
	Parts         []PartUsageRequest `json:"parts"          validate:"dive"`
}

// UpdateInterventionRequest replaces the intervention's fields and its
// whole part-usage set (compensate-then-apply).
type UpdateInterventionRequest struct {
	EntryDate     string             `json:"entry_date"     validate:"required"`
	ExitDate      *string            `json:"exit_date"`
	RepairDetails string             `json:"repair_details"`
	Technician    string             `json:"technician"`
	LaborCost     decimal.Decimal    `json:"labor_cost"     validate:"min=0"`
	Parts         []PartUsageRequest `json:"parts"          validate:"dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PartUsageResponse struct {
	PartID    string          `json:"part_id"`
	PartName  string          `json:"part_name"`
	Reference string          `json:"reference"`
	Quantity  int             `json:"quantity"`
	LineCost  decimal.Decimal `json:"line_cost"`
}

type InterventionResponse struct {
	ID            string              `json:"id"`
	EquipmentID   string              `json:"equipment_id"`
	SerialNumber  string              `json:"serial_number,omitempty"`
	EntryDate     string              `json:"entry_date"`
	ExitDate      *string             `json:"exit_date"`
	RepairDetails string              `json:"repair_details"`
	Technician    string              `json:"technician"`
	LaborCost     decimal.Decimal     `json:"labor_cost"`
	TotalCost     decimal.Decimal     `json:"total_cost"`
	Parts         []PartUsageResponse `json:"parts"`
}

type InterventionListResponse struct {
	Data  []InterventionResponse `json:"data"`
	Total int64                  `json:"total"`
}
