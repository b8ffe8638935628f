package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateScheduleRequest struct {
	EquipmentID     string `json:"equipment_id"     validate:"required,uuid"`
	DueDate         string `json:"due_date"         validate:"required"` // YYYY-MM-DD
	MaintenanceType string `json:"maintenance_type" validate:"required,min=1"`
	Technician      string `json:"technician"`
	Notes           string `json:"notes"`
}

type UpdateScheduleRequest struct {
	DueDate         *string `json:"due_date"`
	MaintenanceType *string `json:"maintenance_type" validate:"omitempty,min=1"`
	Technician      *string `json:"technician"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes"`
}

type ScheduleFilter struct {
	EquipmentID string `form:"equipment_id" validate:"omitempty,uuid"`
	Status      string `form:"status"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ScheduleResponse struct {
	ID              string `json:"id"`
	EquipmentID     string `json:"equipment_id"`
	SerialNumber    string `json:"serial_number,omitempty"`
	DueDate         string `json:"due_date"`
	MaintenanceType string `json:"maintenance_type"`
	Technician      string `json:"technician"`
	Status          string `json:"status"`
	Notes           string `json:"notes"`
}

type ScheduleListResponse struct {
	Data  []ScheduleResponse `json:"data"`
	Total int64              `json:"total"`
}
