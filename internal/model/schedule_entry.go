package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ScheduleStatusScheduled  = "scheduled"
	ScheduleStatusInProgress = "in_progress"
	ScheduleStatusCompleted  = "completed"
)

// ScheduleEntry is a preventive-maintenance appointment for a piece of
// equipment. Entries with status != completed and a due date inside the
// reminder window are surfaced by the reminder cron.
type ScheduleEntry struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EquipmentID     uuid.UUID `gorm:"type:uuid;not null;index"`
	DueDate         time.Time `gorm:"not null;index"`
	MaintenanceType string    `gorm:"not null"`
	Technician      string
	Status          string `gorm:"type:varchar(20);not null;default:'scheduled'"`
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Equipment *Equipment `gorm:"foreignKey:EquipmentID"`
}

func (ScheduleEntry) TableName() string { return "schedule_entries" }

// ValidScheduleStatus reports whether s is one of the three known states.
func ValidScheduleStatus(s string) bool {
	switch s {
	case ScheduleStatusScheduled, ScheduleStatusInProgress, ScheduleStatusCompleted:
		return true
	}
	return false
}
