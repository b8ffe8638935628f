package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin      = "admin"
	RoleTechnician = "technician"
	RoleUser       = "user"
)

// User stores an account with role-based access.
// Role: "admin" | "technician" | "user". ForcePasswordChange locks the
// session down to the change-password operation until cleared.
type User struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username            string    `gorm:"uniqueIndex;not null"`
	PasswordHash        string    `gorm:"not null"`
	Role                string    `gorm:"type:varchar(20);not null"`
	ForcePasswordChange bool      `gorm:"not null;default:false"`
	Active              bool      `gorm:"not null;default:true"`
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Permissions *PermissionSet `gorm:"foreignKey:UserID"`
}

// PermissionSet holds the per-user capability flags. The role only
// determines the defaults at creation time; an admin can flip individual
// flags afterward, so the flags are always read from here, never derived
// from the role at request time.
type PermissionSet struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`

	ViewInterventions   bool `gorm:"not null;default:false"`
	AddInterventions    bool `gorm:"not null;default:false"`
	EditInterventions   bool `gorm:"not null;default:false"`
	DeleteInterventions bool `gorm:"not null;default:false"`

	ViewStock   bool `gorm:"not null;default:false"`
	AddStock    bool `gorm:"not null;default:false"`
	EditStock   bool `gorm:"not null;default:false"`
	DeleteStock bool `gorm:"not null;default:false"`

	ManageUsers bool `gorm:"not null;default:false"`
}

func (PermissionSet) TableName() string { return "permissions" }

// DefaultPermissions is the single place role defaults are derived.
// admin: everything; technician: view+add interventions, view stock;
// user: view interventions, view stock.
func DefaultPermissions(role string) PermissionSet {
	switch role {
	case RoleAdmin:
		return PermissionSet{
			ViewInterventions: true, AddInterventions: true,
			EditInterventions: true, DeleteInterventions: true,
			ViewStock: true, AddStock: true, EditStock: true, DeleteStock: true,
			ManageUsers: true,
		}
	case RoleTechnician:
		return PermissionSet{
			ViewInterventions: true, AddInterventions: true,
			ViewStock: true,
		}
	default:
		return PermissionSet{ViewInterventions: true, ViewStock: true}
	}
}

// ValidRole reports whether r is one of the three known roles.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleTechnician || r == RoleUser
}
