package infra

import (
	"fmt"

	"github.com/plradhouane-dev/gmao/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs
// AutoMigrate to create / update all tables.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates the schema. Also used by integration
// tests against a throwaway database.
func RunMigrations(db *gorm.DB) error {
	// gen_random_uuid() needs pgcrypto on PostgreSQL < 13.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(
		&model.Equipment{},
		&model.Part{},
		&model.Intervention{},
		&model.PartUsage{},
		&model.PartMovement{},
		&model.ScheduleEntry{},
		&model.User{},
		&model.PermissionSet{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return nil
}

// EnsureDefaultAdmin seeds the "admin" account on first boot: full
// permissions, the configured initial password, and the forced
// password-change flag raised so the default credential cannot be kept.
// Idempotent: a no-op when the account already exists.
func EnsureDefaultAdmin(db *gorm.DB, initialPassword string) error {
	var count int64
	if err := db.Model(&model.User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(initialPassword), 12)
	if err != nil {
		return err
	}
	perms := model.DefaultPermissions(model.RoleAdmin)
	admin := &model.User{
		Username:            "admin",
		PasswordHash:        string(hash),
		Role:                model.RoleAdmin,
		ForcePasswordChange: true,
		Active:              true,
		Permissions:         &perms,
	}
	return db.Session(&gorm.Session{FullSaveAssociations: true}).Create(admin).Error
}
