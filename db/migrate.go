package db

import (
	"fmt"

	"github.com/meinhoongagan/smart-clinic/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the relational schema.
func Migrate(gdb *gorm.DB) error {
	err := gdb.AutoMigrate(
		&models.User{},
		&models.Doctor{},
		&models.Patient{},
		&models.Appointment{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
