package config

import (
	"errors"
	"log"

	"booknet/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// SeedRoles provisions the roles registration depends on. The USER role
// must exist before the first registration; without it register fails with
// a role-configuration error.
func SeedRoles(db *gorm.DB) error {
	log.Println("Seeding roles...")

	for _, name := range []string{models.RoleUser, models.RoleAdmin} {
		var role models.Role
		err := db.Where("name = ?", name).First(&role).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&models.Role{Name: name}).Error; err != nil {
			return err
		}
		log.Printf("Created role %s", name)
	}

	return nil
}
