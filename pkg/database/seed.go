package database

import (
	"errors"

	"garage-service/internal/model"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedDefaults creates the default manager account if it does not
// exist yet. Safe to run on every startup.
func SeedDefaults(db *gorm.DB, log *zap.Logger) error {
	var admin model.User
	err := db.Where("username = ?", "admin").First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin = model.User{
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         model.RoleManager,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Info("Default manager account created", zap.String("username", admin.Username))
	return nil
}
