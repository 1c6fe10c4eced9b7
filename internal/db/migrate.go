package db

import (
	"expense_tracker/internal/auth"   // Credential model
	"expense_tracker/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	err := db.AutoMigrate(&auth.Credential{}, &domain.User{}, &domain.Wallet{}, &domain.Transaction{})
	if err != nil {
		logrus.WithField("error", err.Error()).Error("Migration failed") // Log migration failure
		return err
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}
