// Package db opens the backing relational database
package db

import (
	"fmt"

	"skyvault/drive-api/internal/model"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func New() (*gorm.DB, error) {
	var dialector gorm.Dialector

	dsn := viper.GetString("database.dsn")

	switch viper.GetString("database.driver") {
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector)
	if err != nil {
		return nil, fmt.Errorf("failed to open database, %w", err)
	}

	err = db.AutoMigrate(model.User{}, model.File{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
