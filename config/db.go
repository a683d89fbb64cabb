package config

import (
	"github.com/Dimwest/iot-garden-backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ConnectDB opens the PostgreSQL connection and runs the migrations.
// TranslateError is required so uniqueness violations surface as
// gorm.ErrDuplicatedKey instead of a driver-specific error.
func ConnectDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	if err := MigrateModels(db); err != nil {
		return nil, err
	}
	return db, nil
}

// MigrateModels runs the database migrations.
func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.SensorReading{},
		&models.Healthcheck{},
		&models.WateringEvent{},
	)
}
