package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SensorReading is one telemetry sample posted by the Pi.
type SensorReading struct {
	UUID        uuid.UUID `json:"uuid" gorm:"type:uuid;primaryKey"`
	CreatedAt   time.Time `json:"created_at"`
	MeasureType string    `json:"measure_type" gorm:"size:32;not null"`
	Unit        string    `json:"unit" gorm:"size:32;not null"`
	Value       float64   `json:"value" gorm:"not null"`
}

func (r *SensorReading) BeforeCreate(*gorm.DB) error {
	if r.UUID == uuid.Nil {
		r.UUID = uuid.New()
	}
	return nil
}

// Healthcheck is one device health sample (CPU temperature, disk usage...).
type Healthcheck struct {
	UUID            uuid.UUID `json:"uuid" gorm:"type:uuid;primaryKey"`
	CreatedAt       time.Time `json:"created_at"`
	HealthcheckType string    `json:"healthcheck_type" gorm:"size:32;not null"`
	Unit            string    `json:"unit" gorm:"size:32;not null"`
	Value           float64   `json:"value" gorm:"not null"`
}

func (h *Healthcheck) BeforeCreate(*gorm.DB) error {
	if h.UUID == uuid.Nil {
		h.UUID = uuid.New()
	}
	return nil
}

// WateringEvent records one successfully dispatched watering command.
type WateringEvent struct {
	UUID       uuid.UUID `json:"uuid" gorm:"type:uuid;primaryKey"`
	CreatedAt  time.Time `json:"created_at"`
	QuantityML float64   `json:"quantity_ml" gorm:"not null"`
}

func (w *WateringEvent) BeforeCreate(*gorm.DB) error {
	if w.UUID == uuid.Nil {
		w.UUID = uuid.New()
	}
	return nil
}
