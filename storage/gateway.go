package storage

import (
	"context"
	"errors"

	"github.com/Dimwest/iot-garden-backend/apperrors"
	"github.com/Dimwest/iot-garden-backend/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Measure types aggregated by the metrics endpoint.
var metricBuckets = []string{"temperature", "humidity", "light"}

// Gateway wraps the database behind scoped transactions. Every statement
// goes through gorm's parameter binding; request values are never
// interpolated into SQL.
type Gateway struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewGateway(db *gorm.DB, log *logrus.Logger) *Gateway {
	return &Gateway{db: db, log: log}
}

// WithTx runs fn inside a transaction scoped to the request context. The
// transaction commits only when commit is true and fn returned nil; the
// deferred rollback releases the connection on every other path, panics
// included. Read-only callers pass commit=false.
func (g *Gateway) WithTx(ctx context.Context, commit bool, fn func(tx *gorm.DB) error) error {
	g.log.Debug("Opening database transaction")
	tx := g.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return apperrors.Wrap(apperrors.KindStorage, tx.Error, "could not begin transaction")
	}
	defer func() {
		g.log.Debug("Releasing database transaction")
		tx.Rollback() // no-op once committed
	}()

	if err := fn(tx); err != nil {
		return translate(err)
	}
	if commit {
		if err := tx.Commit().Error; err != nil {
			return translate(err)
		}
	}
	return nil
}

// translate maps driver-level errors onto the service taxonomy.
func translate(err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Wrap(apperrors.KindConflict, err, "entity already exists")
	}
	return apperrors.Wrap(apperrors.KindStorage, err, "database driver error")
}

// SensorData returns the stored readings grouped by measure type.
//
// TODO: run the three bucket queries concurrently, they are independent
// reads on the same table.
func (g *Gateway) SensorData(ctx context.Context) (map[string][]models.SensorReading, error) {
	data := make(map[string][]models.SensorReading, len(metricBuckets))
	err := g.WithTx(ctx, false, func(tx *gorm.DB) error {
		for _, bucket := range metricBuckets {
			readings := make([]models.SensorReading, 0)
			if err := tx.Where("measure_type = ?", bucket).
				Order("created_at").Find(&readings).Error; err != nil {
				return err
			}
			data[bucket] = readings
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// AllSensorReadings returns every stored reading, newest first.
func (g *Gateway) AllSensorReadings(ctx context.Context) ([]models.SensorReading, error) {
	readings := make([]models.SensorReading, 0)
	err := g.WithTx(ctx, false, func(tx *gorm.DB) error {
		return tx.Order("created_at desc").Find(&readings).Error
	})
	if err != nil {
		return nil, err
	}
	return readings, nil
}

// Healthchecks returns every stored healthcheck row.
func (g *Gateway) Healthchecks(ctx context.Context) ([]models.Healthcheck, error) {
	checks := make([]models.Healthcheck, 0)
	err := g.WithTx(ctx, false, func(tx *gorm.DB) error {
		return tx.Order("created_at").Find(&checks).Error
	})
	if err != nil {
		return nil, err
	}
	return checks, nil
}

func (g *Gateway) InsertSensorReading(ctx context.Context, r *models.SensorReading) error {
	return g.WithTx(ctx, true, func(tx *gorm.DB) error {
		return tx.Create(r).Error
	})
}

func (g *Gateway) InsertHealthcheck(ctx context.Context, h *models.Healthcheck) error {
	return g.WithTx(ctx, true, func(tx *gorm.DB) error {
		return tx.Create(h).Error
	})
}

func (g *Gateway) InsertWateringEvent(ctx context.Context, w *models.WateringEvent) error {
	return g.WithTx(ctx, true, func(tx *gorm.DB) error {
		return tx.Create(w).Error
	})
}
