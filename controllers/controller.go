package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Dimwest/iot-garden-backend/apperrors"
	"github.com/Dimwest/iot-garden-backend/models"
	"github.com/Dimwest/iot-garden-backend/trefle"
	"github.com/Dimwest/iot-garden-backend/twilio"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Store is the storage gateway surface the handlers need.
type Store interface {
	SensorData(ctx context.Context) (map[string][]models.SensorReading, error)
	AllSensorReadings(ctx context.Context) ([]models.SensorReading, error)
	Healthchecks(ctx context.Context) ([]models.Healthcheck, error)
	InsertSensorReading(ctx context.Context, r *models.SensorReading) error
	InsertHealthcheck(ctx context.Context, h *models.Healthcheck) error
	InsertWateringEvent(ctx context.Context, w *models.WateringEvent) error
}

// Dispatcher triggers the physical watering action.
type Dispatcher interface {
	Dispatch(ctx context.Context, quantityML float64) (*twilio.CommandResult, error)
}

// PlantInfoProvider is the (cached) botanical lookup.
type PlantInfoProvider interface {
	PlantInfo(ctx context.Context, name string, pageSize int) ([]trefle.PlantRecord, error)
}

// Identifier classifies a plant photo.
type Identifier interface {
	Identify(ctx context.Context, image []byte) ([]byte, error)
}

// Controller holds the injected collaborators for all handlers. A fresh
// instance per test keeps state isolated.
type Controller struct {
	store      Store
	dispatcher Dispatcher
	plants     PlantInfoProvider
	identifier Identifier
	hub        *Hub
	uploadDir  string
	log        *logrus.Logger
}

func New(store Store, dispatcher Dispatcher, plants PlantInfoProvider,
	identifier Identifier, hub *Hub, uploadDir string, log *logrus.Logger) *Controller {
	return &Controller{
		store:      store,
		dispatcher: dispatcher,
		plants:     plants,
		identifier: identifier,
		hub:        hub,
		uploadDir:  uploadDir,
		log:        log,
	}
}

// Register mounts all routes on the router.
func (ctl *Controller) Register(r *gin.Engine) {
	r.GET("/metrics", ctl.GetMetrics)
	r.GET("/metrics/csv", ctl.DownloadCSV)
	r.GET("/healthcheck", ctl.GetHealthcheck)
	r.POST("/pi/sensors", ctl.PostSensorData)
	r.POST("/pi/healthcheck", ctl.PostHealthcheck)
	r.POST("/watering", ctl.PostWatering)
	r.GET("/search_plant_info/:name", ctl.SearchPlantInfo)
	r.POST("/identify_plant", ctl.IdentifyPlant)
	if ctl.hub != nil {
		r.GET("/ws", ctl.hub.Handle)
	}
}

// respondError is the single mapping stage from internal error kinds to the
// response envelope. Unrecognized errors keep their runtime type name and
// message in the body.
func (ctl *Controller) respondError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		status := appErr.Kind.HTTPStatus()
		c.JSON(status, models.Envelope{
			StatusCode: status,
			Message:    appErr.Message,
			ErrorType:  appErr.Kind.Label(),
			Args:       appErr.Args,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, models.Envelope{
		StatusCode: http.StatusInternalServerError,
		Message:    fmt.Sprintf("Internal Server Error: %T", err),
		ErrorType:  "Internal Server Error",
		Args:       []interface{}{err.Error()},
	})
}

// respondBadPayload maps a JSON binding failure onto the 400 envelope.
func (ctl *Controller) respondBadPayload(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.Envelope{
		StatusCode: http.StatusBadRequest,
		Message:    "Missing key in payload",
		ErrorType:  "Bad Request",
		Args:       []interface{}{err.Error()},
	})
}
