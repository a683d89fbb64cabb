package controllers

import (
	"net/http"

	"github.com/Dimwest/iot-garden-backend/models"
	"github.com/Dimwest/iot-garden-backend/utils"

	"github.com/gin-gonic/gin"
)

// PostSensorData processes incoming sensor data from the Pi.
func (ctl *Controller) PostSensorData(c *gin.Context) {
	var payload models.SensorPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		ctl.respondBadPayload(c, err)
		return
	}

	reading := models.SensorReading{
		MeasureType: *payload.MeasureType,
		Unit:        *payload.Unit,
		Value:       *payload.Value,
	}
	if err := ctl.store.InsertSensorReading(c.Request.Context(), &reading); err != nil {
		ctl.respondError(c, err)
		return
	}

	if utils.CheckAbnormality(reading) {
		ctl.log.Warnf("Abnormal %s reading: %.2f %s", reading.MeasureType, reading.Value, reading.Unit)
		if ctl.hub != nil {
			ctl.hub.BroadcastNotification(reading)
		}
	}
	if ctl.hub != nil {
		ctl.hub.BroadcastReading(reading)
	}

	c.JSON(http.StatusOK, models.Envelope{StatusCode: http.StatusOK})
}

// PostHealthcheck processes incoming Raspberry healthcheck data.
func (ctl *Controller) PostHealthcheck(c *gin.Context) {
	var payload models.HealthcheckPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		ctl.respondBadPayload(c, err)
		return
	}

	check := models.Healthcheck{
		HealthcheckType: *payload.HealthcheckType,
		Unit:            *payload.Unit,
		Value:           *payload.Value,
	}
	if err := ctl.store.InsertHealthcheck(c.Request.Context(), &check); err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Envelope{StatusCode: http.StatusOK})
}
