package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/Dimwest/iot-garden-backend/models"

	"github.com/gin-gonic/gin"
)

// GetMetrics returns the stored sensor readings merged per measure type.
func (ctl *Controller) GetMetrics(c *gin.Context) {
	data, err := ctl.store.SensorData(c.Request.Context())
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Envelope{StatusCode: http.StatusOK, Data: data})
}

// GetHealthcheck returns all stored device healthcheck rows.
func (ctl *Controller) GetHealthcheck(c *gin.Context) {
	data, err := ctl.store.Healthchecks(c.Request.Context())
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Envelope{StatusCode: http.StatusOK, Data: data})
}

// DownloadCSV sends all sensor readings as a CSV file.
func (ctl *Controller) DownloadCSV(c *gin.Context) {
	readings, err := ctl.store.AllSensorReadings(c.Request.Context())
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=sensor_readings.csv")
	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"uuid", "created_at", "measure_type", "unit", "value"})
	for _, r := range readings {
		writer.Write([]string{
			r.UUID.String(),
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.MeasureType,
			r.Unit,
			fmt.Sprintf("%.2f", r.Value),
		})
	}
}
