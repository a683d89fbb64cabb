package controllers

import (
	"net/http"

	"github.com/Dimwest/iot-garden-backend/models"

	"github.com/gin-gonic/gin"
)

// PostWatering triggers plant watering on user request. The watering event
// is only persisted after the command dispatch succeeded, so a dispatch
// failure leaves no orphaned rows.
func (ctl *Controller) PostWatering(c *gin.Context) {
	var payload models.WateringPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		ctl.respondBadPayload(c, err)
		return
	}

	result, err := ctl.dispatcher.Dispatch(c.Request.Context(), *payload.QuantityML)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	event := models.WateringEvent{QuantityML: *payload.QuantityML}
	if err := ctl.store.InsertWateringEvent(c.Request.Context(), &event); err != nil {
		ctl.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Envelope{StatusCode: http.StatusOK, Response: result})
}
