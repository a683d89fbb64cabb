package controllers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/Dimwest/iot-garden-backend/models"
	"github.com/Dimwest/iot-garden-backend/utils"

	"github.com/gin-gonic/gin"
)

// Page size requested from the botanical provider on every search.
const plantSearchPageSize = 100

// SearchPlantInfo fetches plant data from the cache or from the Trefle API.
func (ctl *Controller) SearchPlantInfo(c *gin.Context) {
	name := c.Param("name")

	data, err := ctl.plants.PlantInfo(c.Request.Context(), name, plantSearchPageSize)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Envelope{StatusCode: http.StatusOK, Data: data})
}

// IdentifyPlant receives an image and queries plant.id to identify the
// species. On success the provider's JSON body is returned verbatim; this
// is the one endpoint that does not use the response envelope.
func (ctl *Controller) IdentifyPlant(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil || file.Filename == "" ||
		!utils.AllowedFile(file.Filename, utils.AllowedImgExtensions) {
		c.JSON(http.StatusBadRequest, models.Envelope{
			StatusCode: http.StatusBadRequest,
			Message:    "Bad Request: file missing",
			ErrorType:  "Bad Request",
		})
		return
	}

	filename := utils.SecureFilename(file.Filename)
	tmpFilename := filepath.Join(ctl.uploadDir, filename)

	ctl.log.Infof("Saving tmp image file at %s", tmpFilename)
	if err := c.SaveUploadedFile(file, tmpFilename); err != nil {
		ctl.respondError(c, err)
		return
	}
	// The temp file is owned by this request alone; remove it on every
	// exit path, without masking the handler's result.
	defer func() {
		ctl.log.Infof("Removing tmp image file at %s", tmpFilename)
		if err := os.Remove(tmpFilename); err != nil {
			ctl.log.Errorf("Could not remove tmp image file %s: %v", tmpFilename, err)
		}
	}()

	image, err := os.ReadFile(tmpFilename)
	if err != nil {
		ctl.respondError(c, err)
		return
	}

	raw, err := ctl.identifier.Identify(c.Request.Context(), image)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}
