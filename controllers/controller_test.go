package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Dimwest/iot-garden-backend/apperrors"
	"github.com/Dimwest/iot-garden-backend/models"
	"github.com/Dimwest/iot-garden-backend/trefle"
	"github.com/Dimwest/iot-garden-backend/twilio"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) SensorData(ctx context.Context) (map[string][]models.SensorReading, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]models.SensorReading), args.Error(1)
}

func (m *MockStore) AllSensorReadings(ctx context.Context) ([]models.SensorReading, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SensorReading), args.Error(1)
}

func (m *MockStore) Healthchecks(ctx context.Context) ([]models.Healthcheck, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Healthcheck), args.Error(1)
}

func (m *MockStore) InsertSensorReading(ctx context.Context, r *models.SensorReading) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockStore) InsertHealthcheck(ctx context.Context, h *models.Healthcheck) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *MockStore) InsertWateringEvent(ctx context.Context, w *models.WateringEvent) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, quantityML float64) (*twilio.CommandResult, error) {
	args := m.Called(ctx, quantityML)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*twilio.CommandResult), args.Error(1)
}

type MockPlants struct {
	mock.Mock
}

func (m *MockPlants) PlantInfo(ctx context.Context, name string, pageSize int) ([]trefle.PlantRecord, error) {
	args := m.Called(ctx, name, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trefle.PlantRecord), args.Error(1)
}

type MockIdentifier struct {
	mock.Mock
}

func (m *MockIdentifier) Identify(ctx context.Context, image []byte) ([]byte, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type testDeps struct {
	store      *MockStore
	dispatcher *MockDispatcher
	plants     *MockPlants
	identifier *MockIdentifier
	uploadDir  string
	router     *gin.Engine
}

func newTestRouter(t *testing.T) *testDeps {
	t.Helper()
	gin.SetMode(gin.TestMode)

	deps := &testDeps{
		store:      new(MockStore),
		dispatcher: new(MockDispatcher),
		plants:     new(MockPlants),
		identifier: new(MockIdentifier),
		uploadDir:  t.TempDir(),
	}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	ctl := New(deps.store, deps.dispatcher, deps.plants, deps.identifier, nil, deps.uploadDir, log)
	deps.router = gin.New()
	ctl.Register(deps.router)
	return deps
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) models.Envelope {
	t.Helper()
	var env models.Envelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestGetMetrics(t *testing.T) {
	deps := newTestRouter(t)
	data := map[string][]models.SensorReading{
		"temperature": {{MeasureType: "temperature", Unit: "celsius", Value: 21.5}},
		"humidity":    {},
		"light":       {},
	}
	deps.store.On("SensorData", mock.Anything).Return(data, nil)

	w := httptest.NewRecorder()
	deps.router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusOK, env.StatusCode)
	buckets := env.Data.(map[string]interface{})
	assert.Contains(t, buckets, "temperature")
	assert.Contains(t, buckets, "humidity")
	assert.Contains(t, buckets, "light")
	deps.store.AssertExpectations(t)
}

func TestGetMetricsStorageError(t *testing.T) {
	deps := newTestRouter(t)
	deps.store.On("SensorData", mock.Anything).
		Return(nil, apperrors.New(apperrors.KindStorage, "database driver error"))

	w := httptest.NewRecorder()
	deps.router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusInternalServerError, env.StatusCode)
	assert.Equal(t, "Internal Server Error", env.ErrorType)
	assert.NotEmpty(t, env.Message)
}

func TestGetHealthcheck(t *testing.T) {
	deps := newTestRouter(t)
	checks := []models.Healthcheck{{HealthcheckType: "cpu_temperature", Unit: "celsius", Value: 52}}
	deps.store.On("Healthchecks", mock.Anything).Return(checks, nil)

	w := httptest.NewRecorder()
	deps.router.ServeHTTP(w, httptest.NewRequest("GET", "/healthcheck", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Len(t, env.Data, 1)
}

func TestPostSensorData(t *testing.T) {
	deps := newTestRouter(t)
	deps.store.On("InsertSensorReading", mock.Anything, mock.MatchedBy(func(r *models.SensorReading) bool {
		return r.MeasureType == "temperature" && r.Unit == "celsius" && r.Value == 21.5
	})).Return(nil)

	body := `{"measure_type": "temperature", "unit": "celsius", "value": 21.5}`
	req := httptest.NewRequest("POST", "/pi/sensors", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	deps.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusOK, env.StatusCode)
	deps.store.AssertExpectations(t)
}

func TestPostSensorDataMissingKey(t *testing.T) {
	deps := newTestRouter(t)

	body := `{"measure_type": "temperature", "unit": "celsius"}`
	req := httptest.NewRequest("POST", "/pi/sensors", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	deps.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "Bad Request", env.ErrorType)
	deps.store.AssertNotCalled(t, "InsertSensorReading", mock.Anything, mock.Anything)
}

func TestPostSensorDataConflict(t *testing.T) {
	deps := newTestRouter(t)
	deps.store.On("InsertSensorReading", mock.Anything, mock.Anything).
		Return(apperrors.New(apperrors.KindConflict, "entity already exists"))

	body := `{"measure_type": "temperature", "unit": "celsius", "value": 21.5}`
	req := httptest.NewRequest("POST", "/pi/sensors", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	deps.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "Conflict", env.ErrorType)
}

func TestPostHealthcheck(t *testing.T) {
	deps := newTestRouter(t)
	deps.store.On("InsertHealthcheck", mock.Anything, mock.MatchedBy(func(h *models.Healthcheck) bool {
		return h.HealthcheckType == "disk_usage" && h.Value == 63
	})).Return(nil)

	body := `{"healthcheck_type": "disk_usage", "unit": "percent", "value": 63}`
	req := httptest.NewRequest("POST", "/pi/healthcheck", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	deps.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	deps.store.AssertExpectations(t)
}

func TestPostWatering(t *testing.T) {
	deps := newTestRouter(t)
	result := &twilio.CommandResult{Status: "queued", DateCreated: "2026-08-30T10:00:00Z", Command: "WATER_250"}
	deps.dispatcher.On("Dispatch", mock.Anything, 250.0).Return(result, nil)
	deps.store.On("InsertWateringEvent", mock.Anything, mock.MatchedBy(func(w *models.WateringEvent) bool {
		return w.QuantityML == 250
	})).Return(nil)

	body := `{"quantity_ml": 250}`
	req := httptest.NewRequest("POST", "/watering", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	deps.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	response := env.Response.(map[string]interface{})
	assert.Equal(t, "queued", response["status"])
	assert.Equal(t, "WATER_250", response["command"])
	deps.store.AssertExpectations(t)
	deps.dispatcher.AssertExpectations(t)
}

func TestPostWateringDispatchFailure(t *testing.T) {
	deps := newTestRouter(t)
	deps.dispatcher.On("Dispatch", mock.Anything, 250.0).
		Return(nil, apperrors.New(apperrors.KindDispatch, "command dispatch failed"))

	body := `{"quantity_ml": 250}`
	req := httptest.NewRequest("POST", "/watering", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	deps.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// No orphaned watering rows: storage must never be touched.
	deps.store.AssertNotCalled(t, "InsertWateringEvent", mock.Anything, mock.Anything)
}

func TestPostWateringMissingKey(t *testing.T) {
	deps := newTestRouter(t)

	req := httptest.NewRequest("POST", "/watering", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	deps.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	deps.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestSearchPlantInfo(t *testing.T) {
	deps := newTestRouter(t)
	records := []trefle.PlantRecord{{"common_name": "tapertip onion"}}
	deps.plants.On("PlantInfo", mock.Anything, "tapertip onion", 100).Return(records, nil)

	w := httptest.NewRecorder()
	deps.router.ServeHTTP(w, httptest.NewRequest("GET", "/search_plant_info/tapertip%20onion", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Len(t, env.Data, 1)
	deps.plants.AssertExpectations(t)
}

func TestSearchPlantInfoProviderError(t *testing.T) {
	deps := newTestRouter(t)
	deps.plants.On("PlantInfo", mock.Anything, "rose", 100).
		Return(nil, apperrors.New(apperrors.KindProvider, "trefle request failed"))

	w := httptest.NewRecorder()
	deps.router.ServeHTTP(w, httptest.NewRequest("GET", "/search_plant_info/rose", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "Internal Server Error", env.ErrorType)
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	assert.NoError(t, err)
	_, err = part.Write(content)
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func uploadDirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestIdentifyPlantRejectsExtension(t *testing.T) {
	deps := newTestRouter(t)

	body, contentType := multipartUpload(t, "file", "notes.txt", []byte("not an image"))
	req := httptest.NewRequest("POST", "/identify_plant", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	deps.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "Bad Request", env.ErrorType)
	assert.Empty(t, uploadDirEntries(t, deps.uploadDir), "no temp file may be written")
	deps.identifier.AssertNotCalled(t, "Identify", mock.Anything, mock.Anything)
}

func TestIdentifyPlantMissingFile(t *testing.T) {
	deps := newTestRouter(t)

	req := httptest.NewRequest("POST", "/identify_plant", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := httptest.NewRecorder()
	deps.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	deps.identifier.AssertNotCalled(t, "Identify", mock.Anything, mock.Anything)
}

func TestIdentifyPlantPassthrough(t *testing.T) {
	deps := newTestRouter(t)
	image := []byte{0xff, 0xd8, 0xff, 0xe0}
	providerJSON := []byte(`{"suggestions":[{"plant_name":"Allium acuminatum"}]}`)

	deps.identifier.On("Identify", mock.Anything, image).
		Run(func(args mock.Arguments) {
			// Temp file must exist while the remote call is in flight.
			assert.FileExists(t, filepath.Join(deps.uploadDir, "flower.jpg"))
		}).
		Return(providerJSON, nil)

	body, contentType := multipartUpload(t, "file", "flower.jpg", image)
	req := httptest.NewRequest("POST", "/identify_plant", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	deps.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, providerJSON, w.Body.Bytes(), "provider body is passed through verbatim")
	assert.Empty(t, uploadDirEntries(t, deps.uploadDir), "temp file is removed after the call")
	deps.identifier.AssertExpectations(t)
}

func TestIdentifyPlantProviderFailureStillCleansUp(t *testing.T) {
	deps := newTestRouter(t)
	image := []byte{0xff, 0xd8}
	deps.identifier.On("Identify", mock.Anything, image).
		Return(nil, apperrors.New(apperrors.KindProvider, "identification API responded with status 500"))

	body, contentType := multipartUpload(t, "file", "flower.jpeg", image)
	req := httptest.NewRequest("POST", "/identify_plant", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	deps.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "Internal Server Error", env.ErrorType)
	assert.Empty(t, uploadDirEntries(t, deps.uploadDir), "temp file is removed on failure too")
}

func TestIdentifyPlantSanitizesFilename(t *testing.T) {
	deps := newTestRouter(t)
	image := []byte{0x89, 0x50, 0x4e, 0x47}
	deps.identifier.On("Identify", mock.Anything, image).Return([]byte(`{}`), nil)

	body, contentType := multipartUpload(t, "file", "../../etc/evil.png", image)
	req := httptest.NewRequest("POST", "/identify_plant", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	deps.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	// Nothing may be written outside the upload directory.
	assert.NoFileExists(t, filepath.Join(deps.uploadDir, "..", "..", "etc", "evil.png"))
	assert.Empty(t, uploadDirEntries(t, deps.uploadDir))
}

func TestDownloadCSV(t *testing.T) {
	deps := newTestRouter(t)
	readings := []models.SensorReading{{MeasureType: "temperature", Unit: "celsius", Value: 21.5}}
	deps.store.On("AllSensorReadings", mock.Anything).Return(readings, nil)

	w := httptest.NewRecorder()
	deps.router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics/csv", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "measure_type")
	assert.Contains(t, w.Body.String(), "temperature")
}
