package models

// Pointer fields so that a missing key is distinguishable from a zero value
// and binding can reject it with a 400.

type SensorPayload struct {
	MeasureType *string  `json:"measure_type" binding:"required"`
	Unit        *string  `json:"unit" binding:"required"`
	Value       *float64 `json:"value" binding:"required"`
}

type HealthcheckPayload struct {
	HealthcheckType *string  `json:"healthcheck_type" binding:"required"`
	Unit            *string  `json:"unit" binding:"required"`
	Value           *float64 `json:"value" binding:"required"`
}

type WateringPayload struct {
	QuantityML *float64 `json:"quantity_ml" binding:"required"`
}
