package utils

import "github.com/Dimwest/iot-garden-backend/models"

type valueRange struct {
	min, max float64
}

// Normal operating ranges per measure type; readings outside them trigger
// a warning log and a websocket notification.
var normalRanges = map[string]valueRange{
	"temperature": {min: 5, max: 40},
	"humidity":    {min: 20, max: 95},
	"light":       {min: 0, max: 100000},
}

// CheckAbnormality determines whether the sensor reading is abnormal.
// Unknown measure types are never flagged.
func CheckAbnormality(r models.SensorReading) bool {
	rng, ok := normalRanges[r.MeasureType]
	if !ok {
		return false
	}
	return r.Value < rng.min || r.Value > rng.max
}
