package config

import (
	"os"
	"strings"

	"github.com/Dimwest/iot-garden-backend/apperrors"

	"github.com/joho/godotenv"
)

// Config holds every environment-derived value the service needs.
type Config struct {
	DatabaseURL string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioSimSID     string

	TrefleToken  string
	PlantIDToken string

	Port      string
	UploadDir string

	LogLevel string
	LogFile  string
}

var requiredVars = []string{
	"DATABASE_URL",
	"TWILIO_ACCOUNT_SID",
	"TWILIO_AUTH_TOKEN",
	"TWILIO_SUPERSIM_SID",
	"TREFLE_ACCESS_TOKEN",
	"PLANT_ID_API_ACCESS_TOKEN",
}

// Load reads the environment (optionally seeded from a .env file) and fails
// with a configuration error naming every missing variable, so a broken
// deployment is caught at startup rather than on the first request.
func Load() (*Config, error) {
	godotenv.Load()

	var missing []string
	for _, v := range requiredVars {
		if os.Getenv(v) == "" {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.New(apperrors.KindConfiguration,
			"missing environment variables: %s", strings.Join(missing, ", "))
	}

	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioSimSID:     os.Getenv("TWILIO_SUPERSIM_SID"),
		TrefleToken:      os.Getenv("TREFLE_ACCESS_TOKEN"),
		PlantIDToken:     os.Getenv("PLANT_ID_API_ACCESS_TOKEN"),
		Port:             os.Getenv("PORT"),
		UploadDir:        os.Getenv("UPLOAD_DIR"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		LogFile:          os.Getenv("LOG_FILE"),
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "./tmp_img"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}
