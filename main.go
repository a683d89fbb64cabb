package main

import (
	"log"
	"os"

	"github.com/Dimwest/iot-garden-backend/config"
	"github.com/Dimwest/iot-garden-backend/controllers"
	"github.com/Dimwest/iot-garden-backend/logger"
	"github.com/Dimwest/iot-garden-backend/middlewares"
	"github.com/Dimwest/iot-garden-backend/plantid"
	"github.com/Dimwest/iot-garden-backend/storage"
	"github.com/Dimwest/iot-garden-backend/trefle"
	"github.com/Dimwest/iot-garden-backend/twilio"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load environment variables; missing credentials fail here, not on
	// the first request.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	appLog := logger.New(logger.Config{File: cfg.LogFile, Level: cfg.LogLevel})

	// Connect to PostgreSQL and migrate the event tables
	db, err := config.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		appLog.Fatal("Failed to connect to database: ", err)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		appLog.Fatal("Failed to create upload directory: ", err)
	}

	// Wire the external collaborators
	store := storage.NewGateway(db, appLog)
	dispatcher := twilio.NewDispatcher(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioSimSID, appLog)
	plantCache, err := trefle.NewPlantCache(trefle.NewClient(cfg.TrefleToken, appLog), trefle.DefaultCacheSize)
	if err != nil {
		appLog.Fatal("Failed to build plant cache: ", err)
	}
	identifier := plantid.NewIdentifier(cfg.PlantIDToken, appLog)
	hub := controllers.NewHub(appLog)

	ctl := controllers.New(store, dispatcher, plantCache, identifier, hub, cfg.UploadDir, appLog)

	// Set up Gin router with CORS configuration
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middlewares.RequestLogger(appLog))

	ctl.Register(r)

	if err := r.Run(":" + cfg.Port); err != nil {
		appLog.Fatal("Server stopped: ", err)
	}
}
