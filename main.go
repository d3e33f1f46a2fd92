package main

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pocketledger/backend/internal/jobs"
	"github.com/pocketledger/backend/internal/models"
	"github.com/pocketledger/backend/internal/router"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// A .env file is optional, the environment usually comes from the
	// process manager or container runtime
	_ = godotenv.Load()

	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	apiURL, ok := os.LookupEnv("API_URL")
	if !ok {
		apiURL = "http://localhost:8080"
	}

	baseURL, err := url.Parse(apiURL)
	if err != nil {
		log.Fatal().Str("API_URL", apiURL).Msg("API_URL is not a valid URL")
	}

	dbPath, ok := os.LookupEnv("DB_PATH")
	if !ok {
		// Create data directory
		dataDir := filepath.Join(".", "data")
		err := os.MkdirAll(dataDir, os.ModePerm)
		if err != nil {
			log.Fatal().Msg(err.Error())
		}

		dbPath = filepath.Join(dataDir, "gorm.db")
	}

	// Connect to the database
	err = models.Connect(dbPath)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	r, teardown, err := router.Config(baseURL)
	defer teardown()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	router.AttachRoutes(r.Group("/"))

	// Process recurrences in the background. The interval can be tuned,
	// catching up happens one period per run either way.
	interval := time.Hour
	if value, ok := os.LookupEnv("RECURRENCE_INTERVAL"); ok {
		interval, err = time.ParseDuration(value)
		if err != nil {
			log.Fatal().Str("RECURRENCE_INTERVAL", value).Msg("RECURRENCE_INTERVAL is not a valid duration")
		}
	}

	scheduler := jobs.NewScheduler()
	_, err = scheduler.ScheduleRecurrenceProcessing(interval)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	scheduler.Start()
	defer scheduler.Stop()

	if err := r.Run(); err != nil {
		log.Fatal().Msg(err.Error())
	}
}
