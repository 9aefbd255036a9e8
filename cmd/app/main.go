package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"fulfillment/cmd"
	httpadapter "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/postgres/inventoryrepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/productrepo"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	gormDB := mustOpenDatabase(configs, logger)

	app := cmd.NewCompositionRoot(configs, gormDB, logger)
	defer app.Shutdown()

	jobManager := jobs.NewJobManager(app.CreateSweepStaleOrdersCommandHandler(), logger)
	if err := jobManager.StartAll(); err != nil {
		logger.Error("Failed to start background jobs", "error", err)
		os.Exit(1)
	}
	defer jobManager.StopAll()

	startWebServer(app, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	pipeline := commands.NewDefaultConfig()
	pipeline.ProcessingDelayMin = goDotEnvDuration("PROCESSING_DELAY_MIN", pipeline.ProcessingDelayMin)
	pipeline.ProcessingDelayMax = goDotEnvDuration("PROCESSING_DELAY_MAX", pipeline.ProcessingDelayMax)
	pipeline.ShippingDelayMin = goDotEnvDuration("SHIPPING_DELAY_MIN", pipeline.ShippingDelayMin)
	pipeline.ShippingDelayMax = goDotEnvDuration("SHIPPING_DELAY_MAX", pipeline.ShippingDelayMax)
	pipeline.DeliveryDelayMin = goDotEnvDuration("DELIVERY_DELAY_MIN", pipeline.DeliveryDelayMin)
	pipeline.DeliveryDelayMax = goDotEnvDuration("DELIVERY_DELAY_MAX", pipeline.DeliveryDelayMax)
	pipeline.InitialDeadlineOffset = goDotEnvDuration("INITIAL_DEADLINE_OFFSET", pipeline.InitialDeadlineOffset)

	if err := pipeline.Validate(); err != nil {
		log.Fatalf("Invalid pipeline timing configuration: %v", err)
	}

	config := cmd.Config{
		HTTPPort:   goDotEnvVariable("HTTP_PORT"),
		DBHost:     goDotEnvVariable("DB_HOST"),
		DBPort:     goDotEnvVariable("DB_PORT"),
		DBUser:     goDotEnvVariable("DB_USER"),
		DBPassword: goDotEnvVariable("DB_PASSWORD"),
		DBName:     goDotEnvVariable("DB_NAME"),
		DBSslMode:  goDotEnvVariable("DB_SSLMODE"),
		Pipeline:   pipeline,
	}
	return config
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

// goDotEnvDuration reads an optional duration variable, falling back to the
// default when the variable is unset.
func goDotEnvDuration(key string, fallback time.Duration) time.Duration {
	value := goDotEnvVariable(key)
	if value == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("Invalid duration in %s: %v", key, err)
	}
	return parsed
}

func mustOpenDatabase(configs cmd.Config, logger *slog.Logger) *gorm.DB {
	gormDB, err := gorm.Open(gormpostgres.Open(configs.DSN()), &gorm.Config{})
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	err = gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.OrderLineDTO{},
		&orderrepo.OrderHistoryDTO{},
		&productrepo.ProductDTO{},
		&inventoryrepo.InventoryDTO{},
	)
	if err != nil {
		logger.Error("Failed to migrate database schema", "error", err)
		os.Exit(1)
	}

	return gormDB
}

func startWebServer(app *cmd.CompositionRoot, port string) {
	e := echo.New()
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})

	server := httpadapter.NewServer(
		app.CreateCreateOrderCommandHandler(),
		app.CreateGetOrderQueryHandler(),
		app.CreateGetOrderHistoryQueryHandler(),
	)
	server.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
