package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"fulfillment/cmd"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/shelfrepo"
	"fulfillment/internal/adapters/out/postgres/shipmentrepo"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB := openDatabase(configs)

	root, err := cmd.NewCompositionRoot(configs, gormDB, logger)
	if err != nil {
		log.Fatalf("Failed to wire application: %v", err)
	}
	defer func() {
		_ = root.Close()
	}()

	jobManager, err := root.CreateJobManager()
	if err != nil {
		log.Fatalf("Failed to create job manager: %v", err)
	}
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	consumer, err := root.CreateTrackingConsumer()
	if err != nil {
		log.Fatalf("Failed to create tracking consumer: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if runErr := consumer.Run(ctx); runErr != nil {
			logger.Error("Tracking consumer stopped", "error", runErr)
		}
	}()
	defer func() {
		_ = consumer.Close()
	}()

	startWebServer(root, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:   goDotEnvVariable("HTTP_PORT"),
		DBHost:     goDotEnvVariable("DB_HOST"),
		DBPort:     goDotEnvVariable("DB_PORT"),
		DBUser:     goDotEnvVariable("DB_USER"),
		DBPassword: goDotEnvVariable("DB_PASSWORD"),
		DBName:     goDotEnvVariable("DB_NAME"),
		DBSslMode:  goDotEnvVariable("DB_SSLMODE"),

		KafkaHost:          goDotEnvVariable("KAFKA_HOST"),
		KafkaConsumerGroup: goDotEnvVariable("KAFKA_CONSUMER_GROUP"),
		KafkaTrackingTopic: goDotEnvVariable("KAFKA_TRACKING_TOPIC"),

		CarrierGatewayURL:    goDotEnvVariable("CARRIER_GATEWAY_URL"),
		CarrierGatewayAPIKey: goDotEnvVariable("CARRIER_GATEWAY_API_KEY"),

		OriginStreet:  goDotEnvVariable("ORIGIN_STREET"),
		OriginCity:    goDotEnvVariable("ORIGIN_CITY"),
		OriginZip:     goDotEnvVariable("ORIGIN_ZIP"),
		OriginCountry: goDotEnvVariable("ORIGIN_COUNTRY"),
		OriginLat:     floatEnvVariable("ORIGIN_LAT"),
		OriginLon:     floatEnvVariable("ORIGIN_LON"),

		ServiceRadiusKm:             floatEnvVariable("SERVICE_RADIUS_KM"),
		PickupSavingsThresholdCents: int64EnvVariable("PICKUP_SAVINGS_THRESHOLD_CENTS"),

		StaleDays:      intEnvVariable("STALE_DAYS"),
		ForcedShipDays: intEnvVariable("FORCED_SHIP_DAYS"),
		SweepSchedule:  goDotEnvVariable("SWEEP_SCHEDULE"),
		DefaultCarrier: goDotEnvVariable("DEFAULT_CARRIER"),
		DefaultService: goDotEnvVariable("DEFAULT_SERVICE"),

		MaxRateConcurrency:    intEnvVariable("MAX_RATE_CONCURRENCY"),
		PerCarrierTimeoutMs:   intEnvVariable("PER_CARRIER_TIMEOUT_MS"),
		BatchZipPrefixLen:     intEnvVariable("BATCH_ZIP_PREFIX_LEN"),
		BatchWeightLimitGrams: intEnvVariable("BATCH_WEIGHT_LIMIT_GRAMS"),
		BatchRetryAttempts:    intEnvVariable("BATCH_RETRY_ATTEMPTS"),
		ConsumerWorkers:       intEnvVariable("CONSUMER_WORKERS"),

		CandidateServices: parseCandidateServices(goDotEnvVariable("CANDIDATE_SERVICES")),
		WebhookSecrets:    parsePairs(goDotEnvVariable("WEBHOOK_SECRETS")),
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

func intEnvVariable(key string) int {
	value, err := strconv.Atoi(goDotEnvVariable(key))
	if err != nil {
		log.Fatalf("Invalid integer for %s: %v", key, err)
	}
	return value
}

func int64EnvVariable(key string) int64 {
	value, err := strconv.ParseInt(goDotEnvVariable(key), 10, 64)
	if err != nil {
		log.Fatalf("Invalid integer for %s: %v", key, err)
	}
	return value
}

func floatEnvVariable(key string) float64 {
	value, err := strconv.ParseFloat(goDotEnvVariable(key), 64)
	if err != nil {
		log.Fatalf("Invalid number for %s: %v", key, err)
	}
	return value
}

// parseCandidateServices parses "ups:standard,ups:express,fedex:ground" into
// candidate service pairs. A carrier may appear once per service.
func parseCandidateServices(raw string) []cmd.CandidateServiceConfig {
	candidates := make([]cmd.CandidateServiceConfig, 0)
	for _, entry := range strings.Split(raw, ",") {
		carrier, service, found := strings.Cut(strings.TrimSpace(entry), ":")
		if !found || carrier == "" || service == "" {
			continue
		}
		candidates = append(candidates, cmd.CandidateServiceConfig{
			Carrier: carrier,
			Service: service,
		})
	}
	return candidates
}

// parsePairs parses "key:value,key:value" into a map.
func parsePairs(raw string) map[string]string {
	pairs := make(map[string]string)
	for _, entry := range strings.Split(raw, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(entry), ":")
		if !found || key == "" || value == "" {
			continue
		}
		pairs[key] = value
	}
	return pairs
}

func openDatabase(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode)

	gormDB, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&shipmentrepo.ShipmentDTO{},
		&shipmentrepo.ShipmentOrderDTO{},
		&shipmentrepo.TrackingEventDTO{},
		&shelfrepo.ShelfDTO{},
		&shelfrepo.AssignmentDTO{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database schema: %v", err)
	}

	return gormDB
}

func startWebServer(root *cmd.CompositionRoot, port string) {
	server, err := root.CreateHTTPServer()
	if err != nil {
		log.Fatalf("Failed to create HTTP server: %v", err)
	}

	e := echo.New()
	server.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
