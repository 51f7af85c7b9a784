package cmd

// Config carries everything the composition root needs to wire the
// application. Values are read from the environment by cmd/app and parsed
// into typed fields before wiring starts; a bad value fails startup.
type Config struct {
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	KafkaHost          string
	KafkaConsumerGroup string
	KafkaTrackingTopic string

	CarrierGatewayURL    string
	CarrierGatewayAPIKey string

	// Warehouse origin address. Shipping is impossible without it, so a
	// missing or ungeocodable origin is fatal at startup.
	OriginStreet  string
	OriginCity    string
	OriginZip     string
	OriginCountry string
	OriginLat     float64
	OriginLon     float64

	// Routing policy.
	ServiceRadiusKm             float64
	PickupSavingsThresholdCents int64

	// Stale pickup policy.
	StaleDays      int
	ForcedShipDays int
	SweepSchedule  string
	DefaultCarrier string
	DefaultService string

	// Carrier interaction tuning.
	MaxRateConcurrency    int
	PerCarrierTimeoutMs   int
	BatchZipPrefixLen     int
	BatchWeightLimitGrams int
	BatchRetryAttempts    int
	ConsumerWorkers       int

	// CandidateServices lists the carrier services to rate-shop.
	CandidateServices []CandidateServiceConfig

	// WebhookSecrets maps carrier name to the shared HMAC secret.
	WebhookSecrets map[string]string
}

// CandidateServiceConfig is one carrier service eligible for rate shopping.
type CandidateServiceConfig struct {
	Carrier string
	Service string
}
