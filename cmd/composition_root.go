package cmd

import (
	"log/slog"
	"time"

	httpin "fulfillment/internal/adapters/in/http"
	kafkain "fulfillment/internal/adapters/in/kafka"
	"fulfillment/internal/adapters/out/carriergw"
	kafkaout "fulfillment/internal/adapters/out/kafka"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"

	"gorm.io/gorm"
)

// CompositionRoot wires adapters, domain services and use case handlers.
// Shared infrastructure (gateway, publisher, verifier) is built once; handlers
// are built per request for a dependency.
type CompositionRoot struct {
	config Config
	gormDB *gorm.DB
	logger *slog.Logger

	origin    kernel.Address
	gateway   ports.CarrierGateway
	publisher *kafkaout.EventPublisher
	verifier  ports.WebhookVerifier
}

// NewCompositionRoot builds the shared infrastructure from configuration.
func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	origin, err := kernel.NewGeocodedAddress(
		config.OriginStreet, config.OriginCity, config.OriginZip, config.OriginCountry,
		config.OriginLat, config.OriginLon)
	if err != nil {
		return nil, err
	}

	gateway, err := carriergw.NewClient(
		config.CarrierGatewayURL, config.CarrierGatewayAPIKey,
		time.Duration(config.PerCarrierTimeoutMs)*time.Millisecond, logger)
	if err != nil {
		return nil, err
	}

	publisher, err := kafkaout.NewEventPublisher([]string{config.KafkaHost}, logger)
	if err != nil {
		return nil, err
	}

	verifier, err := carriergw.NewHMACWebhookVerifier(config.WebhookSecrets)
	if err != nil {
		return nil, err
	}

	return &CompositionRoot{
		config:    config,
		gormDB:    gormDB,
		logger:    logger,
		origin:    origin,
		gateway:   gateway,
		publisher: publisher,
		verifier:  verifier,
	}, nil
}

// Close releases shared infrastructure.
func (c *CompositionRoot) Close() error {
	return c.publisher.Close()
}

func (c *CompositionRoot) staleAge() time.Duration {
	return time.Duration(c.config.StaleDays) * 24 * time.Hour
}

func (c *CompositionRoot) forcedShipAge() time.Duration {
	return time.Duration(c.config.ForcedShipDays) * 24 * time.Hour
}

func (c *CompositionRoot) candidateServices() []ports.CandidateService {
	candidates := make([]ports.CandidateService, 0, len(c.config.CandidateServices))
	for _, candidate := range c.config.CandidateServices {
		candidates = append(candidates, ports.CandidateService{
			Carrier: candidate.Carrier,
			Service: candidate.Service,
		})
	}
	return candidates
}

func (c *CompositionRoot) CreateCreateShipmentCommandHandler() (commands.CreateShipmentCommandHandler, error) {
	return commands.NewCreateShipmentCommandHandler(
		postgres.NewShipmentUoWFactory(c.gormDB), c.gateway, c.publisher, c.origin, c.logger)
}

func (c *CompositionRoot) CreateCreateBatchShipmentCommandHandler() (commands.CreateBatchShipmentCommandHandler, error) {
	planner, err := services.NewBatchPlanner(c.config.BatchZipPrefixLen, c.config.BatchWeightLimitGrams)
	if err != nil {
		return commands.CreateBatchShipmentCommandHandler{}, err
	}

	return commands.NewCreateBatchShipmentCommandHandler(
		postgres.NewShipmentUoWFactory(c.gormDB), c.gateway, planner, c.publisher, c.origin,
		c.config.MaxRateConcurrency, c.config.BatchRetryAttempts, c.logger)
}

func (c *CompositionRoot) CreateAssignShelfCommandHandler() (commands.AssignShelfCommandHandler, error) {
	return commands.NewAssignShelfCommandHandler(
		postgres.NewShelfUoWFactory(c.gormDB), c.publisher, c.logger)
}

func (c *CompositionRoot) CreateConfirmPickupCommandHandler() (commands.ConfirmPickupCommandHandler, error) {
	return commands.NewConfirmPickupCommandHandler(postgres.NewShelfUoWFactory(c.gormDB))
}

func (c *CompositionRoot) CreateProcessTrackingEventCommandHandler() (commands.ProcessTrackingEventCommandHandler, error) {
	return commands.NewProcessTrackingEventCommandHandler(
		postgres.NewShipmentUoWFactory(c.gormDB), c.publisher, c.logger)
}

func (c *CompositionRoot) CreateSweepStalePickupsCommandHandler() (commands.SweepStalePickupsCommandHandler, error) {
	creator, err := c.CreateCreateShipmentCommandHandler()
	if err != nil {
		return commands.SweepStalePickupsCommandHandler{}, err
	}

	return commands.NewSweepStalePickupsCommandHandler(
		postgres.NewFulfillmentUoWFactory(c.gormDB), &creator, c.publisher,
		c.staleAge(), c.forcedShipAge(),
		c.config.DefaultCarrier, c.config.DefaultService, c.logger)
}

func (c *CompositionRoot) CreateGetShelfUtilizationQueryHandler() queries.GetShelfUtilizationQueryHandler {
	return queries.NewGetShelfUtilizationQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetStalePickupsQueryHandler() queries.GetStalePickupsQueryHandler {
	return queries.NewGetStalePickupsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetRoutingRecommendationQueryHandler() (queries.GetRoutingRecommendationQueryHandler, error) {
	shopper, err := services.NewRateShopper(
		c.gateway, c.config.MaxRateConcurrency,
		time.Duration(c.config.PerCarrierTimeoutMs)*time.Millisecond, c.logger)
	if err != nil {
		return queries.GetRoutingRecommendationQueryHandler{}, err
	}

	advisor, err := services.NewRoutingAdvisor(
		c.config.ServiceRadiusKm, c.config.PickupSavingsThresholdCents)
	if err != nil {
		return queries.GetRoutingRecommendationQueryHandler{}, err
	}

	// Advisory reads need no transaction; the unit of work doubles as a
	// repository source in auto-commit mode.
	uow := postgres.NewGormUnitOfWorkFactory(c.gormDB).Create()

	return queries.NewGetRoutingRecommendationQueryHandler(
		uow.OrderRepository(), uow.ShelfRepository(), shopper, advisor,
		c.origin, c.candidateServices())
}

// CreateHTTPServer assembles the REST server with every handler it serves.
func (c *CompositionRoot) CreateHTTPServer() (*httpin.Server, error) {
	createShipment, err := c.CreateCreateShipmentCommandHandler()
	if err != nil {
		return nil, err
	}
	createBatch, err := c.CreateCreateBatchShipmentCommandHandler()
	if err != nil {
		return nil, err
	}
	assignShelf, err := c.CreateAssignShelfCommandHandler()
	if err != nil {
		return nil, err
	}
	confirmPickup, err := c.CreateConfirmPickupCommandHandler()
	if err != nil {
		return nil, err
	}
	processTracking, err := c.CreateProcessTrackingEventCommandHandler()
	if err != nil {
		return nil, err
	}
	recommendation, err := c.CreateGetRoutingRecommendationQueryHandler()
	if err != nil {
		return nil, err
	}

	return httpin.NewServer(
		createShipment,
		createBatch,
		assignShelf,
		confirmPickup,
		processTracking,
		recommendation,
		c.CreateGetShelfUtilizationQueryHandler(),
		c.CreateGetStalePickupsQueryHandler(),
		c.verifier,
		c.staleAge(),
	), nil
}

// CreateTrackingConsumer assembles the Kafka tracking event consumer.
func (c *CompositionRoot) CreateTrackingConsumer() (*kafkain.TrackingConsumer, error) {
	handler, err := c.CreateProcessTrackingEventCommandHandler()
	if err != nil {
		return nil, err
	}

	return kafkain.NewTrackingConsumer(
		[]string{c.config.KafkaHost},
		c.config.KafkaTrackingTopic, c.config.KafkaConsumerGroup,
		&handler, c.config.ConsumerWorkers, c.logger)
}

// CreateJobManager assembles the scheduled jobs.
func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	sweep, err := c.CreateSweepStalePickupsCommandHandler()
	if err != nil {
		return nil, err
	}

	return jobs.NewJobManager(&sweep, c.config.SweepSchedule, c.logger), nil
}
