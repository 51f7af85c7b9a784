package queries_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres/shelfrepo"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ShelfUtilizationQueryIntegrationTestSuite tests the utilization read model
// against a real PostgreSQL database.
type ShelfUtilizationQueryIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	handler   queries.GetShelfUtilizationQueryHandler
}

func (suite *ShelfUtilizationQueryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&shelfrepo.ShelfDTO{}))

	suite.handler = queries.NewGetShelfUtilizationQueryHandler(db)
}

func (suite *ShelfUtilizationQueryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE shelves").Error)
}

func (suite *ShelfUtilizationQueryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *ShelfUtilizationQueryIntegrationTestSuite) TestHandle_ReportsPerShelfAndFleetTotals() {
	ctx := context.Background()

	suite.seedShelf("B-02", "Back wall", 10, 10)
	suite.seedShelf("A-01", "Front desk", 10, 2)
	suite.seedShelf("C-03", "Cold room", 20, 8)

	response, err := suite.handler.Handle(ctx, queries.NewGetShelfUtilizationQuery())
	suite.Require().NoError(err)

	suite.Require().Len(response.Shelves, 3)
	suite.Equal("A-01", response.Shelves[0].Code)
	suite.Equal("B-02", response.Shelves[1].Code)
	suite.Equal("C-03", response.Shelves[2].Code)

	suite.Equal(8, response.Shelves[0].FreeSlots)
	suite.Equal(0, response.Shelves[1].FreeSlots)
	suite.Equal(12, response.Shelves[2].FreeSlots)

	suite.Equal(20, response.TotalOccupied)
	suite.Equal(20, response.TotalAvailable)
	suite.InDelta(50.0, response.UtilizationPercent, 0.001)
}

func (suite *ShelfUtilizationQueryIntegrationTestSuite) TestHandle_NoShelves_ReturnsEmptyReport() {
	ctx := context.Background()

	response, err := suite.handler.Handle(ctx, queries.NewGetShelfUtilizationQuery())
	suite.Require().NoError(err)

	suite.Empty(response.Shelves)
	suite.Zero(response.TotalOccupied)
	suite.Zero(response.TotalAvailable)
	suite.Zero(response.UtilizationPercent)
}

func (suite *ShelfUtilizationQueryIntegrationTestSuite) TestHandle_UnconstructedQuery_Fails() {
	ctx := context.Background()

	_, err := suite.handler.Handle(ctx, queries.GetShelfUtilizationQuery{})
	suite.Require().ErrorIs(err, queries.ErrGetShelfUtilizationQueryIsNotConstructed)
}

// seedShelf inserts a shelf row directly through the repository DTO.
func (suite *ShelfUtilizationQueryIntegrationTestSuite) seedShelf(code, name string, capacity, occupied int) {
	dto := shelfrepo.ShelfDTO{
		ID:       kernel.NewUUID().Bytes(),
		Code:     code,
		Name:     name,
		Capacity: capacity,
		Occupied: occupied,
	}
	suite.Require().NoError(suite.db.Create(&dto).Error)
}

func TestShelfUtilizationQueryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ShelfUtilizationQueryIntegrationTestSuite))
}
