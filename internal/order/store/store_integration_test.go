package store

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	ordererrors "github.com/webmart/shopcore/internal/order/errors"
	"github.com/webmart/shopcore/pkg/bootstrap"
)

const skipIntegrationTests = "SHOPCORE_SKIP_INTEGRATION_TESTS"

// OrderStoreSuite is a test suite for the OrderStore implementation.
type OrderStoreSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	store       OrderStore
	logger      *slog.Logger
	ctx         context.Context
}

// SetupSuite initializes the test suite by setting up a PostgreSQL container.
func (s *OrderStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dbName := "shopcore"
	dbUser := "user"
	dbPassword := "password"

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	for i := range 10 {
		s.logger.Info("Connecting to PostgreSQL database", "attempt", i+1)
		s.dbPool, err = bootstrap.NewDbPool(s.ctx, connStr, 10*time.Second)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	wd, _ := os.Getwd()
	migrationsPath := filepath.Join(wd, "..", "..", "..", "migrations")
	sourceURL := "file://" + migrationsPath
	m, err := migrate.New(sourceURL, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}
	s.logger.Info("Migrations applied for integration tests")

	s.store = NewPgStore(s.dbPool)
	s.logger.Info("Initialization complete for OrderStoreSuite")
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *OrderStoreSuite) TearDownSuite() {
	s.logger.Info("Tearing down suite...")
	if s.dbPool != nil {
		s.dbPool.Close()
		s.logger.Info("DB pool closed.")
	}
	if s.pgContainer != nil {
		s.logger.Info("Terminating PostgreSQL container...")
		err := s.pgContainer.Terminate(s.ctx)
		if err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		} else {
			s.logger.Info("PostgreSQL container terminated.")
		}
	}
}

// SetupTest prepares the database for each test by truncating the order tables.
func (s *OrderStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE orders, order_items RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate order tables")
}

// TestOrderStoreIntegration runs the OrderStore integration tests.
func TestOrderStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(OrderStoreSuite))
}

// createTestOrder is a helper function to create an order for testing purposes.
func (s *OrderStoreSuite) createTestOrder(userID uuid.UUID, status string) *Order {
	s.T().Helper()
	created, err := s.store.CreateOrder(s.ctx, &Order{
		UserID:        userID,
		Status:        status,
		TransactionID: "tx-" + uuid.NewString()[:8],
		Amount:        decimal.NewFromInt(35),
		Items: []OrderItem{
			{ProductID: uuid.New(), Name: "Linen Shirt", Description: "Plain", Price: decimal.NewFromInt(15), Quantity: 2},
			{ProductID: uuid.New(), Name: "Ceramic Mug", Price: decimal.NewFromInt(5), Quantity: 1},
		},
	})
	require.NoError(s.T(), err, "createTestOrder helper failed to create order")
	return created
}

func (s *OrderStoreSuite) TestCreateAndFindByID() {
	userID := uuid.New()
	created := s.createTestOrder(userID, "Not processed")

	require.NotEqual(s.T(), uuid.Nil, created.ID, "Created order ID should be set")
	require.NotZero(s.T(), created.CreatedAt, "CreatedAt should be set")
	require.Len(s.T(), created.Items, 2)
	for _, item := range created.Items {
		require.NotEqual(s.T(), uuid.Nil, item.ID, "Item IDs should be set")
	}

	fetched, err := s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), created.ID, fetched.ID)
	require.Equal(s.T(), userID, fetched.UserID)
	require.Equal(s.T(), "Not processed", fetched.Status)
	require.Len(s.T(), fetched.Items, 2)
	require.True(s.T(), created.Amount.Equal(fetched.Amount))
}

func (s *OrderStoreSuite) TestFindByID_NotFound() {
	_, err := s.store.FindByID(s.ctx, uuid.New())
	require.ErrorIs(s.T(), err, ordererrors.ErrOrderNotFound, "Expected ErrOrderNotFound for non-existent order")
}

func (s *OrderStoreSuite) TestFindByUserID() {
	userID := uuid.New()
	first := s.createTestOrder(userID, "Delivered")
	// make the second order strictly newer
	time.Sleep(10 * time.Millisecond)
	second := s.createTestOrder(userID, "Not processed")
	s.createTestOrder(uuid.New(), "Not processed") // another user's order

	orders, err := s.store.FindByUserID(s.ctx, userID, 0, 10)

	require.NoError(s.T(), err)
	require.Len(s.T(), orders, 2, "Only the user's own orders should be returned")
	assert.Equal(s.T(), second.ID, orders[0].ID, "Newest order should come first")
	assert.Equal(s.T(), first.ID, orders[1].ID)
}

func (s *OrderStoreSuite) TestUpdateStatus() {
	created := s.createTestOrder(uuid.New(), "Not processed")

	matched, err := s.store.UpdateStatus(s.ctx, created.ID, "Shipped")
	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(1), matched)

	fetched, err := s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Shipped", fetched.Status)
}

func (s *OrderStoreSuite) TestUpdateStatus_NoMatch() {
	matched, err := s.store.UpdateStatus(s.ctx, uuid.New(), "Shipped")
	require.NoError(s.T(), err, "Zero matched orders is not an error")
	require.Zero(s.T(), matched)
}
