package integration

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"delicioso/internal/config"
	"delicioso/internal/database"
	"delicioso/internal/events"
	"delicioso/internal/handler"
	"delicioso/internal/repository"
	"delicioso/internal/router"
	"delicioso/internal/service"

	"github.com/go-resty/resty/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// testAdminKey guards the reset endpoint in integration tests.
const testAdminKey = "test-admin-key"

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool with
// the ledger schema applied.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		URL:             connStr,
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPool(ctx, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.EnsureSchema(ctx, pool, logger); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// testLedger is the ledger configuration used by the test server.
func testLedger() config.LedgerConfig {
	return config.LedgerConfig{
		OwedPaymentMethod: "A Pagar",
		ShippingThreshold: decimal.RequireFromString("2.0"),
	}
}

// StartServer wires the full application against testDB and returns a resty
// client pointed at it.
func StartServer(t *testing.T, testDB *TestDB, ledger config.LedgerConfig) *resty.Client {
	t.Helper()

	logger := zerolog.Nop()

	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)
	stockRepo := repository.NewStockRepository(testDB.Pool, logger)
	adminRepo := repository.NewAdminRepository(testDB.Pool, logger)

	stockService := service.NewStockService(stockRepo, ledger.LowStockThreshold, logger)
	orderService := service.NewOrderService(orderRepo, stockService, events.NewNopPublisher(), ledger, logger)
	dashboardService := service.NewDashboardService(orderRepo, ledger, logger)
	adminService := service.NewAdminService(adminRepo, logger)

	mux := router.New(router.Handlers{
		Orders:    handler.NewOrderHandler(orderService, logger),
		Stock:     handler.NewStockHandler(stockService, logger),
		Dashboard: handler.NewDashboardHandler(dashboardService, logger),
		Admin:     handler.NewAdminHandler(adminService, logger),
	}, config.CORSConfig{Origins: []string{"*"}}, testAdminKey, logger)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return resty.New().
		SetBaseURL(server.URL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)
}

// CleanupDB empties every ledger table.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	if _, err := pool.Exec(context.Background(), `TRUNCATE order_line_items, orders, packaging_stock`); err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}
}
