// internal/testutil/postgres.go
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/bangazon/bangazon-backend/internal/database"
)

// NewPostgres starts a throwaway PostgreSQL container, migrates it and returns a
// connected handle. The test is skipped under -short or when Docker is missing.
func NewPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("bangazon_test"),
		postgres.WithUsername("bangazon"),
		postgres.WithPassword("bangazon"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable", "TimeZone=UTC")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := database.Open(dsn, "silent")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return db
}

// Reset empties every table so each test starts from a clean store.
func Reset(t *testing.T, db *gorm.DB) {
	t.Helper()

	err := db.Exec("TRUNCATE audit_logs, order_products, orders, products, payment_types, product_types, users CASCADE").Error
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}
