//go:build integration

package testutil

import (
	"context"
	"testing"
	"time"

	database "github.com/bhuvi12a/expense-tracker/db"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// NewPostgres starts a disposable PostgreSQL container with the schema
// migrated and returns a connected DBService. The container is removed when
// the test ends.
func NewPostgres(t *testing.T) *database.DBService {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("expenses"),
		postgres.WithUsername("expenses"),
		postgres.WithPassword("expenses"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	db, err := database.NewDBService(ctx, connStr, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.RunMigrations())
	return db
}

// InsertUser creates a bare user row and returns its id.
func InsertUser(t *testing.T, db *database.DBService, username, email string) string {
	t.Helper()
	var id string
	err := db.DB.QueryRowContext(context.Background(),
		`INSERT INTO users (email, username, password_hash, hash_token) VALUES ($1, $2, 'x', 'x') RETURNING id`,
		email, username).Scan(&id)
	require.NoError(t, err)
	return id
}
