package test

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/pkg/errors"

	_ "github.com/jackc/pgx/v4/stdlib"
)

const (
	postgresImage   = "postgres"
	postgresVersion = "14-alpine"

	postgresUser     = "postgres"
	postgresPassword = "localtest"
	postgresDatabase = "testdb"

	// Containers are force-removed after an hour in case a test run never
	// cleans up.
	containerTTLSeconds = 3600

	connectionAttempts = 30
	connectionBackoff  = time.Second
)

// StartPostgresDB starts a disposable postgres container and returns its
// connection URL.
func StartPostgresDB(pool *dockertest.Pool) (string, error) {
	resource, err := pool.Run(postgresImage, postgresVersion, []string{
		"POSTGRES_USER=" + postgresUser,
		"POSTGRES_PASSWORD=" + postgresPassword,
		"POSTGRES_DB=" + postgresDatabase,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to start postgres container")
	}

	_ = resource.Expire(containerTTLSeconds)

	databaseUrl := fmt.Sprintf(
		"postgres://%s:%s@localhost:%s/%s?sslmode=disable",
		postgresUser,
		postgresPassword,
		resource.GetPort("5432/tcp"),
		postgresDatabase,
	)
	return databaseUrl, nil
}

// WaitForConnection polls the database until it accepts connections and
// returns an open handle along with its close function.
func WaitForConnection(databaseUrl string, ping bool) (*sql.DB, func(), error) {
	var db *sql.DB
	var err error

	for i := 0; i < connectionAttempts; i++ {
		db, err = sql.Open("pgx", databaseUrl)
		if err == nil && ping {
			if pingErr := db.Ping(); pingErr != nil {
				_ = db.Close()
				err = pingErr
			}
		}
		if err == nil {
			return db, func() { _ = db.Close() }, nil
		}

		time.Sleep(connectionBackoff)
	}

	return nil, nil, errors.Wrap(err, "database never became reachable")
}
