package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"

	"recall-server/internal/config"
	"recall-server/pkg/db"
)

func main() {
	cfg := config.Instance()
	if cfg.PGDSN == "" {
		logrus.Fatal("RECALL_PG_DSN is required")
	}

	dbh := waitForDB(cfg.PGDSN)
	defer dbh.Close()

	if err := db.Migrate(logrus.StandardLogger(), dbh, cfg.MigrationsPath); err != nil {
		logrus.WithError(err).Fatal("could not run migrations")
	}
}

func waitForDB(dsn string) *sql.DB {
	timeout := time.NewTimer(time.Second * 10)
	for {
		select {
		case <-timeout.C:
			logrus.Fatal("could not connect to database")
		default:
			dbh, err := db.Open(context.Background(), dsn)
			if err == nil {
				return dbh
			}

			logrus.WithError(err).Debug("database is not ready")
			time.Sleep(time.Millisecond * 500)
		}
	}
}
