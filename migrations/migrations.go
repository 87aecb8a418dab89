package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/httpfs"
	"github.com/sirupsen/logrus"
)

//go:embed sqlite3/*.sql postgres/*.sql
var migrations embed.FS

// embedFSDriver serves the migrations of one SQL dialect. The dialect is the
// host part of the source URL, e.g. embed://sqlite3.
type embedFSDriver struct {
	httpfs.PartialDriver
}

func init() {
	source.Register("embed", &embedFSDriver{})
}

func (d *embedFSDriver) Open(rawURL string) (source.Driver, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse source URL: %w", err)
	}

	nd := &embedFSDriver{}

	err = nd.PartialDriver.Init(http.FS(migrations), u.Host)
	if err != nil {
		return nil, err
	}

	return nd, nil
}

// Migrate applies every pending up migration for the given database/sql
// driver name ("sqlite3" or "postgres"). Tables are only ever created, so
// running it against an up to date store is a no-op.
func Migrate(driverName, dsn string) error {
	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("open DB: %w", err)
	}

	var d database.Driver

	switch driverName {
	case "sqlite3":
		d, err = sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	case "postgres":
		d, err = postgres.WithInstance(sqlDB, &postgres.Config{})
	default:
		err = fmt.Errorf("unsupported driver %q", driverName)
	}
	if err != nil {
		sqlDB.Close()
		return fmt.Errorf("create driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("embed://"+driverName, driverName, d)
	if err != nil {
		d.Close()
		return fmt.Errorf("create migrator: %w", err)
	}

	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logrus.WithError(srcErr).Warn("failed to close migration source")
		}
		if dbErr != nil {
			logrus.WithError(dbErr).Warn("failed to close migration database")
		}
	}()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logrus.Debug("schema is up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	version, _, _ := m.Version()
	logrus.WithField("version", version).Info("schema migrated")

	return nil
}
