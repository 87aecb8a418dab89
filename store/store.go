package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"mrp/config"
	"mrp/migrations"
)

// Store owns the connection pool of the single relational database backing
// the service. Handlers borrow it through Session or Tx.
type Store struct {
	db  *sqlx.DB
	cfg config.DatabaseConfig
}

// Connect opens the configured database and checks that it is reachable.
// Any failure is wrapped with ErrConnection.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	db, err := sqlx.Open(cfg.Driver, cfg.DataSourceName())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	return &Store{db: db, cfg: cfg}, nil
}

// EnsureSchema creates the tables that are missing. Existing tables are left
// untouched.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return migrations.Migrate(s.cfg.Driver, s.cfg.DataSourceName())
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Session runs fn with a connection dedicated to it. The connection goes
// back to the pool when fn returns or panics.
func (s *Store) Session(ctx context.Context, fn func(*Session) error) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}

	defer conn.Close()

	return fn(&Session{q: conn, echo: s.cfg.Echo})
}

// Tx runs fn inside a transaction, committing when fn returns nil.
func (s *Store) Tx(ctx context.Context, fn func(*Session) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	err = fn(&Session{q: tx, echo: s.cfg.Echo})
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

type querier interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
	Rebind(query string) string
}

// Session is a request scoped handle to the store. Queries are written with
// ? placeholders and rebound for the driver.
type Session struct {
	q    querier
	echo bool
}

func (s *Session) log(query string, args []interface{}) {
	if s.echo {
		logrus.WithFields(logrus.Fields{
			"query": query,
			"args":  args,
		}).Debug("sql")
	}
}

func (s *Session) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	query = s.q.Rebind(query)
	s.log(query, args)
	return sqlx.GetContext(ctx, s.q, dest, query, args...)
}

func (s *Session) selectAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	query = s.q.Rebind(query)
	s.log(query, args)
	return sqlx.SelectContext(ctx, s.q, dest, query, args...)
}

func (s *Session) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	query = s.q.Rebind(query)
	s.log(query, args)
	return s.q.ExecContext(ctx, query, args...)
}

// execOne runs a statement that must touch exactly one row.
func (s *Session) execOne(ctx context.Context, query string, args ...interface{}) error {
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}
