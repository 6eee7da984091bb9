package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/napryag/laundry_pickup/pkg/utils/errs"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

// Direction selects which way Migrate moves the schema.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Migrate applies the embedded migrations to the database at dsn. Down
// reverts a single step.
func Migrate(ctx context.Context, dsn string, dir Direction) error {
	if dir != Up && dir != Down {
		return errs.Invalid("unknown migration direction").Arg("direction", string(dir))
	}

	srcDriver, err := iofs.New(migrationsFS, "sql")
	if err != nil {
		return errs.New("failed to init iofs").Wrap(err)
	}

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return errs.New("failed to open sql db").Wrap(err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		return errs.New("failed to ping sql db").Wrap(err)
	}

	dbDriver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return errs.New("failed to init db driver").Wrap(err)
	}

	m, err := migrate.NewWithInstance("iofs", srcDriver, "pgx", dbDriver)
	if err != nil {
		return errs.New("failed to init migrate").Wrap(err)
	}
	defer m.Close()

	if dir == Up {
		err = m.Up()
	} else {
		err = m.Steps(-1)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		if errors.Is(err, fs.ErrNotExist) {
			return errs.New("migration file missing").Arg("direction", string(dir)).Wrap(err)
		}
		return errs.New("failed to migrate").Arg("direction", string(dir)).Wrap(err)
	}
	return nil
}
