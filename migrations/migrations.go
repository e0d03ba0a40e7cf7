package migrations

import (
	"embed"
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var files embed.FS

// Run applies all pending migrations. databaseURL is the usual
// postgres:// connection string; golang-migrate's pgx/v5 driver expects the
// pgx5 scheme, so it is rewritten here.
func Run(databaseURL string) error {
	src, err := iofs.New(files, ".")
	if err != nil {
		return err
	}
	url := databaseURL
	if s, ok := strings.CutPrefix(url, "postgres://"); ok {
		url = "pgx5://" + s
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = m.Close()
	}()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
