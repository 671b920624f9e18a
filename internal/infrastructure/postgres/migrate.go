package postgres

import (
	"errors"
	"fmt"
	"strings"

	migrate "github.com/golang-migrate/migrate/v4"
	// Driver postgres y fuente file:// para golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Direction sentido de la migración.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Migrate aplica (o revierte) los .sql de path sobre la base dsn.
// Devuelve la versión resultante; sin cambios pendientes no es error.
func Migrate(dsn, path string, dir Direction) (uint, error) {
	if !strings.Contains(path, "://") {
		path = "file://" + path
	}
	m, err := migrate.New(path, dsn)
	if err != nil {
		return 0, fmt.Errorf("abrir migraciones: %w", err)
	}
	defer m.Close()

	switch dir {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return 0, fmt.Errorf("dirección de migración inválida: %q", dir)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrar %s: %w", dir, err)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("versión de migración: %w", err)
	}
	return version, nil
}
