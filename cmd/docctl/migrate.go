package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Documentos-api/internal/infrastructure/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down]",
	Short: "Aplica o revierte las migraciones de PostgreSQL",
	Example: `  docctl migrate up
  DATABASE_URL=postgres://... docctl migrate down --path ./migrations`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(postgres.Up), string(postgres.Down)},
	RunE:      runMigrate,
}

func init() {
	migrateCmd.Flags().String("path", "", "carpeta de migraciones (por defecto MIGRATIONS_PATH)")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	dir := postgres.Direction(args[0])
	if dir != postgres.Up && dir != postgres.Down {
		return fmt.Errorf("dirección inválida %q (up|down)", args[0])
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("path")
	if path == "" {
		path = cfg.DB.MigrationsPath
	}

	log.Info().Str("direction", string(dir)).Str("path", path).Msg("aplicando migraciones")
	version, err := postgres.Migrate(cfg.DB.ConnectionString(), path, dir)
	if err != nil {
		return err
	}
	log.Info().Uint("version", version).Msg("migraciones completadas")
	fmt.Fprintf(cmd.OutOrStdout(), "versión: %d\n", version)
	return nil
}
