// Command docctl utilidades de operación: migraciones, numeración y cálculo de totales.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Documentos-api/pkg/config"
	"github.com/jhoicas/Documentos-api/pkg/logger"
)

var (
	version = "1.0.0"
	log     = logger.Nop()
)

var rootCmd = &cobra.Command{
	Use:     "docctl",
	Short:   "Herramientas de línea de comandos de Documentos API",
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		log = logger.New(logger.Config{Env: "development", Level: level, Output: os.Stderr}).Component("docctl")
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "nivel de log (debug, info, warn, error)")
	rootCmd.AddCommand(migrateCmd, sequenceCmd, totalsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}
	return cfg, nil
}
