package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Documentos-api/pkg/sequence"
)

var sequenceCmd = &cobra.Command{
	Use:   "sequence",
	Short: "Formatea o interpreta números secuenciales",
}

var sequenceFormatCmd = &cobra.Command{
	Use:     "format PREFIX NEXT",
	Short:   "Muestra el número que recibiría el próximo documento",
	Example: `  docctl sequence format FAC 42 --date-format yyyy-MM`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var next int64
		if _, err := fmt.Sscan(args[1], &next); err != nil {
			return fmt.Errorf("contador inválido %q", args[1])
		}
		format, _ := cmd.Flags().GetString("date-format")
		at, err := dateFlag(cmd)
		if err != nil {
			return err
		}
		seq := sequence.Sequential{Prefix: args[0], DateFormat: sequence.DateFormat(format), Next: next}
		if err := seq.Validate(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), sequence.Format(seq, at))
		return nil
	},
}

var sequenceParseCmd = &cobra.Command{
	Use:     "parse NUMBER",
	Short:   "Descompone un número secuencial en prefijo, formato de fecha y contador",
	Example: `  docctl sequence parse COT-2026-0007`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := sequence.Parse(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "prefijo: %s\n", seq.Prefix)
		fmt.Fprintf(out, "formato: %s\n", seq.DateFormat)
		fmt.Fprintf(out, "contador: %d\n", seq.Next)
		return nil
	},
}

func init() {
	sequenceFormatCmd.Flags().String("date-format", string(sequence.DateYYYY), "formato de fecha (yy, yyyy, yy-MM, yyyy-MM o vacío)")
	sequenceFormatCmd.Flags().String("date", "", "fecha de referencia YYYY-MM-DD (por defecto hoy)")
	sequenceCmd.AddCommand(sequenceFormatCmd, sequenceParseCmd)
}

func dateFlag(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("date")
	if raw == "" {
		return time.Now(), nil
	}
	at, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha inválida %q", raw)
	}
	return at, nil
}
