// Package sequence codifica y decodifica el número secuencial de los documentos
// con la forma prefijo-fecha-contador (ej: "COT-2026-0042").
package sequence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateFormat token de fecha intercalado entre prefijo y contador.
type DateFormat string

const (
	DateNone      DateFormat = ""
	DateYY        DateFormat = "yy"
	DateYYYY      DateFormat = "yyyy"
	DateYYMM      DateFormat = "yy-MM"
	DateYYYYMM    DateFormat = "yyyy-MM"
	counterDigits            = 4
)

var layouts = map[DateFormat]string{
	DateYY:     "06",
	DateYYYY:   "2006",
	DateYYMM:   "06-01",
	DateYYYYMM: "2006-01",
}

// ErrMalformed número secuencial con forma inválida.
var ErrMalformed = errors.New("número secuencial mal formado")

// Sequential estado de una secuencia: el próximo número a asignar.
type Sequential struct {
	Prefix     string
	DateFormat DateFormat
	Next       int64
}

// Valid indica si el formato de fecha es uno de los soportados.
func (f DateFormat) Valid() bool {
	if f == DateNone {
		return true
	}
	_, ok := layouts[f]
	return ok
}

// Validate comprueba que la secuencia se pueda formatear y volver a leer.
func (s Sequential) Validate() error {
	if s.Prefix == "" || strings.Contains(s.Prefix, "-") {
		return fmt.Errorf("%w: prefijo %q", ErrMalformed, s.Prefix)
	}
	if !s.DateFormat.Valid() {
		return fmt.Errorf("%w: formato de fecha %q", ErrMalformed, s.DateFormat)
	}
	if s.Next < 0 {
		return fmt.Errorf("%w: contador negativo", ErrMalformed)
	}
	return nil
}

// Format convierte la secuencia en su representación textual para la fecha at.
func Format(s Sequential, at time.Time) string {
	counter := fmt.Sprintf("%0*d", counterDigits, s.Next)
	layout, ok := layouts[s.DateFormat]
	if !ok {
		return s.Prefix + "-" + counter
	}
	return s.Prefix + "-" + at.Format(layout) + "-" + counter
}

// Parse reconstruye prefijo, formato de fecha y contador desde la representación textual.
func Parse(str string) (Sequential, error) {
	parts := strings.Split(strings.TrimSpace(str), "-")
	if len(parts) < 2 || parts[0] == "" {
		return Sequential{}, fmt.Errorf("%w: %q", ErrMalformed, str)
	}
	next, err := parseDigits(parts[len(parts)-1])
	if err != nil {
		return Sequential{}, fmt.Errorf("%w: contador de %q", ErrMalformed, str)
	}
	format, err := dateFormatOf(parts[1 : len(parts)-1])
	if err != nil {
		return Sequential{}, fmt.Errorf("%w: fecha de %q", ErrMalformed, str)
	}
	return Sequential{Prefix: parts[0], DateFormat: format, Next: next}, nil
}

func dateFormatOf(segments []string) (DateFormat, error) {
	for _, seg := range segments {
		if _, err := parseDigits(seg); err != nil {
			return DateNone, err
		}
	}
	widths := make([]int, len(segments))
	for i, seg := range segments {
		widths[i] = len(seg)
	}
	switch {
	case len(widths) == 0:
		return DateNone, nil
	case len(widths) == 1 && widths[0] == 2:
		return DateYY, nil
	case len(widths) == 1 && widths[0] == 4:
		return DateYYYY, nil
	case len(widths) == 2 && widths[1] == 2 && validMonth(segments[1]):
		if widths[0] == 2 {
			return DateYYMM, nil
		}
		if widths[0] == 4 {
			return DateYYYYMM, nil
		}
	}
	return DateNone, ErrMalformed
}

func parseDigits(s string) (int64, error) {
	if s == "" {
		return 0, ErrMalformed
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrMalformed
		}
	}
	return strconv.ParseInt(s, 10, 64)
}

func validMonth(s string) bool {
	m, err := strconv.Atoi(s)
	return err == nil && m >= 1 && m <= 12
}
