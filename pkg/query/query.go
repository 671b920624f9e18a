// Package query interpreta los parámetros de listado de la API:
// page, limit, sort=campo,ASC|DESC, filter=campo||operador||valor y join=relación.
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Operator operador de filtro.
type Operator string

const (
	OpEq       Operator = "$eq"
	OpNe       Operator = "$ne"
	OpGt       Operator = "$gt"
	OpLt       Operator = "$lt"
	OpGte      Operator = "$gte"
	OpLte      Operator = "$lte"
	OpContains Operator = "$cont"
	OpIn       Operator = "$in"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
	separator    = "||"
)

var operators = map[Operator]bool{
	OpEq: true, OpNe: true, OpGt: true, OpLt: true, OpGte: true, OpLte: true, OpContains: true, OpIn: true,
}

// ErrInvalid parámetro de listado inválido.
var ErrInvalid = errors.New("parámetro de consulta inválido")

// Filter condición campo-operador-valor. Para $in, Values tiene la lista.
type Filter struct {
	Field    string
	Operator Operator
	Value    string
	Values   []string
}

// Sort orden por un campo.
type Sort struct {
	Field string
	Desc  bool
}

// Query consulta de listado ya validada.
type Query struct {
	Page    int
	Limit   int
	Sort    []Sort
	Filters []Filter
	Joins   []string
}

// Offset fila inicial de la página.
func (q Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

// HasJoin indica si se pidió cargar la relación.
func (q Query) HasJoin(name string) bool {
	for _, j := range q.Joins {
		if j == name {
			return true
		}
	}
	return false
}

// Params entrada cruda tal como llega en el query string.
type Params struct {
	Page    int
	Limit   int
	Sort    string
	Filters []string
	Join    string
}

// Parse valida los parámetros. allowed lista los campos filtrables/ordenables y joins
// los nombres de relación aceptados.
func Parse(p Params, allowed, joins []string) (Query, error) {
	q := Query{Page: p.Page, Limit: p.Limit}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}

	if s := strings.TrimSpace(p.Sort); s != "" {
		for _, part := range strings.Split(s, ";") {
			sort, err := parseSort(part, allowed)
			if err != nil {
				return Query{}, err
			}
			q.Sort = append(q.Sort, sort)
		}
	}
	for _, raw := range p.Filters {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		f, err := ParseFilter(raw)
		if err != nil {
			return Query{}, err
		}
		if !contains(allowed, f.Field) {
			return Query{}, fmt.Errorf("%w: campo %q no filtrable", ErrInvalid, f.Field)
		}
		q.Filters = append(q.Filters, f)
	}
	if j := strings.TrimSpace(p.Join); j != "" {
		for _, name := range strings.Split(j, ",") {
			name = strings.TrimSpace(name)
			if !contains(joins, name) {
				return Query{}, fmt.Errorf("%w: join %q", ErrInvalid, name)
			}
			q.Joins = append(q.Joins, name)
		}
	}
	return q, nil
}

// ParseFilter interpreta "campo||operador||valor".
func ParseFilter(raw string) (Filter, error) {
	parts := strings.SplitN(raw, separator, 3)
	if len(parts) != 3 || parts[0] == "" {
		return Filter{}, fmt.Errorf("%w: filtro %q", ErrInvalid, raw)
	}
	f := Filter{Field: parts[0], Operator: Operator(parts[1]), Value: parts[2]}
	if !operators[f.Operator] {
		return Filter{}, fmt.Errorf("%w: operador %q", ErrInvalid, parts[1])
	}
	if f.Operator == OpIn {
		for _, v := range strings.Split(f.Value, ",") {
			f.Values = append(f.Values, strings.TrimSpace(v))
		}
	}
	return f, nil
}

func parseSort(raw string, allowed []string) (Sort, error) {
	field, dir, _ := strings.Cut(strings.TrimSpace(raw), ",")
	if !contains(allowed, field) {
		return Sort{}, fmt.Errorf("%w: orden por %q", ErrInvalid, field)
	}
	switch strings.ToUpper(strings.TrimSpace(dir)) {
	case "", "ASC":
		return Sort{Field: field}, nil
	case "DESC":
		return Sort{Field: field, Desc: true}, nil
	}
	return Sort{}, fmt.Errorf("%w: dirección %q", ErrInvalid, dir)
}

// Meta metadatos de página en la respuesta {data, meta}.
type Meta struct {
	Page            int  `json:"page"`
	Take            int  `json:"take"`
	ItemCount       int  `json:"itemCount"`
	PageCount       int  `json:"pageCount"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}

// NewMeta calcula la paginación para total elementos.
func NewMeta(q Query, total int) Meta {
	pages := 0
	if q.Limit > 0 {
		pages = (total + q.Limit - 1) / q.Limit
	}
	return Meta{
		Page:            q.Page,
		Take:            q.Limit,
		ItemCount:       total,
		PageCount:       pages,
		HasPreviousPage: q.Page > 1,
		HasNextPage:     q.Page < pages,
	}
}

// Atoi convierte sin error: vacío o inválido = 0.
func Atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
