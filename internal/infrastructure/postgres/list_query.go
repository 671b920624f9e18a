package postgres

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/pkg/query"
)

type columnType int

const (
	colText columnType = iota
	colNumeric
	colDate
	colTimestamp
)

type column struct {
	expr string
	typ  columnType
}

// documentColumns columnas filtrables y ordenables del listado (ver repository.DocumentFilterFields).
var documentColumns = map[string]column{
	"status":            {"d.status", colText},
	"sequential_number": {"d.sequential_number", colText},
	"firm_id":           {"d.firm_id", colText},
	"currency_id":       {"d.currency_id", colText},
	"object":            {"d.object", colText},
	"date":              {"d.date", colDate},
	"due_date":          {"d.due_date", colDate},
	"total":             {"d.total", colNumeric},
	"created_at":        {"d.created_at", colTimestamp},
}

var comparators = map[query.Operator]string{
	query.OpEq: "=", query.OpNe: "<>", query.OpGt: ">", query.OpLt: "<", query.OpGte: ">=", query.OpLte: "<=",
}

// listSQL fragmentos de la consulta de listado. Los args ya incluyen empresa y tipo como $1 y $2.
type listSQL struct {
	where string
	order string
	args  []any
}

// buildDocumentList traduce la consulta validada a SQL parametrizado. Un valor que
// no corresponde al tipo de la columna no coincide con ninguna fila.
func buildDocumentList(companyID string, kind entity.DocumentKind, q query.Query) listSQL {
	b := listSQL{args: []any{companyID, string(kind)}}
	conds := []string{"d.company_id = $1", "d.kind = $2"}

	for _, f := range q.Filters {
		col, ok := documentColumns[f.Field]
		if !ok {
			conds = append(conds, "FALSE")
			continue
		}
		conds = append(conds, b.condition(col, f))
	}
	b.where = strings.Join(conds, " AND ")

	order := make([]string, 0, len(q.Sort)+1)
	sorts := q.Sort
	if len(sorts) == 0 {
		sorts = []query.Sort{{Field: "created_at", Desc: true}}
	}
	for _, s := range sorts {
		col, ok := documentColumns[s.Field]
		if !ok {
			continue
		}
		if s.Desc {
			order = append(order, col.expr+" DESC NULLS LAST")
		} else {
			order = append(order, col.expr+" ASC NULLS FIRST")
		}
	}
	order = append(order, "d.sequential_number ASC")
	b.order = strings.Join(order, ", ")
	return b
}

func (b *listSQL) condition(col column, f query.Filter) string {
	switch f.Operator {
	case query.OpContains:
		return col.expr + "::text ILIKE " + b.arg("%"+escapeLike(f.Value)+"%")
	case query.OpIn:
		placeholders := make([]string, 0, len(f.Values))
		for _, v := range f.Values {
			if arg, ok := convertValue(col.typ, v); ok {
				placeholders = append(placeholders, b.arg(arg))
			}
		}
		if len(placeholders) == 0 {
			return "FALSE"
		}
		return col.expr + " IN (" + strings.Join(placeholders, ", ") + ")"
	}
	cmp, ok := comparators[f.Operator]
	if !ok {
		return "FALSE"
	}
	arg, ok := convertValue(col.typ, f.Value)
	if !ok {
		return "FALSE"
	}
	return col.expr + " " + cmp + " " + b.arg(arg)
}

func (b *listSQL) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func convertValue(typ columnType, value string) (any, bool) {
	switch typ {
	case colNumeric:
		d, err := decimal.NewFromString(value)
		return d, err == nil
	case colDate, colTimestamp:
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return t, true
		}
		t, err := time.Parse(time.DateOnly, value)
		return t, err == nil
	}
	return value, true
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
