package form

import (
	"context"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/lifecycle"
)

// Gateway puerto hacia la API remota que persiste los documentos.
type Gateway interface {
	Create(ctx context.Context, kind entity.DocumentKind, doc *entity.Document, action lifecycle.Action) (*entity.Document, error)
	Update(ctx context.Context, kind entity.DocumentKind, doc *entity.Document) (*entity.Document, error)
	Transition(ctx context.Context, kind entity.DocumentKind, id string, action lifecycle.Action) (*TransitionResult, error)
	Duplicate(ctx context.Context, kind entity.DocumentKind, id string, includeItems bool) (*entity.Document, error)
	Delete(ctx context.Context, kind entity.DocumentKind, id string) error
}

// TransitionResult documento tras la transición y, para invoice, la factura creada.
type TransitionResult struct {
	Document *entity.Document
	Created  *entity.Document
}

// References datos de referencia de la sesión (solo lectura).
type References struct {
	Currencies       []entity.Currency
	Taxes            []entity.Tax
	DefaultPrecision int32
}

func (r References) currency(id string) (*entity.Currency, bool) {
	for i := range r.Currencies {
		if r.Currencies[i].ID == id {
			return &r.Currencies[i], true
		}
	}
	return nil, false
}

func (r References) tax(id string) (entity.Tax, bool) {
	for _, t := range r.Taxes {
		if t.ID == id {
			return t, true
		}
	}
	return entity.Tax{}, false
}
