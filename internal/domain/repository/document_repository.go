package repository

import (
	"context"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/pkg/query"
)

// DocumentFilterFields campos aceptados en filter y sort del listado.
var DocumentFilterFields = []string{
	"status", "sequential_number", "firm_id", "currency_id", "object", "date", "due_date", "total", "created_at",
}

// DocumentJoins relaciones que el listado puede cargar.
var DocumentJoins = []string{"items", "currency"}

// DocumentRepository define el puerto de persistencia para documentos, sus líneas e impuestos.
type DocumentRepository interface {
	// Create inserta cabecera, líneas e impuestos de línea. Version arranca en 1.
	Create(ctx context.Context, doc *entity.Document) error
	// GetByID devuelve el documento con sus líneas, o nil si no existe en la empresa.
	GetByID(ctx context.Context, companyID, id string) (*entity.Document, error)
	// List devuelve la página pedida y el total de filas que cumplen los filtros.
	List(ctx context.Context, companyID string, kind entity.DocumentKind, q query.Query) ([]*entity.Document, int, error)

	// Update reemplaza cabecera y líneas si la versión almacenada es expectedVersion;
	// si no, domain.ErrConflict. Incrementa doc.Version.
	Update(ctx context.Context, doc *entity.Document, expectedVersion int) error
	// UpdateStatus cambia solo el estado, con el mismo control de versión.
	UpdateStatus(ctx context.Context, doc *entity.Document, expectedVersion int) error

	Delete(ctx context.Context, companyID, id string) error
}
