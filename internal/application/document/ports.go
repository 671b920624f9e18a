package document

import (
	"context"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/pricing"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repos de documentos y numeración.
type TxRunner interface {
	RunDocuments(ctx context.Context, fn func(
		docs repository.DocumentRepository,
		seqs repository.SequenceRepository,
	) error) error
}

// Publisher difunde un mensaje a los suscriptores de una sala.
type Publisher interface {
	Publish(room string, payload []byte) int
}

// PDFGenerator genera la representación PDF de un documento.
type PDFGenerator interface {
	GenerateDocumentPDF(ctx context.Context, in PDFInput) ([]byte, error)
}

// PDFInput datos que necesita el generador: documento con líneas, contraparte
// (puede ser nil) y totales ya calculados.
type PDFInput struct {
	Document *entity.Document
	Firm     *entity.Firm
	Totals   pricing.Totals
	Issuer   string
}

// SequenceRoom sala de difusión del próximo número de un tipo dentro de la empresa.
func SequenceRoom(companyID string, kind entity.DocumentKind) string {
	return "sequence:" + companyID + ":" + string(kind)
}
