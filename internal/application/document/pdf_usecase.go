package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/lifecycle"
	"github.com/jhoicas/Documentos-api/internal/domain/pricing"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
)

// PDFUseCase genera el PDF de un documento cuando la acción download está disponible.
type PDFUseCase struct {
	docs      repository.DocumentRepository
	firms     repository.FirmRepository
	generator PDFGenerator
	issuer    string
	precision int32
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	docs repository.DocumentRepository,
	firms repository.FirmRepository,
	generator PDFGenerator,
	issuer string,
	precision int32,
) *PDFUseCase {
	return &PDFUseCase{docs: docs, firms: firms, generator: generator, issuer: issuer, precision: precision}
}

// Download recupera el documento, verifica la política y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)    si todo sale bien.
//   - domain.ErrNotFound           si el documento no existe en la empresa.
//   - domain.ErrActionNotAllowed   si el documento aún no fue creado (download oculto).
func (uc *PDFUseCase) Download(ctx context.Context, companyID string, kind entity.DocumentKind, id string) (pdfBytes []byte, filename string, err error) {
	policy, err := policyFor(kind)
	if err != nil {
		return nil, "", err
	}
	doc, err := uc.docs.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener documento: %w", err)
	}
	if doc == nil || doc.Kind != kind {
		return nil, "", domain.ErrNotFound
	}
	if !policy.Visible(lifecycle.ActionDownload, doc.Status) {
		return nil, "", domain.ErrActionNotAllowed
	}

	var firm *entity.Firm
	if doc.FirmID != "" && uc.firms != nil {
		if firm, err = uc.firms.GetByID(ctx, companyID, doc.FirmID); err != nil {
			return nil, "", fmt.Errorf("pdf: obtener contraparte: %w", err)
		}
	}

	totals := pricing.ComputeAt(doc.Items, pricing.PrecisionOr(doc.Currency, uc.precision))
	pdfBytes, err = uc.generator.GenerateDocumentPDF(ctx, PDFInput{
		Document: doc,
		Firm:     firm,
		Totals:   totals,
		Issuer:   uc.issuer,
	})
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}

	filename = fmt.Sprintf("%s_%s.pdf", strings.ReplaceAll(string(kind), "_", "-"), doc.SequentialNumber)
	return pdfBytes, filename, nil
}
