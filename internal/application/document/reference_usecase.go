package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Documentos-api/internal/application/dto"
	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
)

// ReferenceUseCase datos de referencia de solo lectura: monedas, impuestos y artículos.
type ReferenceUseCase struct {
	currencies repository.CurrencyRepository
	taxes      repository.TaxRepository
	articles   repository.ArticleRepository
}

// NewReferenceUseCase construye el caso de uso.
func NewReferenceUseCase(currencies repository.CurrencyRepository, taxes repository.TaxRepository, articles repository.ArticleRepository) *ReferenceUseCase {
	return &ReferenceUseCase{currencies: currencies, taxes: taxes, articles: articles}
}

func (uc *ReferenceUseCase) Currencies(ctx context.Context) ([]dto.CurrencyResponse, error) {
	list, err := uc.currencies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar monedas: %w", err)
	}
	out := make([]dto.CurrencyResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.ToCurrencyResponse(c))
	}
	return out, nil
}

func (uc *ReferenceUseCase) Taxes(ctx context.Context) ([]dto.TaxResponse, error) {
	list, err := uc.taxes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar impuestos: %w", err)
	}
	out := make([]dto.TaxResponse, 0, len(list))
	for _, t := range list {
		out = append(out, dto.TaxResponse{ID: t.ID, Label: t.Label, IsRate: t.IsRate, Value: t.Value})
	}
	return out, nil
}

func (uc *ReferenceUseCase) Articles(ctx context.Context, companyID string, page dto.PageRequest) ([]dto.ArticleResponse, error) {
	page.DefaultPage()
	list, err := uc.articles.ListByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("listar artículos: %w", err)
	}
	out := make([]dto.ArticleResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.ArticleResponse{ID: a.ID, Title: a.Title, Description: a.Description, UnitPrice: a.UnitPrice})
	}
	return out, nil
}

// FirmUseCase casos de uso para contrapartes (clientes y proveedores).
type FirmUseCase struct {
	repo repository.FirmRepository
}

// NewFirmUseCase construye el caso de uso.
func NewFirmUseCase(repo repository.FirmRepository) *FirmUseCase {
	return &FirmUseCase{repo: repo}
}

// Create crea una contraparte. El NIT/identificación es único por empresa.
func (uc *FirmUseCase) Create(ctx context.Context, companyID string, in dto.CreateFirmRequest) (*dto.FirmResponse, error) {
	in.Name, in.TaxID = strings.TrimSpace(in.Name), strings.TrimSpace(in.TaxID)
	if in.Name == "" || in.TaxID == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetByTaxID(ctx, companyID, in.TaxID)
	if err != nil {
		return nil, fmt.Errorf("buscar contraparte: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict
	}
	firm := &entity.Firm{
		CompanyID: companyID,
		Name:      in.Name,
		TaxID:     in.TaxID,
		Email:     in.Email,
		Phone:     in.Phone,
	}
	if err := uc.repo.Create(ctx, firm); err != nil {
		return nil, err
	}
	resp := toFirmResponse(firm)
	return &resp, nil
}

// List lista contrapartes de la empresa.
func (uc *FirmUseCase) List(ctx context.Context, companyID string, page dto.PageRequest) ([]dto.FirmResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.ListByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("listar contrapartes: %w", err)
	}
	out := make([]dto.FirmResponse, 0, len(list))
	for _, f := range list {
		out = append(out, toFirmResponse(f))
	}
	return out, nil
}

func toFirmResponse(f *entity.Firm) dto.FirmResponse {
	return dto.FirmResponse{ID: f.ID, CompanyID: f.CompanyID, Name: f.Name, TaxID: f.TaxID, Email: f.Email, Phone: f.Phone}
}
