package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
)

var (
	_ repository.CurrencyRepository = (*CurrencyRepository)(nil)
	_ repository.TaxRepository      = (*TaxRepository)(nil)
	_ repository.ArticleRepository  = (*ArticleRepository)(nil)
	_ repository.FirmRepository     = (*FirmRepository)(nil)
)

type CurrencyRepository struct{ store *Store }

func NewCurrencyRepository(store *Store) *CurrencyRepository { return &CurrencyRepository{store: store} }

func (r *CurrencyRepository) List(_ context.Context) ([]*entity.Currency, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*entity.Currency, 0, len(r.store.currencies))
	for _, c := range r.store.currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *CurrencyRepository) GetByID(_ context.Context, id string) (*entity.Currency, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.currencies[id], nil
}

type TaxRepository struct{ store *Store }

func NewTaxRepository(store *Store) *TaxRepository { return &TaxRepository{store: store} }

func (r *TaxRepository) List(_ context.Context) ([]*entity.Tax, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*entity.Tax, 0, len(r.store.taxes))
	for _, t := range r.store.taxes {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (r *TaxRepository) GetByID(_ context.Context, id string) (*entity.Tax, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.taxes[id], nil
}

type ArticleRepository struct{ store *Store }

func NewArticleRepository(store *Store) *ArticleRepository { return &ArticleRepository{store: store} }

func (r *ArticleRepository) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Article, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	all := make([]*entity.Article, 0)
	for _, a := range r.store.articles {
		if a.CompanyID == companyID {
			all = append(all, a)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })
	return paginate(all, limit, offset), nil
}

func (r *ArticleRepository) GetByID(_ context.Context, companyID, id string) (*entity.Article, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	a, ok := r.store.articles[id]
	if !ok || a.CompanyID != companyID {
		return nil, nil
	}
	return a, nil
}

type FirmRepository struct{ store *Store }

func NewFirmRepository(store *Store) *FirmRepository { return &FirmRepository{store: store} }

func (r *FirmRepository) Create(_ context.Context, firm *entity.Firm) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if firm.ID == "" {
		firm.ID = uuid.NewString()
	}
	if _, exists := r.store.firms[firm.ID]; exists {
		return domain.ErrConflict
	}
	now := time.Now()
	firm.CreatedAt, firm.UpdatedAt = now, now
	out := *firm
	r.store.firms[firm.ID] = &out
	return nil
}

func (r *FirmRepository) GetByID(_ context.Context, companyID, id string) (*entity.Firm, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	f, ok := r.store.firms[id]
	if !ok || f.CompanyID != companyID {
		return nil, nil
	}
	out := *f
	return &out, nil
}

func (r *FirmRepository) GetByTaxID(_ context.Context, companyID, taxID string) (*entity.Firm, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, f := range r.store.firms {
		if f.CompanyID == companyID && f.TaxID == taxID {
			out := *f
			return &out, nil
		}
	}
	return nil, nil
}

func (r *FirmRepository) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Firm, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	all := make([]*entity.Firm, 0)
	for _, f := range r.store.firms {
		if f.CompanyID == companyID {
			all = append(all, f)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, limit, offset), nil
}

func paginate[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}
