// Package memory implementa los repositorios en memoria. Se usa con APP_STORAGE=memory
// y como doble de prueba de los casos de uso.
package memory

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
)

type seqKey struct {
	companyID string
	kind      entity.DocumentKind
}

// Store datos compartidos por todos los repositorios en memoria.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	documents  map[string]*entity.Document
	sequences  map[seqKey]*entity.Sequence
	currencies map[string]*entity.Currency
	taxes      map[string]*entity.Tax
	articles   map[string]*entity.Article
	firms      map[string]*entity.Firm
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		documents:  make(map[string]*entity.Document),
		sequences:  make(map[seqKey]*entity.Sequence),
		currencies: make(map[string]*entity.Currency),
		taxes:      make(map[string]*entity.Tax),
		articles:   make(map[string]*entity.Article),
		firms:      make(map[string]*entity.Firm),
	}
}

// SeedCurrency registra una moneda de referencia.
func (s *Store) SeedCurrency(c entity.Currency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currencies[c.ID] = &c
}

// SeedTax registra un impuesto de referencia.
func (s *Store) SeedTax(t entity.Tax) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taxes[t.ID] = &t
}

// SeedArticle registra un artículo del catálogo.
func (s *Store) SeedArticle(a entity.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[a.ID] = &a
}

// SeedSequence registra la numeración de un tipo.
func (s *Store) SeedSequence(seq entity.Sequence) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequences[seqKey{seq.CompanyID, seq.Kind}] = &seq
}

// SeedDefaults carga monedas e impuestos de uso habitual para el modo en memoria.
func (s *Store) SeedDefaults() {
	two, three := 2, 3
	s.SeedCurrency(entity.Currency{ID: "EUR", Code: "EUR", Symbol: "€", Digits: &two})
	s.SeedCurrency(entity.Currency{ID: "USD", Code: "USD", Symbol: "$", Digits: &two})
	s.SeedCurrency(entity.Currency{ID: "COP", Code: "COP", Symbol: "$"})
	s.SeedCurrency(entity.Currency{ID: "TND", Code: "TND", Symbol: "DT", Digits: &three})

	s.SeedTax(entity.Tax{ID: "iva19", Label: "IVA 19%", IsRate: true, Value: decimal.NewFromInt(19)})
	s.SeedTax(entity.Tax{ID: "iva5", Label: "IVA 5%", IsRate: true, Value: decimal.NewFromInt(5)})
	s.SeedTax(entity.Tax{ID: "timbre", Label: "Timbre fiscal", IsRate: false, Value: decimal.RequireFromString("1.000")})
}

func cloneDocument(d *entity.Document) *entity.Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Currency = nil
	if d.DueDate != nil {
		due := *d.DueDate
		out.DueDate = &due
	}
	out.Items = make([]entity.LineItem, len(d.Items))
	for i, it := range d.Items {
		out.Items[i] = it
		out.Items[i].Taxes = append([]entity.TaxEntry(nil), it.Taxes...)
	}
	return &out
}
