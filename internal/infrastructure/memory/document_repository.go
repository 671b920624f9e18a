package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
	"github.com/jhoicas/Documentos-api/pkg/query"
)

var _ repository.DocumentRepository = (*DocumentRepository)(nil)

// DocumentRepository implementación en memoria de repository.DocumentRepository.
type DocumentRepository struct {
	store *Store
}

// NewDocumentRepository construye el repositorio sobre el almacén.
func NewDocumentRepository(store *Store) *DocumentRepository {
	return &DocumentRepository{store: store}
}

func (r *DocumentRepository) Create(_ context.Context, doc *entity.Document) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if _, exists := r.store.documents[doc.ID]; exists {
		return domain.ErrConflict
	}
	for _, d := range r.store.documents {
		if d.CompanyID == doc.CompanyID && d.Kind == doc.Kind && d.SequentialNumber == doc.SequentialNumber {
			return domain.ErrConflict
		}
	}
	now := time.Now()
	doc.Version = 1
	doc.CreatedAt, doc.UpdatedAt = now, now
	assignItemIDs(doc)
	r.store.documents[doc.ID] = cloneDocument(doc)
	return nil
}

func (r *DocumentRepository) GetByID(_ context.Context, companyID, id string) (*entity.Document, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	d, ok := r.store.documents[id]
	if !ok || d.CompanyID != companyID {
		return nil, nil
	}
	out := cloneDocument(d)
	out.Currency = r.store.currencies[d.CurrencyID]
	return out, nil
}

func (r *DocumentRepository) List(_ context.Context, companyID string, kind entity.DocumentKind, q query.Query) ([]*entity.Document, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matched := make([]*entity.Document, 0)
	for _, d := range r.store.documents {
		if d.CompanyID != companyID || d.Kind != kind {
			continue
		}
		if matchesAll(d, q.Filters) {
			matched = append(matched, d)
		}
	}
	sortDocuments(matched, q.Sort)

	total := len(matched)
	start := min(q.Offset(), total)
	end := min(start+q.Limit, total)

	page := make([]*entity.Document, 0, end-start)
	for _, d := range matched[start:end] {
		out := cloneDocument(d)
		if !q.HasJoin("items") {
			out.Items = nil
		}
		if q.HasJoin("currency") {
			out.Currency = r.store.currencies[d.CurrencyID]
		}
		page = append(page, out)
	}
	return page, total, nil
}

func (r *DocumentRepository) Update(_ context.Context, doc *entity.Document, expectedVersion int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, err := r.checkVersion(doc, expectedVersion)
	if err != nil {
		return err
	}
	doc.SequentialNumber = stored.SequentialNumber
	doc.CreatedAt = stored.CreatedAt
	doc.Version = expectedVersion + 1
	doc.UpdatedAt = time.Now()
	assignItemIDs(doc)
	r.store.documents[doc.ID] = cloneDocument(doc)
	return nil
}

func (r *DocumentRepository) UpdateStatus(_ context.Context, doc *entity.Document, expectedVersion int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, err := r.checkVersion(doc, expectedVersion)
	if err != nil {
		return err
	}
	stored.Status = doc.Status
	stored.Version = expectedVersion + 1
	stored.UpdatedAt = time.Now()
	doc.Version, doc.UpdatedAt = stored.Version, stored.UpdatedAt
	return nil
}

func (r *DocumentRepository) Delete(_ context.Context, companyID, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	d, ok := r.store.documents[id]
	if !ok || d.CompanyID != companyID {
		return domain.ErrNotFound
	}
	delete(r.store.documents, id)
	return nil
}

func (r *DocumentRepository) checkVersion(doc *entity.Document, expectedVersion int) (*entity.Document, error) {
	stored, ok := r.store.documents[doc.ID]
	if !ok || stored.CompanyID != doc.CompanyID {
		return nil, domain.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return nil, domain.ErrConflict
	}
	return stored, nil
}

func assignItemIDs(doc *entity.Document) {
	for i := range doc.Items {
		it := &doc.Items[i]
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.DocumentID = doc.ID
		it.Position = i
		for j := range it.Taxes {
			if it.Taxes[j].ID == "" {
				it.Taxes[j].ID = uuid.NewString()
			}
			it.Taxes[j].LineItemID = it.ID
		}
	}
}

func matchesAll(d *entity.Document, filters []query.Filter) bool {
	for _, f := range filters {
		if !matches(d, f) {
			return false
		}
	}
	return true
}

func matches(d *entity.Document, f query.Filter) bool {
	switch f.Operator {
	case query.OpContains:
		return strings.Contains(strings.ToLower(stringField(d, f.Field)), strings.ToLower(f.Value))
	case query.OpIn:
		for _, v := range f.Values {
			if c, ok := compareField(d, f.Field, v); ok && c == 0 {
				return true
			}
		}
		return false
	}
	c, ok := compareField(d, f.Field, f.Value)
	if !ok {
		return false
	}
	switch f.Operator {
	case query.OpEq:
		return c == 0
	case query.OpNe:
		return c != 0
	case query.OpGt:
		return c > 0
	case query.OpLt:
		return c < 0
	case query.OpGte:
		return c >= 0
	case query.OpLte:
		return c <= 0
	}
	return false
}

// compareField compara el campo del documento con value. ok=false si value no es del tipo del campo.
func compareField(d *entity.Document, field, value string) (int, bool) {
	switch field {
	case "total":
		v, err := decimal.NewFromString(value)
		if err != nil {
			return 0, false
		}
		return d.Total.Cmp(v), true
	case "date", "due_date", "created_at":
		v, err := parseTime(value)
		if err != nil {
			return 0, false
		}
		t, ok := timeField(d, field)
		if !ok {
			return 0, false
		}
		return t.Compare(v), true
	}
	return strings.Compare(stringField(d, field), value), true
}

func compareDocs(a, b *entity.Document, field string) int {
	switch field {
	case "total":
		return a.Total.Cmp(b.Total)
	case "date", "due_date", "created_at":
		ta, okA := timeField(a, field)
		tb, okB := timeField(b, field)
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return -1
		case !okB:
			return 1
		}
		return ta.Compare(tb)
	}
	return strings.Compare(stringField(a, field), stringField(b, field))
}

func sortDocuments(docs []*entity.Document, sorts []query.Sort) {
	if len(sorts) == 0 {
		sorts = []query.Sort{{Field: "created_at", Desc: true}}
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, s := range sorts {
			c := compareDocs(docs[i], docs[j], s.Field)
			if c == 0 {
				continue
			}
			if s.Desc {
				return c > 0
			}
			return c < 0
		}
		return docs[i].SequentialNumber < docs[j].SequentialNumber
	})
}

func stringField(d *entity.Document, field string) string {
	switch field {
	case "status":
		return d.Status
	case "sequential_number":
		return d.SequentialNumber
	case "firm_id":
		return d.FirmID
	case "currency_id":
		return d.CurrencyID
	case "object":
		return d.Object
	case "total":
		return d.Total.String()
	case "date":
		return d.Date.Format(time.DateOnly)
	case "due_date":
		if d.DueDate != nil {
			return d.DueDate.Format(time.DateOnly)
		}
	case "created_at":
		return d.CreatedAt.Format(time.RFC3339)
	}
	return ""
}

func timeField(d *entity.Document, field string) (time.Time, bool) {
	switch field {
	case "date":
		return d.Date, true
	case "created_at":
		return d.CreatedAt, true
	case "due_date":
		if d.DueDate != nil {
			return *d.DueDate, true
		}
	}
	return time.Time{}, false
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}
