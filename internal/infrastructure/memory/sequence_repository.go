package memory

import (
	"context"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepository)(nil)

// SequenceRepository numeración en memoria. GetForUpdate no bloquea filas: la
// exclusión la da el TxRunner, que serializa las transacciones.
type SequenceRepository struct {
	store *Store
}

func NewSequenceRepository(store *Store) *SequenceRepository {
	return &SequenceRepository{store: store}
}

func (r *SequenceRepository) Get(_ context.Context, companyID string, kind entity.DocumentKind) (*entity.Sequence, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	seq, ok := r.store.sequences[seqKey{companyID, kind}]
	if !ok {
		return nil, nil
	}
	out := *seq
	return &out, nil
}

func (r *SequenceRepository) GetForUpdate(ctx context.Context, companyID string, kind entity.DocumentKind) (*entity.Sequence, error) {
	return r.Get(ctx, companyID, kind)
}

func (r *SequenceRepository) Save(_ context.Context, seq *entity.Sequence) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := *seq
	r.store.sequences[seqKey{seq.CompanyID, seq.Kind}] = &out
	return nil
}
