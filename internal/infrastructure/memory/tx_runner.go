package memory

import (
	"context"
	"maps"

	"github.com/jhoicas/Documentos-api/internal/application/document"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
)

var _ document.TxRunner = (*TxRunner)(nil)

// TxRunner serializa las "transacciones" en memoria y restaura documentos y
// secuencias si el callback falla.
type TxRunner struct {
	store *Store
}

func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

func (r *TxRunner) RunDocuments(ctx context.Context, fn func(
	docs repository.DocumentRepository,
	seqs repository.SequenceRepository,
) error) error {
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()

	docs, seqs := r.snapshot()
	if err := fn(NewDocumentRepository(r.store), NewSequenceRepository(r.store)); err != nil {
		r.restore(docs, seqs)
		return err
	}
	return nil
}

func (r *TxRunner) snapshot() (map[string]*entity.Document, map[seqKey]*entity.Sequence) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	docs := make(map[string]*entity.Document, len(r.store.documents))
	for id, d := range r.store.documents {
		docs[id] = cloneDocument(d)
	}
	seqs := make(map[seqKey]*entity.Sequence, len(r.store.sequences))
	for k, s := range r.store.sequences {
		cp := *s
		seqs[k] = &cp
	}
	return docs, seqs
}

func (r *TxRunner) restore(docs map[string]*entity.Document, seqs map[seqKey]*entity.Sequence) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.documents = maps.Clone(docs)
	r.store.sequences = maps.Clone(seqs)
}
