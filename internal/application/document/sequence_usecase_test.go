package document_test

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Documentos-api/internal/application/document"
	"github.com/jhoicas/Documentos-api/internal/application/dto"
	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/lifecycle"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
	"github.com/jhoicas/Documentos-api/internal/infrastructure/memory"
)

func TestSequenceUseCase(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	store := memory.NewStore()
	uc := document.NewSequenceUseCase(memory.NewTxRunner(store), memory.NewSequenceRepository(store), pub)

	got, err := uc.Get(ctx, company, entity.KindInvoice)
	require.NoError(t, err)
	assert.Equal(t, "FAC", got.Prefix)
	assert.Equal(t, int64(1), got.Next)

	updated, err := uc.Update(ctx, company, entity.KindInvoice, dto.SequenceRequest{Prefix: "FV", DateFormat: "yy-MM", Next: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(10), updated.Next)
	assert.Regexp(t, `^FV-\d{2}-\d{2}-0010$`, updated.Preview)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "sequence:company-1:invoice", pub.events[0].room)

	_, err = uc.Update(ctx, company, entity.KindInvoice, dto.SequenceRequest{Prefix: "FV", Next: 5})
	assert.ErrorIs(t, err, domain.ErrSequenceRewind)

	_, err = uc.Update(ctx, company, entity.KindInvoice, dto.SequenceRequest{Prefix: "F-V", Next: 20})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Get(ctx, company, "memo")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// lockHookTx envuelve el TxRunner en memoria y ejecuta onLock la primera vez que
// la transacción bloquea la fila de numeración.
type lockHookTx struct {
	inner  *memory.TxRunner
	once   sync.Once
	onLock func()
}

func (r *lockHookTx) RunDocuments(ctx context.Context, fn func(repository.DocumentRepository, repository.SequenceRepository) error) error {
	return r.inner.RunDocuments(ctx, func(docs repository.DocumentRepository, seqs repository.SequenceRepository) error {
		return fn(docs, &lockHookSeqs{SequenceRepository: seqs, tx: r})
	})
}

type lockHookSeqs struct {
	repository.SequenceRepository
	tx *lockHookTx
}

func (s *lockHookSeqs) GetForUpdate(ctx context.Context, companyID string, kind entity.DocumentKind) (*entity.Sequence, error) {
	s.tx.once.Do(s.tx.onLock)
	return s.SequenceRepository.GetForUpdate(ctx, companyID, kind)
}

func TestSequenceUseCase_UpdateConAltaConcurrente(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(f.ctx, company, entity.KindQuotation, request(), lifecycle.ActionSave)
	require.NoError(t, err)

	type result struct {
		doc *dto.DocumentResponse
		err error
	}
	created := make(chan result, 1)
	tx := &lockHookTx{inner: memory.NewTxRunner(f.store)}
	tx.onLock = func() {
		// El alta arranca mientras el cambio de numeración tiene la fila tomada.
		go func() {
			doc, err := f.uc.Create(f.ctx, company, entity.KindQuotation, request(), lifecycle.ActionSave)
			created <- result{doc, err}
		}()
	}
	seqUC := document.NewSequenceUseCase(tx, memory.NewSequenceRepository(f.store), nil)

	updated, err := seqUC.Update(f.ctx, company, entity.KindQuotation, dto.SequenceRequest{Prefix: "COT", DateFormat: "yyyy", Next: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated.Next)

	var res result
	select {
	case res = <-created:
	case <-time.After(2 * time.Second):
		t.Fatal("el alta concurrente no terminó")
	}
	require.NoError(t, res.err)
	assert.Regexp(t, regexp.MustCompile(`^COT-\d{4}-0003$`), res.doc.SequentialNumber)

	got, err := seqUC.Get(f.ctx, company, entity.KindQuotation)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Next, "el contador nunca retrocede")

	again, err := f.uc.Create(f.ctx, company, entity.KindQuotation, request(), lifecycle.ActionSave)
	require.NoError(t, err)
	assert.Regexp(t, `-0004$`, again.SequentialNumber)
}

func TestFirmUseCase(t *testing.T) {
	ctx := context.Background()
	uc := document.NewFirmUseCase(memory.NewFirmRepository(memory.NewStore()))

	firm, err := uc.Create(ctx, company, dto.CreateFirmRequest{Name: "ACME", TaxID: "900123"})
	require.NoError(t, err)
	assert.NotEmpty(t, firm.ID)

	_, err = uc.Create(ctx, company, dto.CreateFirmRequest{Name: "ACME 2", TaxID: "900123"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.Create(ctx, company, dto.CreateFirmRequest{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := uc.List(ctx, company, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
