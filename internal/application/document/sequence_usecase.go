package document

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/Documentos-api/internal/application/dto"
	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
	"github.com/jhoicas/Documentos-api/pkg/sequence"
)

var defaultPrefixes = map[entity.DocumentKind]string{
	entity.KindQuotation:        "COT",
	entity.KindExpenseQuotation: "CGA",
	entity.KindInvoice:          "FAC",
	entity.KindExpenseInvoice:   "FGA",
}

// DefaultSequence numeración con la que arranca un tipo que la empresa no configuró.
func DefaultSequence(companyID string, kind entity.DocumentKind) *entity.Sequence {
	return &entity.Sequence{
		CompanyID:  companyID,
		Kind:       kind,
		Sequential: sequence.Sequential{Prefix: defaultPrefixes[kind], DateFormat: sequence.DateYYYY, Next: 1},
	}
}

// SequenceUseCase consulta y configura la numeración de cada tipo de documento.
type SequenceUseCase struct {
	txRunner  TxRunner
	repo      repository.SequenceRepository
	publisher Publisher
	now       func() time.Time
}

// NewSequenceUseCase construye el caso de uso. publisher puede ser nil.
func NewSequenceUseCase(txRunner TxRunner, repo repository.SequenceRepository, publisher Publisher) *SequenceUseCase {
	return &SequenceUseCase{txRunner: txRunner, repo: repo, publisher: publisher, now: time.Now}
}

// Get devuelve la numeración vigente del tipo (o la inicial si no existe).
func (uc *SequenceUseCase) Get(ctx context.Context, companyID string, kind entity.DocumentKind) (*dto.SequenceResponse, error) {
	if !kind.Valid() {
		return nil, domain.ErrNotFound
	}
	seq, err := uc.repo.Get(ctx, companyID, kind)
	if err != nil {
		return nil, fmt.Errorf("obtener secuencia: %w", err)
	}
	if seq == nil {
		seq = DefaultSequence(companyID, kind)
	}
	resp := toSequenceResponse(seq, uc.now())
	return &resp, nil
}

// Update cambia prefijo, formato de fecha y contador. El contador nunca retrocede:
// los números ya emitidos no se pueden reasignar.
func (uc *SequenceUseCase) Update(ctx context.Context, companyID string, kind entity.DocumentKind, in dto.SequenceRequest) (*dto.SequenceResponse, error) {
	if !kind.Valid() {
		return nil, domain.ErrNotFound
	}
	next := sequence.Sequential{Prefix: in.Prefix, DateFormat: sequence.DateFormat(in.DateFormat), Next: in.Next}
	if err := next.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	seq := &entity.Sequence{CompanyID: companyID, Kind: kind, Sequential: next}
	// Misma fila bloqueada que usa la asignación de números: un alta concurrente
	// espera a que termine el cambio o lo ve ya aplicado.
	err := uc.txRunner.RunDocuments(ctx, func(_ repository.DocumentRepository, seqs repository.SequenceRepository) error {
		current, err := seqs.GetForUpdate(ctx, companyID, kind)
		if err != nil {
			return fmt.Errorf("obtener secuencia: %w", err)
		}
		if current == nil {
			current = DefaultSequence(companyID, kind)
		}
		if next.Next < current.Next {
			return domain.ErrSequenceRewind
		}
		if err := seqs.Save(ctx, seq); err != nil {
			return fmt.Errorf("guardar secuencia: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishSequence(uc.publisher, seq, uc.now())
	resp := toSequenceResponse(seq, uc.now())
	return &resp, nil
}

func toSequenceResponse(seq *entity.Sequence, at time.Time) dto.SequenceResponse {
	return dto.SequenceResponse{
		Kind:       string(seq.Kind),
		Prefix:     seq.Prefix,
		DateFormat: string(seq.DateFormat),
		Next:       seq.Next,
		Preview:    sequence.Format(seq.Sequential, at),
	}
}

func publishSequence(p Publisher, seq *entity.Sequence, at time.Time) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(dto.SequenceEvent{
		Kind:    string(seq.Kind),
		Next:    seq.Next,
		Preview: sequence.Format(seq.Sequential, at),
	})
	if err != nil {
		return
	}
	p.Publish(SequenceRoom(seq.CompanyID, seq.Kind), payload)
}
