package form

import (
	"context"
	"fmt"

	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/lifecycle"
)

// Save crea el documento si aún no existe o guarda la edición. Ante un fallo remoto
// se notifica el error y el borrador queda intacto para reintentar.
func (c *Controller) Save(ctx context.Context) error {
	if err := c.gate(lifecycle.ActionSave); err != nil {
		return err
	}
	var doc *entity.Document
	var err error
	if c.draft.ID == "" {
		doc, err = c.gateway.Create(ctx, c.kind, c.payload(), lifecycle.ActionSave)
	} else {
		doc, err = c.gateway.Update(ctx, c.kind, c.payload())
	}
	if err != nil {
		return c.fail(lifecycle.ActionSave, err)
	}
	c.Load(doc)
	return nil
}

// SaveDraft crea el documento en estado borrador (solo antes de crearlo).
func (c *Controller) SaveDraft(ctx context.Context) error {
	if err := c.gate(lifecycle.ActionDraft); err != nil {
		return err
	}
	doc, err := c.gateway.Create(ctx, c.kind, c.payload(), lifecycle.ActionDraft)
	if err != nil {
		return c.fail(lifecycle.ActionDraft, err)
	}
	c.Load(doc)
	return nil
}

// Validate crea el documento ya validado o, si existe, guarda los cambios pendientes
// y lo valida.
func (c *Controller) Validate(ctx context.Context) error {
	if err := c.gate(lifecycle.ActionValidate); err != nil {
		return err
	}
	if c.draft.ID == "" {
		doc, err := c.gateway.Create(ctx, c.kind, c.payload(), lifecycle.ActionValidate)
		if err != nil {
			return c.fail(lifecycle.ActionValidate, err)
		}
		c.Load(doc)
		return nil
	}
	if c.changed {
		doc, err := c.gateway.Update(ctx, c.kind, c.payload())
		if err != nil {
			return c.fail(lifecycle.ActionValidate, err)
		}
		c.Load(doc)
	}
	_, err := c.Transition(ctx, lifecycle.ActionValidate)
	return err
}

// Transition aplica una acción de cambio de estado sobre el documento ya creado
// (send, accept, reject, invoice, pay, validate). Devuelve el documento generado por
// invoice, si lo hay.
func (c *Controller) Transition(ctx context.Context, a lifecycle.Action) (*entity.Document, error) {
	if err := c.gate(a); err != nil {
		return nil, err
	}
	if _, ok := c.policy.Target(a); !ok || c.draft.ID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrActionNotAllowed, a)
	}
	res, err := c.gateway.Transition(ctx, c.kind, c.draft.ID, a)
	if err != nil {
		return nil, c.fail(a, err)
	}
	c.Load(res.Document)
	return res.Created, nil
}

// Duplicate crea una copia con número nuevo y la carga en el formulario.
func (c *Controller) Duplicate(ctx context.Context, includeItems bool) error {
	if err := c.gate(lifecycle.ActionDuplicate); err != nil {
		return err
	}
	doc, err := c.gateway.Duplicate(ctx, c.kind, c.draft.ID, includeItems)
	if err != nil {
		return c.fail(lifecycle.ActionDuplicate, err)
	}
	c.Load(doc)
	return nil
}

// DeleteDocument borra el documento remoto y deja el formulario en blanco.
func (c *Controller) DeleteDocument(ctx context.Context) error {
	if err := c.gate(lifecycle.ActionDelete); err != nil {
		return err
	}
	if err := c.gateway.Delete(ctx, c.kind, c.draft.ID); err != nil {
		return c.fail(lifecycle.ActionDelete, err)
	}
	c.clear()
	return nil
}

func (c *Controller) gate(a lifecycle.Action) error {
	if !c.policy.Visible(a, c.draft.Status) {
		return fmt.Errorf("%w: %s en estado %q", domain.ErrActionNotAllowed, a, c.draft.Status)
	}
	if c.gateway == nil {
		return fmt.Errorf("%w: sin conexión con la API", domain.ErrInvalidInput)
	}
	return nil
}

// payload copia del borrador que viaja al gateway; Version va tal cual se leyó.
func (c *Controller) payload() *entity.Document {
	doc := cloneDocument(&c.draft)
	return &doc
}

func (c *Controller) fail(a lifecycle.Action, err error) error {
	c.notifier.Notify(Notice{
		Severity: SeverityError,
		Action:   a.String(),
		Message:  fmt.Sprintf("no se pudo completar %q", a.String()),
		Err:      err,
	})
	return err
}
