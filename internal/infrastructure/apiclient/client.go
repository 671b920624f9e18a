// Package apiclient cliente HTTP de la API de documentos. Implementa form.Gateway
// para que el controlador del formulario persista contra un servidor remoto.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/Documentos-api/internal/application/dto"
	"github.com/jhoicas/Documentos-api/internal/application/form"
	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/lifecycle"
	"github.com/jhoicas/Documentos-api/internal/domain/pricing"
	"github.com/jhoicas/Documentos-api/pkg/logger"
)

var _ form.Gateway = (*Client)(nil)

const maxBody = 4 << 20

// Client habla con /api usando el token Bearer de la sesión.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

// New construye el cliente. baseURL sin la barra final, ej: http://localhost:8080.
func New(baseURL, token string, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 25 * time.Second,
		},
		log: log.Component("apiclient"),
	}
}

// Create da de alta el documento con la acción indicada (save, draft o validate).
func (c *Client) Create(ctx context.Context, kind entity.DocumentKind, doc *entity.Document, action lifecycle.Action) (*entity.Document, error) {
	path := documentsPath(kind) + "?action=" + url.QueryEscape(action.String())
	var out dto.DocumentResponse
	if err := c.do(ctx, http.MethodPost, path, dto.ToDocumentRequest(doc), &out); err != nil {
		return nil, err
	}
	return dto.ToDocumentEntity(out), nil
}

// Update envía el borrador completo; la versión viaja en el cuerpo.
func (c *Client) Update(ctx context.Context, kind entity.DocumentKind, doc *entity.Document) (*entity.Document, error) {
	var out dto.DocumentResponse
	if err := c.do(ctx, http.MethodPut, documentPath(kind, doc.ID), dto.ToDocumentRequest(doc), &out); err != nil {
		return nil, err
	}
	return dto.ToDocumentEntity(out), nil
}

func (c *Client) Transition(ctx context.Context, kind entity.DocumentKind, id string, action lifecycle.Action) (*form.TransitionResult, error) {
	var out dto.TransitionResponse
	path := documentPath(kind, id) + "/actions/" + url.PathEscape(action.String())
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	res := &form.TransitionResult{Document: dto.ToDocumentEntity(out.Document)}
	if out.Created != nil {
		res.Created = dto.ToDocumentEntity(*out.Created)
	}
	return res, nil
}

func (c *Client) Duplicate(ctx context.Context, kind entity.DocumentKind, id string, includeItems bool) (*entity.Document, error) {
	var out dto.DocumentResponse
	path := documentPath(kind, id) + "/duplicate?includeItems=" + strconv.FormatBool(includeItems)
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return dto.ToDocumentEntity(out), nil
}

func (c *Client) Delete(ctx context.Context, kind entity.DocumentKind, id string) error {
	return c.do(ctx, http.MethodDelete, documentPath(kind, id), nil, nil)
}

// Get descarga el documento con sus líneas.
func (c *Client) Get(ctx context.Context, kind entity.DocumentKind, id string) (*entity.Document, error) {
	var out dto.DocumentResponse
	if err := c.do(ctx, http.MethodGet, documentPath(kind, id), nil, &out); err != nil {
		return nil, err
	}
	return dto.ToDocumentEntity(out), nil
}

// References monedas e impuestos de la sesión para construir el formulario.
func (c *Client) References(ctx context.Context) (form.References, error) {
	var currencies []dto.CurrencyResponse
	if err := c.do(ctx, http.MethodGet, "/api/currencies", nil, &currencies); err != nil {
		return form.References{}, err
	}
	var taxes []dto.TaxResponse
	if err := c.do(ctx, http.MethodGet, "/api/taxes", nil, &taxes); err != nil {
		return form.References{}, err
	}
	refs := form.References{DefaultPrecision: pricing.DefaultPrecision}
	for _, cur := range currencies {
		refs.Currencies = append(refs.Currencies, entity.Currency{ID: cur.ID, Code: cur.Code, Symbol: cur.Symbol, Digits: cur.Digits})
	}
	for _, t := range taxes {
		refs.Taxes = append(refs.Taxes, entity.Tax{ID: t.ID, Label: t.Label, IsRate: t.IsRate, Value: t.Value})
	}
	return refs, nil
}

// Sequence estado de la numeración del tipo.
func (c *Client) Sequence(ctx context.Context, kind entity.DocumentKind) (*dto.SequenceResponse, error) {
	var out dto.SequenceResponse
	if err := c.do(ctx, http.MethodGet, "/api/sequences/"+kind.Path(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func documentsPath(kind entity.DocumentKind) string {
	return "/api/" + kind.Path()
}

func documentPath(kind entity.DocumentKind, id string) string {
	return documentsPath(kind) + "/" + url.PathEscape(id)
}

func (c *Client) newRequest(ctx context.Context, method, path string, in any) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("apiclient: serializar request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: crear HTTP request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	req, err := c.newRequest(ctx, method, path, in)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("apiclient: timeout o cancelación: %w", ctx.Err())
		}
		return fmt.Errorf("apiclient: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("apiclient: leer respuesta: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		err := statusError(resp.StatusCode, raw)
		c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Err(err).Msg("respuesta de error")
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("apiclient: deserializar respuesta: %w", err)
	}
	return nil
}

// statusError reconstruye el error de dominio a partir del status y del cuerpo dto.ErrorResponse.
func statusError(status int, raw []byte) error {
	var base error
	switch status {
	case http.StatusNotFound:
		base = domain.ErrNotFound
	case http.StatusBadRequest:
		base = domain.ErrInvalidInput
	case http.StatusConflict:
		base = domain.ErrConflict
	case http.StatusUnprocessableEntity:
		base = domain.ErrActionNotAllowed
	case http.StatusUnauthorized:
		base = domain.ErrUnauthorized
	case http.StatusForbidden:
		base = domain.ErrForbidden
	default:
		base = errors.New("error del servidor")
	}
	var body dto.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return fmt.Errorf("%w: %s (HTTP %d)", base, body.Message, status)
	}
	return fmt.Errorf("%w (HTTP %d)", base, status)
}
