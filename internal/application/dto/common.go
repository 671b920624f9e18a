package dto

import "github.com/jhoicas/Documentos-api/pkg/query"

// ListResponse cuerpo de los listados paginados: {data, meta}.
type ListResponse[T any] struct {
	Data []T        `json:"data"`
	Meta query.Meta `json:"meta"`
}

// PageRequest paginación simple para catálogos (artículos, contrapartes).
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > query.MaxLimit {
		p.Limit = query.MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
