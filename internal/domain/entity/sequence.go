package entity

import "github.com/jhoicas/Documentos-api/pkg/sequence"

// Sequence numeración secuencial de un tipo de documento dentro de una empresa.
type Sequence struct {
	CompanyID string
	Kind      DocumentKind
	sequence.Sequential
}
