package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrUnauthorized     = errors.New("no autorizado")
	ErrForbidden        = errors.New("acceso denegado")
	ErrConflict         = errors.New("conflicto con el estado actual")
	ErrActionNotAllowed = errors.New("acción no permitida en el estado actual del documento")

	// Reglas de negocio sobre las líneas: se reportan como advertencia y no se aplican.
	ErrLastLineItem      = errors.New("el documento debe conservar al menos una línea")
	ErrDuplicateTax      = errors.New("el impuesto ya está aplicado a la línea")
	ErrTaxSlotsExhausted = errors.New("no quedan impuestos disponibles para la línea")

	ErrSequenceRewind = errors.New("el contador de la secuencia no puede retroceder")
)
