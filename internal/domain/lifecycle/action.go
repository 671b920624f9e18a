// Package lifecycle decide qué acciones se ofrecen sobre un documento según su estado.
//
// Cada tipo de documento tiene su propio enum de estados y su propia tabla, pero todas
// se evalúan con la misma fórmula:
//
//	visible = (estado ∈ Statuses) == (Membership == In)
//
// Membership In convierte Statuses en lista de permitidos; Out en lista de bloqueados.
// Un conjunto vacío deja la acción oculta de forma permanente (así se deshabilita
// "archive"). Una tabla es un arreglo de tamaño ActionCount indexado por Action, así que cada
// acción tiene siempre una entrada (el valor cero tiene conjunto vacío: oculta).
package lifecycle

import "strings"

// Action transición que el usuario puede disparar sobre un documento.
type Action int

const (
	ActionSave Action = iota
	ActionDraft
	ActionValidate
	ActionSend
	ActionAccept
	ActionReject
	ActionInvoice
	ActionPay
	ActionDuplicate
	ActionDelete
	ActionArchive
	ActionReset
	ActionDownload

	ActionCount
)

var actionNames = [ActionCount]string{
	ActionSave:      "save",
	ActionDraft:     "draft",
	ActionValidate:  "validate",
	ActionSend:      "send",
	ActionAccept:    "accept",
	ActionReject:    "reject",
	ActionInvoice:   "invoice",
	ActionPay:       "pay",
	ActionDuplicate: "duplicate",
	ActionDelete:    "delete",
	ActionArchive:   "archive",
	ActionReset:     "reset",
	ActionDownload:  "download",
}

func (a Action) String() string {
	if a < 0 || a >= ActionCount {
		return "unknown"
	}
	return actionNames[a]
}

// ParseAction convierte la clave textual en Action. ok=false si la clave no existe;
// el llamador debe tratarlo como acción no visible.
func ParseAction(s string) (Action, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range actionNames {
		if name == s {
			return Action(i), true
		}
	}
	return 0, false
}

// Actions todas las acciones en orden de presentación.
func Actions() []Action {
	out := make([]Action, ActionCount)
	for i := range out {
		out[i] = Action(i)
	}
	return out
}
