package lifecycle

import "slices"

// Membership modo del conjunto de estados de un Descriptor.
type Membership int

const (
	Out Membership = iota // visible cuando el estado NO está en el conjunto
	In                    // visible cuando el estado está en el conjunto
)

// Variant estilo visual del botón.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantOutline     Variant = "outline"
	VariantSecondary   Variant = "secondary"
	VariantDestructive Variant = "destructive"
)

// Descriptor metadatos de presentación y predicado de visibilidad de una acción.
// Target es el estado resultante; vacío si la acción no cambia el estado.
type Descriptor[S ~string] struct {
	Label      string
	Variant    Variant
	Icon       string
	Membership Membership
	Statuses   []S
	Target     S
}

// Visible evalúa el predicado para el estado dado. Un conjunto vacío deshabilita
// la acción sin importar Membership.
func (d Descriptor[S]) Visible(status S) bool {
	if len(d.Statuses) == 0 {
		return false
	}
	return slices.Contains(d.Statuses, status) == (d.Membership == In)
}

// To fija el estado resultante de la acción.
func (d Descriptor[S]) To(target S) Descriptor[S] {
	d.Target = target
	return d
}

// Table tabla de acciones de un tipo de documento.
type Table[S ~string] [ActionCount]Descriptor[S]

// Visible indica si la acción se ofrece en el estado dado.
func (t *Table[S]) Visible(a Action, status S) bool {
	if a < 0 || a >= ActionCount {
		return false
	}
	return t[a].Visible(status)
}

// Descriptor devuelve la entrada de la acción.
func (t *Table[S]) Descriptor(a Action) (Descriptor[S], bool) {
	if a < 0 || a >= ActionCount {
		return Descriptor[S]{}, false
	}
	return t[a], true
}

type meta struct {
	label   string
	variant Variant
	icon    string
}

var metas = [ActionCount]meta{
	ActionSave:      {"Guardar", VariantDefault, "save"},
	ActionDraft:     {"Borrador", VariantOutline, "file-pen"},
	ActionValidate:  {"Validar", VariantDefault, "check"},
	ActionSend:      {"Enviar", VariantDefault, "send"},
	ActionAccept:    {"Aceptar", VariantDefault, "thumbs-up"},
	ActionReject:    {"Rechazar", VariantDestructive, "thumbs-down"},
	ActionInvoice:   {"Facturar", VariantDefault, "receipt"},
	ActionPay:       {"Registrar pago", VariantDefault, "banknote"},
	ActionDuplicate: {"Duplicar", VariantSecondary, "copy"},
	ActionDelete:    {"Eliminar", VariantDestructive, "trash"},
	ActionArchive:   {"Archivar", VariantSecondary, "archive"},
	ActionReset:     {"Restablecer", VariantOutline, "rotate-ccw"},
	ActionDownload:  {"Descargar", VariantOutline, "download"},
}

func describe[S ~string](a Action, m Membership, statuses []S) Descriptor[S] {
	md := metas[a]
	return Descriptor[S]{
		Label:      md.label,
		Variant:    md.variant,
		Icon:       md.icon,
		Membership: m,
		Statuses:   statuses,
	}
}

// when: visible solo en los estados indicados.
func when[S ~string](a Action, statuses ...S) Descriptor[S] {
	return describe(a, In, statuses)
}

// unless: visible en todos los estados salvo los indicados.
func unless[S ~string](a Action, statuses ...S) Descriptor[S] {
	return describe(a, Out, statuses)
}

// never: conjunto vacío con Out, la acción queda deshabilitada.
func never[S ~string](a Action) Descriptor[S] {
	return describe[S](a, Out, nil)
}
