package lifecycle

// Estados por tipo de documento. El valor cero ("") es el documento aún no creado.

type QuotationStatus string

const (
	QuotationNone      QuotationStatus = ""
	QuotationDraft     QuotationStatus = "draft"
	QuotationValidated QuotationStatus = "validated"
	QuotationSent      QuotationStatus = "sent"
	QuotationAccepted  QuotationStatus = "accepted"
	QuotationRejected  QuotationStatus = "rejected"
	QuotationInvoiced  QuotationStatus = "invoiced"
	QuotationArchived  QuotationStatus = "archived"
)

var quotationStatuses = []QuotationStatus{
	QuotationNone, QuotationDraft, QuotationValidated, QuotationSent,
	QuotationAccepted, QuotationRejected, QuotationInvoiced, QuotationArchived,
}

type ExpenseQuotationStatus string

const (
	ExpenseQuotationNone      ExpenseQuotationStatus = ""
	ExpenseQuotationDraft     ExpenseQuotationStatus = "draft"
	ExpenseQuotationValidated ExpenseQuotationStatus = "validated"
	ExpenseQuotationInvoiced  ExpenseQuotationStatus = "invoiced"
	ExpenseQuotationArchived  ExpenseQuotationStatus = "archived"
)

var expenseQuotationStatuses = []ExpenseQuotationStatus{
	ExpenseQuotationNone, ExpenseQuotationDraft, ExpenseQuotationValidated,
	ExpenseQuotationInvoiced, ExpenseQuotationArchived,
}

type InvoiceStatus string

const (
	InvoiceNone      InvoiceStatus = ""
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceValidated InvoiceStatus = "validated"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceArchived  InvoiceStatus = "archived"
)

var invoiceStatuses = []InvoiceStatus{
	InvoiceNone, InvoiceDraft, InvoiceValidated, InvoiceSent, InvoicePaid, InvoiceArchived,
}

type ExpenseInvoiceStatus string

const (
	ExpenseInvoiceNone      ExpenseInvoiceStatus = ""
	ExpenseInvoiceDraft     ExpenseInvoiceStatus = "draft"
	ExpenseInvoiceValidated ExpenseInvoiceStatus = "validated"
	ExpenseInvoicePaid      ExpenseInvoiceStatus = "paid"
	ExpenseInvoiceArchived  ExpenseInvoiceStatus = "archived"
)

var expenseInvoiceStatuses = []ExpenseInvoiceStatus{
	ExpenseInvoiceNone, ExpenseInvoiceDraft, ExpenseInvoiceValidated, ExpenseInvoicePaid, ExpenseInvoiceArchived,
}

// QuotationTable acciones de cotizaciones de venta.
var QuotationTable = Table[QuotationStatus]{
	ActionSave:      when(ActionSave, QuotationNone, QuotationDraft),
	ActionDraft:     when(ActionDraft, QuotationNone).To(QuotationDraft),
	ActionValidate:  when(ActionValidate, QuotationNone, QuotationDraft).To(QuotationValidated),
	ActionSend:      when(ActionSend, QuotationValidated).To(QuotationSent),
	ActionAccept:    when(ActionAccept, QuotationSent).To(QuotationAccepted),
	ActionReject:    when(ActionReject, QuotationSent).To(QuotationRejected),
	ActionInvoice:   when(ActionInvoice, QuotationAccepted).To(QuotationInvoiced),
	ActionPay:       never[QuotationStatus](ActionPay),
	ActionDuplicate: unless(ActionDuplicate, QuotationNone),
	ActionDelete:    when(ActionDelete, QuotationDraft, QuotationValidated, QuotationRejected),
	ActionArchive:   never[QuotationStatus](ActionArchive),
	ActionReset:     when(ActionReset, QuotationNone, QuotationDraft),
	ActionDownload:  unless(ActionDownload, QuotationNone),
}

// ExpenseQuotationTable acciones de cotizaciones de proveedor.
var ExpenseQuotationTable = Table[ExpenseQuotationStatus]{
	ActionSave:      when(ActionSave, ExpenseQuotationNone, ExpenseQuotationDraft),
	ActionDraft:     when(ActionDraft, ExpenseQuotationNone).To(ExpenseQuotationDraft),
	ActionValidate:  when(ActionValidate, ExpenseQuotationNone, ExpenseQuotationDraft).To(ExpenseQuotationValidated),
	ActionSend:      never[ExpenseQuotationStatus](ActionSend),
	ActionAccept:    never[ExpenseQuotationStatus](ActionAccept),
	ActionReject:    never[ExpenseQuotationStatus](ActionReject),
	ActionInvoice:   when(ActionInvoice, ExpenseQuotationValidated).To(ExpenseQuotationInvoiced),
	ActionPay:       never[ExpenseQuotationStatus](ActionPay),
	ActionDuplicate: unless(ActionDuplicate, ExpenseQuotationNone),
	ActionDelete:    when(ActionDelete, ExpenseQuotationDraft, ExpenseQuotationValidated),
	ActionArchive:   never[ExpenseQuotationStatus](ActionArchive),
	ActionReset:     when(ActionReset, ExpenseQuotationNone, ExpenseQuotationDraft),
	ActionDownload:  unless(ActionDownload, ExpenseQuotationNone),
}

// InvoiceTable acciones de facturas de venta.
var InvoiceTable = Table[InvoiceStatus]{
	ActionSave:      when(ActionSave, InvoiceNone, InvoiceDraft),
	ActionDraft:     when(ActionDraft, InvoiceNone).To(InvoiceDraft),
	ActionValidate:  when(ActionValidate, InvoiceNone, InvoiceDraft).To(InvoiceValidated),
	ActionSend:      when(ActionSend, InvoiceValidated).To(InvoiceSent),
	ActionAccept:    never[InvoiceStatus](ActionAccept),
	ActionReject:    never[InvoiceStatus](ActionReject),
	ActionInvoice:   never[InvoiceStatus](ActionInvoice),
	ActionPay:       when(ActionPay, InvoiceSent).To(InvoicePaid),
	ActionDuplicate: unless(ActionDuplicate, InvoiceNone),
	ActionDelete:    when(ActionDelete, InvoiceDraft, InvoiceValidated),
	ActionArchive:   never[InvoiceStatus](ActionArchive),
	ActionReset:     when(ActionReset, InvoiceNone, InvoiceDraft),
	ActionDownload:  unless(ActionDownload, InvoiceNone),
}

// ExpenseInvoiceTable acciones de facturas de proveedor.
var ExpenseInvoiceTable = Table[ExpenseInvoiceStatus]{
	ActionSave:      when(ActionSave, ExpenseInvoiceNone, ExpenseInvoiceDraft),
	ActionDraft:     when(ActionDraft, ExpenseInvoiceNone).To(ExpenseInvoiceDraft),
	ActionValidate:  when(ActionValidate, ExpenseInvoiceNone, ExpenseInvoiceDraft).To(ExpenseInvoiceValidated),
	ActionSend:      never[ExpenseInvoiceStatus](ActionSend),
	ActionAccept:    never[ExpenseInvoiceStatus](ActionAccept),
	ActionReject:    never[ExpenseInvoiceStatus](ActionReject),
	ActionInvoice:   never[ExpenseInvoiceStatus](ActionInvoice),
	ActionPay:       when(ActionPay, ExpenseInvoiceValidated).To(ExpenseInvoicePaid),
	ActionDuplicate: unless(ActionDuplicate, ExpenseInvoiceNone),
	ActionDelete:    when(ActionDelete, ExpenseInvoiceDraft, ExpenseInvoiceValidated),
	ActionArchive:   never[ExpenseInvoiceStatus](ActionArchive),
	ActionReset:     when(ActionReset, ExpenseInvoiceNone, ExpenseInvoiceDraft),
	ActionDownload:  unless(ActionDownload, ExpenseInvoiceNone),
}
