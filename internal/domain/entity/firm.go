package entity

import "time"

// Firm contraparte de un documento: cliente en ventas, proveedor en gastos.
type Firm struct {
	ID        string
	CompanyID string
	Name      string
	TaxID     string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
