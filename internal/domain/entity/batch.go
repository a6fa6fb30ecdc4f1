package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch representa un lote rastreable de un ingrediente: una sub-cantidad
// recibida junta, con su costo de recepción y vencimiento opcional.
// Los lotes nunca se eliminan: se consumen hasta cero para conservar la
// trazabilidad.
type Batch struct {
	ID           string
	TenantID     string
	IngredientID string
	Lot          string          // etiqueta de lote (opcional)
	Quantity     decimal.Decimal // puede llegar a cero, nunca negativa
	UnitCost     decimal.Decimal // costo unitario al momento de la recepción
	ExpiryDate   *time.Time      // opcional
	ReceivedAt   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsExpired indica si el lote venció respecto al instante dado.
func (b *Batch) IsExpired(now time.Time) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(now)
}

// Deduct reduce la cantidad del lote y devuelve lo efectivamente deducido
// (puede ser menos que lo pedido si el lote no alcanza).
func (b *Batch) Deduct(quantity decimal.Decimal) decimal.Decimal {
	if quantity.GreaterThan(b.Quantity) {
		deducted := b.Quantity
		b.Quantity = decimal.Zero
		return deducted
	}
	b.Quantity = b.Quantity.Sub(quantity)
	return quantity
}

// HasStock indica si el lote aún tiene cantidad disponible.
func (b *Batch) HasStock() bool {
	return b.Quantity.GreaterThan(decimal.Zero)
}
