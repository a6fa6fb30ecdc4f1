package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra. La transición es una sola vía: pending -> received.
const (
	PurchaseStatusPending  = "pending"
	PurchaseStatusReceived = "received"
)

// PurchaseOrder representa una compra a proveedor. Inmutable una vez creada,
// salvo la transición de estado pending -> received.
// Invariante: TotalAmount == Σ(línea.Quantity * línea.UnitCost).
// Number es único por tenant sin distinguir mayúsculas (guardia de idempotencia).
type PurchaseOrder struct {
	ID           string
	TenantID     string
	Number       string // identificador provisto por el cliente
	Supplier     string // opcional
	PurchaseDate time.Time
	Status       string
	TotalAmount  decimal.Decimal
	Lines        []PurchaseLineItem
	ReceivedAt   *time.Time
	CreatedAt    time.Time
}

// PurchaseLineItem es una línea de la orden: ingrediente, cantidad y costo,
// con lote/vencimiento opcionales para trazabilidad.
type PurchaseLineItem struct {
	Index        int // posición dentro de la orden, base 0
	IngredientID string
	Quantity     decimal.Decimal // > 0
	UnitCost     decimal.Decimal // > 0
	Lot          string          // opcional
	ExpiryDate   *time.Time      // opcional
}

// LineTotal devuelve Quantity * UnitCost de la línea.
func (l PurchaseLineItem) LineTotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitCost)
}

// HasLotInfo indica si la línea trae lote o vencimiento (genera Batch al recibir).
func (l PurchaseLineItem) HasLotInfo() bool {
	return l.Lot != "" || l.ExpiryDate != nil
}

// IsReceived indica si la orden ya fue recibida.
func (p *PurchaseOrder) IsReceived() bool {
	return p.Status == PurchaseStatusReceived
}
