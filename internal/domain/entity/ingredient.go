package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ingredient representa un insumo de inventario de un tenant.
// QuantityOnHand y UnitCost (costo promedio ponderado) solo los muta el motor
// de costeo; el catálogo (colaborador externo) crea y nombra los ingredientes.
// Invariante: QuantityOnHand >= 0 y UnitCost >= 0 siempre; cuando todos los
// movimientos del ingrediente llevan lote, QuantityOnHand == Σ lotes.
type Ingredient struct {
	ID             string
	TenantID       string
	Name           string
	Unit           string // unidad de medida base: kg, g, l, ml, un
	QuantityOnHand decimal.Decimal
	UnitCost       decimal.Decimal  // promedio ponderado (inicia en 0)
	MinStock       *decimal.Decimal // opcional, umbral de alerta de reposición
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TotalValue devuelve el valor contable actual del ingrediente.
func (i *Ingredient) TotalValue() decimal.Decimal {
	return i.QuantityOnHand.Mul(i.UnitCost)
}

// BelowMinStock indica si el stock actual está por debajo del mínimo configurado.
func (i *Ingredient) BelowMinStock() bool {
	if i.MinStock == nil {
		return false
	}
	return i.QuantityOnHand.LessThan(*i.MinStock)
}
