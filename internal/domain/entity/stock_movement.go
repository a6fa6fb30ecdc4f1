package entity

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock (valores del ledger, en el idioma del negocio).
const (
	MovementTypeEntrada       = "entrada"
	MovementTypeSaida         = "saida"
	MovementTypeTransferencia = "transferencia"
	MovementTypeAjuste        = "ajuste"
)

// Prefijos de referencia usados como clave de idempotencia en el ledger.
const (
	ReferencePurchasePrefix = "purchase:"
)

// StockMovement es una entrada del ledger: registro inmutable de todo evento
// que afecta stock. Nunca se edita; una corrección es una nueva entrada
// compensatoria. Reference es única por tenant cuando no está vacía, lo que
// hace idempotente la aplicación de una misma línea de compra.
type StockMovement struct {
	ID           string
	TenantID     string
	IngredientID string
	Type         string          // entrada, saida, transferencia, ajuste
	Quantity     decimal.Decimal // delta con signo: positivo entrada, negativo saida
	Value        decimal.Decimal // valor monetario del movimiento (con signo)
	Reference    string          // clave de idempotencia: purchase:<id>:<línea>, ajuste manual, etc.
	Category     string          // etiqueta libre del caller (proveedor, merma, traslado...)
	IsProcessed  bool
	OccurredAt   time.Time
	CreatedAt    time.Time
}

// PurchaseLineReference construye la clave de idempotencia de una línea de compra.
func PurchaseLineReference(purchaseID string, lineIndex int) string {
	return ReferencePurchasePrefix + purchaseID + ":" + strconv.Itoa(lineIndex)
}
