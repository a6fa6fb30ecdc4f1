package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// Para entrada: quantity y unit_cost. Para saida: quantity.
// Para ajuste: quantity es la nueva cantidad absoluta.
// Para transferencia: quantity más origin y destination.
type RegisterMovementRequest struct {
	IngredientID string           `json:"ingredient_id" validate:"required"`
	Type         string           `json:"type" validate:"required,oneof=entrada saida transferencia ajuste"`
	Quantity     decimal.Decimal  `json:"quantity"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	Lot          string           `json:"lot,omitempty"`
	ExpiryDate   *time.Time       `json:"expiry_date,omitempty"`
	Origin       string           `json:"origin,omitempty"`
	Destination  string           `json:"destination,omitempty"`
	Category     string           `json:"category,omitempty"`
	Reference    string           `json:"reference,omitempty"`
}

// StockLevelResponse estado resultante de un movimiento.
type StockLevelResponse struct {
	IngredientID   string          `json:"ingredient_id"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
}

// MovementResponse entrada del ledger en respuestas.
type MovementResponse struct {
	ID           string          `json:"id"`
	IngredientID string          `json:"ingredient_id"`
	Type         string          `json:"type"`
	Quantity     decimal.Decimal `json:"quantity"`
	Value        decimal.Decimal `json:"value"`
	Reference    string          `json:"reference,omitempty"`
	Category     string          `json:"category,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// BatchResponse lote en respuestas.
type BatchResponse struct {
	ID           string          `json:"id"`
	IngredientID string          `json:"ingredient_id"`
	Lot          string          `json:"lot,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	ReceivedAt   time.Time       `json:"received_at"`
}

// LowStockItemResponse ingrediente bajo su umbral mínimo.
type LowStockItemResponse struct {
	IngredientID   string          `json:"ingredient_id"`
	Name           string          `json:"name"`
	Unit           string          `json:"unit"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	MinStock       decimal.Decimal `json:"min_stock"`
}

// ToMovementResponse mapea una entrada del ledger.
func ToMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:           m.ID,
		IngredientID: m.IngredientID,
		Type:         m.Type,
		Quantity:     m.Quantity,
		Value:        m.Value,
		Reference:    m.Reference,
		Category:     m.Category,
		OccurredAt:   m.OccurredAt,
	}
}

// ToBatchResponse mapea un lote.
func ToBatchResponse(b *entity.Batch) BatchResponse {
	return BatchResponse{
		ID:           b.ID,
		IngredientID: b.IngredientID,
		Lot:          b.Lot,
		Quantity:     b.Quantity,
		UnitCost:     b.UnitCost,
		ExpiryDate:   b.ExpiryDate,
		ReceivedAt:   b.ReceivedAt,
	}
}
