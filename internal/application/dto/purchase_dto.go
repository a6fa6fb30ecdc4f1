package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/application/purchasing"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// PurchaseLineRequest línea de compra entrante.
type PurchaseLineRequest struct {
	IngredientID string          `json:"ingredient_id" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Lot          string          `json:"lot,omitempty"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
}

// SubmitPurchaseRequest body para POST /api/purchases.
type SubmitPurchaseRequest struct {
	Number       string                `json:"number" validate:"required"`
	Supplier     string                `json:"supplier,omitempty"`
	PurchaseDate *time.Time            `json:"purchase_date,omitempty"`
	AutoReceive  bool                  `json:"auto_receive,omitempty"`
	Lines        []PurchaseLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// PurchaseLineResponse línea de la orden en respuestas.
type PurchaseLineResponse struct {
	Index        int             `json:"index"`
	IngredientID string          `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Lot          string          `json:"lot,omitempty"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
}

// PurchaseOrderResponse representación de la orden de compra.
type PurchaseOrderResponse struct {
	ID           string                 `json:"id"`
	Number       string                 `json:"number"`
	Supplier     string                 `json:"supplier,omitempty"`
	PurchaseDate time.Time              `json:"purchase_date"`
	Status       string                 `json:"status"`
	TotalAmount  decimal.Decimal        `json:"total_amount"`
	Lines        []PurchaseLineResponse `json:"lines"`
	ReceivedAt   *time.Time             `json:"received_at,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// ReceiveLineResult resultado por línea al recibir la orden.
type ReceiveLineResult struct {
	Index        int    `json:"index"`
	IngredientID string `json:"ingredient_id"`
	Applied      bool   `json:"applied"`
	Skipped      bool   `json:"skipped"`
	Error        string `json:"error,omitempty"`
}

// ReceivePurchaseResponse resultado de recibir una orden, línea por línea.
type ReceivePurchaseResponse struct {
	Order   PurchaseOrderResponse `json:"order"`
	Lines   []ReceiveLineResult   `json:"lines,omitempty"`
	Applied int                   `json:"applied"`
	Skipped int                   `json:"skipped"`
	Failed  int                   `json:"failed"`
}

// ToPurchaseOrderResponse mapea la entidad a su representación HTTP.
func ToPurchaseOrderResponse(order *entity.PurchaseOrder) PurchaseOrderResponse {
	lines := make([]PurchaseLineResponse, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, PurchaseLineResponse{
			Index:        l.Index,
			IngredientID: l.IngredientID,
			Quantity:     l.Quantity,
			UnitCost:     l.UnitCost,
			Lot:          l.Lot,
			ExpiryDate:   l.ExpiryDate,
		})
	}
	return PurchaseOrderResponse{
		ID:           order.ID,
		Number:       order.Number,
		Supplier:     order.Supplier,
		PurchaseDate: order.PurchaseDate,
		Status:       order.Status,
		TotalAmount:  order.TotalAmount,
		Lines:        lines,
		ReceivedAt:   order.ReceivedAt,
		CreatedAt:    order.CreatedAt,
	}
}

// ToReceiveResponse mapea el resultado de recepción a su representación HTTP.
func ToReceiveResponse(result *purchasing.ReceiveResult) ReceivePurchaseResponse {
	lines := make([]ReceiveLineResult, 0, len(result.Lines))
	for _, l := range result.Lines {
		lines = append(lines, ReceiveLineResult{
			Index:        l.Index,
			IngredientID: l.IngredientID,
			Applied:      l.Applied,
			Skipped:      l.Skipped,
			Error:        l.Err,
		})
	}
	return ReceivePurchaseResponse{
		Order:   ToPurchaseOrderResponse(result.Order),
		Lines:   lines,
		Applied: result.Applied,
		Skipped: result.Skipped,
		Failed:  result.Failed,
	}
}
