package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// BatchRepository define el puerto de persistencia para lotes (DIP).
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.Batch) error
	// ListForConsume devuelve los lotes con cantidad disponible del ingrediente
	// en orden FIFO: vencimiento ascendente (sin vencimiento al final) y luego
	// fecha de recepción ascendente. En Postgres bloquea las filas (FOR UPDATE).
	ListForConsume(ctx context.Context, tenantID, ingredientID string) ([]*entity.Batch, error)
	// UpdateQuantity persiste la cantidad restante de un lote consumido.
	// Los lotes nunca se eliminan, solo llegan a cero.
	UpdateQuantity(ctx context.Context, tenantID, batchID string, qty decimal.Decimal, updatedAt time.Time) error
	ListByIngredient(ctx context.Context, tenantID, ingredientID string) ([]*entity.Batch, error)
	// ListExpiringBefore devuelve lotes con stock que vencen antes del horizonte.
	ListExpiringBefore(ctx context.Context, tenantID string, horizon time.Time) ([]*entity.Batch, error)
}
