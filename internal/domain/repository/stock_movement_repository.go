package repository

import (
	"context"
	"time"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del ledger (DIP).
// El ledger es append-only: no expone update ni delete; las correcciones son
// nuevas entradas compensatorias.
type StockMovementRepository interface {
	// Append persiste una entrada del ledger. Si Reference no está vacía y ya
	// existe para el tenant, devuelve domain.ErrDuplicate (la línea ya fue
	// aplicada: clave de idempotencia).
	Append(ctx context.Context, movement *entity.StockMovement) error
	// ListByIngredient devuelve las entradas del ingrediente en orden
	// cronológico ascendente. Una consulta nueva relee desde el store
	// (reiniciable, no suscripción push).
	ListByIngredient(ctx context.Context, tenantID, ingredientID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
}
