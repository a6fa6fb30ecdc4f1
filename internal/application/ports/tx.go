package ports

import (
	"context"

	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza la pareja mutación-de-costeo +
// append-al-ledger del motor: o ambas se confirman o ambas se revierten.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		ingredientRepo repository.IngredientRepository,
		batchRepo repository.BatchRepository,
		purchaseRepo repository.PurchaseOrderRepository,
	) error) error
}
