package memory

import (
	"context"

	"github.com/jhoicas/costeo-api/internal/application/ports"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks con semántica transaccional sobre el Store:
// serializa las transacciones con un mutex y revierte por snapshot si el
// callback falla. Suficiente para tests y modo desarrollo.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run toma el snapshot, ejecuta fn con los repos del store y restaura el
// estado previo si fn devuelve error.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	ingredientRepo repository.IngredientRepository,
	batchRepo repository.BatchRepository,
	purchaseRepo repository.PurchaseOrderRepository,
) error) error {
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.mu.Lock()
	snap := r.store.snapshot()
	r.store.mu.Unlock()

	err := fn(
		NewStockMovementRepository(r.store),
		NewIngredientRepository(r.store),
		NewBatchRepository(r.store),
		NewPurchaseOrderRepository(r.store),
	)
	if err != nil {
		r.store.mu.Lock()
		r.store.restore(snap)
		r.store.mu.Unlock()
		return err
	}
	return nil
}
