// Package costing contiene el motor de costeo: el único componente autorizado
// a mutar QuantityOnHand/UnitCost de un ingrediente. Cada mutación va
// emparejada con exactamente un append al ledger dentro de la misma
// transacción; si el append falla, la transacción revierte la mutación.
package costing

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/application/ports"
	"github.com/jhoicas/costeo-api/internal/domain"
	domcosting "github.com/jhoicas/costeo-api/internal/domain/costing"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
	"github.com/jhoicas/costeo-api/pkg/logger"
)

// RetryConfig acota el reintento interno ante conflictos de serialización.
// Agotados los reintentos se reporta ErrConcurrentUpdateConflict (transitorio,
// seguro de reintentar por el caller).
type RetryConfig struct {
	MaxRetries int
	Backoff    time.Duration
}

// Engine aplica recepciones, salidas y ajustes sobre un ingrediente,
// serializado por (tenant, ingrediente) mediante el bloqueo de fila del
// TxRunner. Ingredientes distintos avanzan en paralelo.
type Engine struct {
	txRunner ports.TxRunner
	retry    RetryConfig
	log      *logger.Logger
}

// NewEngine construye el motor.
func NewEngine(txRunner ports.TxRunner, retry RetryConfig, log *logger.Logger) *Engine {
	if retry.MaxRetries <= 0 {
		retry.MaxRetries = 3
	}
	if retry.Backoff <= 0 {
		retry.Backoff = 50 * time.Millisecond
	}
	return &Engine{txRunner: txRunner, retry: retry, log: log}
}

// StockLevel es el estado resultante de una mutación: cantidad y costo promedio.
type StockLevel struct {
	QuantityOnHand decimal.Decimal
	UnitCost       decimal.Decimal
}

// ReceiptInput entrada para una recepción (compra o entrada manual).
type ReceiptInput struct {
	TenantID     string
	IngredientID string
	Quantity     decimal.Decimal // > 0
	UnitCost     decimal.Decimal // >= 0
	Lot          string          // opcional: genera lote rastreable
	ExpiryDate   *time.Time      // opcional: genera lote rastreable
	Reference    string          // clave de idempotencia en el ledger (opcional)
	Category     string
	OccurredAt   time.Time
}

// IssueInput entrada para una salida (consumo, venta, merma).
type IssueInput struct {
	TenantID     string
	IngredientID string
	Quantity     decimal.Decimal // > 0
	Reference    string
	Category     string
	OccurredAt   time.Time
}

// AdjustmentInput entrada para un ajuste: set directo de la cantidad,
// la única operación que fuerza una corrección (nunca negativa).
type AdjustmentInput struct {
	TenantID     string
	IngredientID string
	NewQuantity  decimal.Decimal // >= 0
	Reference    string
	Category     string
	OccurredAt   time.Time
}

// ApplyReceipt aplica una recepción: promedio ponderado, alta de lote si la
// entrada trae lote/vencimiento y append al ledger, todo en una transacción.
func (e *Engine) ApplyReceipt(ctx context.Context, in ReceiptInput) (StockLevel, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) || in.UnitCost.LessThan(decimal.Zero) {
		return StockLevel{}, domain.ErrInvalidInput
	}
	var level StockLevel
	err := e.withRetry(ctx, "apply_receipt", func() error {
		return e.txRunner.Run(ctx, func(
			movRepo repository.StockMovementRepository,
			ingredientRepo repository.IngredientRepository,
			batchRepo repository.BatchRepository,
			_ repository.PurchaseOrderRepository,
		) error {
			lvl, _, err := e.ReceiptInTx(ctx, movRepo, ingredientRepo, batchRepo, in)
			level = lvl
			return err
		})
	})
	return level, err
}

// ReceiptInTx ejecuta la recepción con los repositorios del caller (misma
// transacción). Lo usa Purchase Intake para aplicar cada línea de compra.
// applied=false indica que la Reference ya estaba en el ledger y la línea se
// omitió (reintento idempotente); el estado devuelto es el vigente.
func (e *Engine) ReceiptInTx(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	ingredientRepo repository.IngredientRepository,
	batchRepo repository.BatchRepository,
	in ReceiptInput,
) (StockLevel, bool, error) {
	ing, err := ingredientRepo.GetForUpdate(ctx, in.TenantID, in.IngredientID)
	if err != nil {
		return StockLevel{}, false, err
	}
	if ing == nil {
		return StockLevel{}, false, domain.ErrUnknownIngredient
	}

	qty := domcosting.Quantity(in.Quantity)
	mov := &entity.StockMovement{
		TenantID:     in.TenantID,
		IngredientID: in.IngredientID,
		Type:         entity.MovementTypeEntrada,
		Quantity:     qty,
		Value:        domcosting.Money(qty.Mul(in.UnitCost)),
		Reference:    in.Reference,
		Category:     in.Category,
		IsProcessed:  true,
		OccurredAt:   in.OccurredAt,
	}
	if err := movRepo.Append(ctx, mov); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// La línea ya fue aplicada en un intento anterior: no duplicar stock.
			return StockLevel{QuantityOnHand: ing.QuantityOnHand, UnitCost: ing.UnitCost}, false, nil
		}
		return StockLevel{}, false, err
	}

	newCost := domcosting.AverageCost(ing.QuantityOnHand, ing.UnitCost, qty, in.UnitCost)
	ing.QuantityOnHand = domcosting.Quantity(ing.QuantityOnHand.Add(qty))
	ing.UnitCost = newCost
	if err := ingredientRepo.UpdateStock(ctx, ing); err != nil {
		return StockLevel{}, false, err
	}

	if in.Lot != "" || in.ExpiryDate != nil {
		batch := &entity.Batch{
			TenantID:     in.TenantID,
			IngredientID: in.IngredientID,
			Lot:          in.Lot,
			Quantity:     qty,
			UnitCost:     in.UnitCost,
			ExpiryDate:   in.ExpiryDate,
			ReceivedAt:   in.OccurredAt,
		}
		if err := batchRepo.Create(ctx, batch); err != nil {
			return StockLevel{}, false, err
		}
	}

	return StockLevel{QuantityOnHand: ing.QuantityOnHand, UnitCost: ing.UnitCost}, true, nil
}

// ApplyIssue aplica una salida: la cantidad baja, el costo promedio no cambia.
// Rechaza con ErrInsufficientStock si la cantidad pedida excede la disponible:
// el stock nunca queda negativo. Los lotes rastreables se consumen FIFO hasta
// donde alcancen (datos antiguos pueden no llevar lote).
func (e *Engine) ApplyIssue(ctx context.Context, in IssueInput) (StockLevel, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return StockLevel{}, domain.ErrInvalidInput
	}
	var level StockLevel
	err := e.withRetry(ctx, "apply_issue", func() error {
		return e.txRunner.Run(ctx, func(
			movRepo repository.StockMovementRepository,
			ingredientRepo repository.IngredientRepository,
			batchRepo repository.BatchRepository,
			_ repository.PurchaseOrderRepository,
		) error {
			lvl, err := e.issueInTx(ctx, movRepo, ingredientRepo, batchRepo, in)
			level = lvl
			return err
		})
	})
	return level, err
}

func (e *Engine) issueInTx(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	ingredientRepo repository.IngredientRepository,
	batchRepo repository.BatchRepository,
	in IssueInput,
) (StockLevel, error) {
	ing, err := ingredientRepo.GetForUpdate(ctx, in.TenantID, in.IngredientID)
	if err != nil {
		return StockLevel{}, err
	}
	if ing == nil {
		return StockLevel{}, domain.ErrUnknownIngredient
	}

	qty := domcosting.Quantity(in.Quantity)
	if qty.GreaterThan(ing.QuantityOnHand) {
		return StockLevel{}, domain.ErrInsufficientStock
	}

	mov := &entity.StockMovement{
		TenantID:     in.TenantID,
		IngredientID: in.IngredientID,
		Type:         entity.MovementTypeSaida,
		Quantity:     qty.Neg(),
		Value:        domcosting.Money(qty.Neg().Mul(ing.UnitCost)),
		Reference:    in.Reference,
		Category:     in.Category,
		IsProcessed:  true,
		OccurredAt:   in.OccurredAt,
	}
	if err := movRepo.Append(ctx, mov); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return StockLevel{QuantityOnHand: ing.QuantityOnHand, UnitCost: ing.UnitCost}, nil
		}
		return StockLevel{}, err
	}

	ing.QuantityOnHand = domcosting.Quantity(ing.QuantityOnHand.Sub(qty))
	if err := ingredientRepo.UpdateStock(ctx, ing); err != nil {
		return StockLevel{}, err
	}

	if err := consumeBatches(ctx, batchRepo, in.TenantID, in.IngredientID, qty, in.OccurredAt); err != nil {
		return StockLevel{}, err
	}

	return StockLevel{QuantityOnHand: ing.QuantityOnHand, UnitCost: ing.UnitCost}, nil
}

// ApplyAdjustment fija la cantidad del ingrediente en NewQuantity (>= 0) y
// registra el delta en el ledger como ajuste. El costo promedio no cambia.
func (e *Engine) ApplyAdjustment(ctx context.Context, in AdjustmentInput) (StockLevel, error) {
	if in.NewQuantity.LessThan(decimal.Zero) {
		return StockLevel{}, domain.ErrInvalidInput
	}
	var level StockLevel
	err := e.withRetry(ctx, "apply_adjustment", func() error {
		return e.txRunner.Run(ctx, func(
			movRepo repository.StockMovementRepository,
			ingredientRepo repository.IngredientRepository,
			batchRepo repository.BatchRepository,
			_ repository.PurchaseOrderRepository,
		) error {
			ing, err := ingredientRepo.GetForUpdate(ctx, in.TenantID, in.IngredientID)
			if err != nil {
				return err
			}
			if ing == nil {
				return domain.ErrUnknownIngredient
			}

			newQty := domcosting.Quantity(in.NewQuantity)
			delta := newQty.Sub(ing.QuantityOnHand)

			mov := &entity.StockMovement{
				TenantID:     in.TenantID,
				IngredientID: in.IngredientID,
				Type:         entity.MovementTypeAjuste,
				Quantity:     delta,
				Value:        domcosting.Money(delta.Mul(ing.UnitCost)),
				Reference:    in.Reference,
				Category:     in.Category,
				IsProcessed:  true,
				OccurredAt:   in.OccurredAt,
			}
			if err := movRepo.Append(ctx, mov); err != nil {
				if errors.Is(err, domain.ErrDuplicate) {
					level = StockLevel{QuantityOnHand: ing.QuantityOnHand, UnitCost: ing.UnitCost}
					return nil
				}
				return err
			}

			ing.QuantityOnHand = newQty
			if err := ingredientRepo.UpdateStock(ctx, ing); err != nil {
				return err
			}

			// Un ajuste a la baja consume lotes FIFO para mantener la trazabilidad.
			if delta.LessThan(decimal.Zero) {
				if err := consumeBatches(ctx, batchRepo, in.TenantID, in.IngredientID, delta.Neg(), in.OccurredAt); err != nil {
					return err
				}
			}

			level = StockLevel{QuantityOnHand: ing.QuantityOnHand, UnitCost: ing.UnitCost}
			return nil
		})
	})
	return level, err
}

// consumeBatches consume lotes FIFO hasta donde alcancen y persiste las
// cantidades restantes. El faltante no es error aquí: la cantidad agregada
// puede exceder la rastreable por lotes.
func consumeBatches(
	ctx context.Context,
	batchRepo repository.BatchRepository,
	tenantID, ingredientID string,
	qty decimal.Decimal,
	at time.Time,
) error {
	batches, err := batchRepo.ListForConsume(ctx, tenantID, ingredientID)
	if err != nil {
		return err
	}
	if len(batches) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Batch, len(batches))
	for _, b := range batches {
		byID[b.ID] = b
	}
	consumed, _ := domcosting.ConsumeFIFO(batches, qty)
	for _, c := range consumed {
		b := byID[c.BatchID]
		if err := batchRepo.UpdateQuantity(ctx, tenantID, b.ID, b.Quantity, at); err != nil {
			return err
		}
	}
	return nil
}

// withRetry reintenta fn ante domain.ErrConflict (fallo de serialización del
// store) con backoff exponencial acotado; agotado el presupuesto devuelve
// ErrConcurrentUpdateConflict.
func (e *Engine) withRetry(ctx context.Context, op string, fn func() error) error {
	backoff := e.retry.Backoff
	var err error
	for attempt := 0; attempt <= e.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			return err
		}
		e.log.Warn().Str("op", op).Int("attempt", attempt+1).Msg("conflicto de serialización, reintentando")
	}
	return domain.ErrConcurrentUpdateConflict
}
