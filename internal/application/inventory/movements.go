// Package inventory implementa los movimientos manuales de stock
// (entrada, saida, transferencia, ajuste) y las consultas de reporte.
// Los movimientos manuales no pasan por el intake de compras pero sí por el
// ledger y, cuando cambian cantidad, por el motor de costeo.
package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	appcosting "github.com/jhoicas/costeo-api/internal/application/costing"
	"github.com/jhoicas/costeo-api/internal/application/ports"
	"github.com/jhoicas/costeo-api/internal/domain"
	domcosting "github.com/jhoicas/costeo-api/internal/domain/costing"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

// MovementUseCase registra movimientos manuales de stock.
type MovementUseCase struct {
	txRunner       ports.TxRunner
	engine         *appcosting.Engine
	ingredientRepo repository.IngredientRepository
	movementRepo   repository.StockMovementRepository
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(
	txRunner ports.TxRunner,
	engine *appcosting.Engine,
	ingredientRepo repository.IngredientRepository,
	movementRepo repository.StockMovementRepository,
) *MovementUseCase {
	return &MovementUseCase{
		txRunner:       txRunner,
		engine:         engine,
		ingredientRepo: ingredientRepo,
		movementRepo:   movementRepo,
	}
}

// MovementInput entrada para un movimiento manual.
// Para entrada: Quantity y UnitCost. Para saida: Quantity.
// Para ajuste: Quantity es la nueva cantidad absoluta (set directo).
// Para transferencia: Quantity y Origin/Destination (etiquetas de ubicación).
type MovementInput struct {
	IngredientID string
	Type         string
	Quantity     decimal.Decimal
	UnitCost     *decimal.Decimal
	Lot          string
	ExpiryDate   *time.Time
	Origin       string
	Destination  string
	Category     string
	Reference    string
}

// Register valida y aplica el movimiento según su tipo.
func (uc *MovementUseCase) Register(ctx context.Context, tenantID string, in MovementInput) (appcosting.StockLevel, error) {
	if in.IngredientID == "" {
		return appcosting.StockLevel{}, domain.ErrInvalidInput
	}
	now := time.Now()

	switch in.Type {
	case entity.MovementTypeEntrada:
		if in.UnitCost == nil || in.UnitCost.LessThan(decimal.Zero) {
			return appcosting.StockLevel{}, domain.ErrInvalidInput
		}
		return uc.engine.ApplyReceipt(ctx, appcosting.ReceiptInput{
			TenantID:     tenantID,
			IngredientID: in.IngredientID,
			Quantity:     in.Quantity,
			UnitCost:     *in.UnitCost,
			Lot:          in.Lot,
			ExpiryDate:   in.ExpiryDate,
			Reference:    in.Reference,
			Category:     in.Category,
			OccurredAt:   now,
		})
	case entity.MovementTypeSaida:
		return uc.engine.ApplyIssue(ctx, appcosting.IssueInput{
			TenantID:     tenantID,
			IngredientID: in.IngredientID,
			Quantity:     in.Quantity,
			Reference:    in.Reference,
			Category:     in.Category,
			OccurredAt:   now,
		})
	case entity.MovementTypeAjuste:
		return uc.engine.ApplyAdjustment(ctx, appcosting.AdjustmentInput{
			TenantID:     tenantID,
			IngredientID: in.IngredientID,
			NewQuantity:  in.Quantity,
			Reference:    in.Reference,
			Category:     in.Category,
			OccurredAt:   now,
		})
	case entity.MovementTypeTransferencia:
		return uc.registerTransfer(ctx, tenantID, in, now)
	default:
		return appcosting.StockLevel{}, domain.ErrInvalidInput
	}
}

// registerTransfer registra un traslado entre ubicaciones del tenant: dos
// entradas compensatorias del ledger (salida en origen, entrada en destino)
// en la misma transacción. La cantidad total del ingrediente no cambia, así
// que el costo promedio tampoco; el agregado solo valida disponibilidad.
func (uc *MovementUseCase) registerTransfer(ctx context.Context, tenantID string, in MovementInput, now time.Time) (appcosting.StockLevel, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) || in.Origin == "" || in.Destination == "" || in.Origin == in.Destination {
		return appcosting.StockLevel{}, domain.ErrInvalidInput
	}
	var level appcosting.StockLevel
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		ingredientRepo repository.IngredientRepository,
		_ repository.BatchRepository,
		_ repository.PurchaseOrderRepository,
	) error {
		ing, err := ingredientRepo.GetForUpdate(ctx, tenantID, in.IngredientID)
		if err != nil {
			return err
		}
		if ing == nil {
			return domain.ErrUnknownIngredient
		}
		qty := domcosting.Quantity(in.Quantity)
		if qty.GreaterThan(ing.QuantityOnHand) {
			return domain.ErrInsufficientStock
		}
		value := domcosting.Money(qty.Mul(ing.UnitCost))

		out := &entity.StockMovement{
			TenantID:     tenantID,
			IngredientID: in.IngredientID,
			Type:         entity.MovementTypeTransferencia,
			Quantity:     qty.Neg(),
			Value:        value.Neg(),
			Reference:    in.Reference,
			Category:     "traslado:" + in.Origin + ">" + in.Destination,
			IsProcessed:  true,
			OccurredAt:   now,
		}
		if err := movRepo.Append(ctx, out); err != nil {
			return err
		}
		inMov := &entity.StockMovement{
			TenantID:     tenantID,
			IngredientID: in.IngredientID,
			Type:         entity.MovementTypeTransferencia,
			Quantity:     qty,
			Value:        value,
			Category:     "traslado:" + in.Origin + ">" + in.Destination,
			IsProcessed:  true,
			OccurredAt:   now,
		}
		if err := movRepo.Append(ctx, inMov); err != nil {
			return err
		}
		level = appcosting.StockLevel{QuantityOnHand: ing.QuantityOnHand, UnitCost: ing.UnitCost}
		return nil
	})
	return level, err
}

// ListMovements devuelve el ledger de un ingrediente en orden cronológico
// ascendente (consulta reiniciable, para dashboards y conciliación).
func (uc *MovementUseCase) ListMovements(ctx context.Context, tenantID, ingredientID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	if ingredientID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.movementRepo.ListByIngredient(ctx, tenantID, ingredientID, from, to, limit, offset)
}

// LowStock devuelve los ingredientes bajo su umbral mínimo.
func (uc *MovementUseCase) LowStock(ctx context.Context, tenantID string) ([]*entity.Ingredient, error) {
	return uc.ingredientRepo.ListBelowMinStock(ctx, tenantID)
}

// Valuation devuelve el valor contable total del inventario del tenant:
// Σ cantidad * costo promedio por ingrediente.
func (uc *MovementUseCase) Valuation(ctx context.Context, tenantID string) (decimal.Decimal, error) {
	total := decimal.Zero
	const page = 500
	for offset := 0; ; offset += page {
		ings, err := uc.ingredientRepo.ListByTenant(ctx, tenantID, page, offset)
		if err != nil {
			return decimal.Zero, err
		}
		for _, ing := range ings {
			total = total.Add(ing.TotalValue())
		}
		if len(ings) < page {
			break
		}
	}
	return domcosting.Money(total), nil
}
