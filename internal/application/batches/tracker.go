// Package batches implementa el rastreo de lotes: altas en recepciones con
// lote/vencimiento, consumo FIFO estricto y consultas de vencimiento.
package batches

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/application/ports"
	"github.com/jhoicas/costeo-api/internal/domain"
	domcosting "github.com/jhoicas/costeo-api/internal/domain/costing"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

// TrackerUseCase mantiene los lotes por ingrediente.
type TrackerUseCase struct {
	txRunner  ports.TxRunner
	batchRepo repository.BatchRepository
}

// NewTrackerUseCase construye el caso de uso.
func NewTrackerUseCase(txRunner ports.TxRunner, batchRepo repository.BatchRepository) *TrackerUseCase {
	return &TrackerUseCase{txRunner: txRunner, batchRepo: batchRepo}
}

// AddBatch registra un lote recibido. Lo invoca el intake por cada línea de
// compra con lote o vencimiento; las líneas sin ninguno solo cuentan en el
// agregado del ingrediente.
func (uc *TrackerUseCase) AddBatch(
	ctx context.Context,
	tenantID, ingredientID, lot string,
	quantity, unitCost decimal.Decimal,
	expiry *time.Time,
	receivedAt time.Time,
) (*entity.Batch, error) {
	if !quantity.GreaterThan(decimal.Zero) || unitCost.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	batch := &entity.Batch{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		IngredientID: ingredientID,
		Lot:          lot,
		Quantity:     domcosting.Quantity(quantity),
		UnitCost:     unitCost,
		ExpiryDate:   expiry,
		ReceivedAt:   receivedAt,
	}
	if err := uc.batchRepo.Create(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// ConsumeFIFO consume la cantidad pedida en orden FIFO (vencimiento
// ascendente con nulos al final, luego recepción ascendente) de forma
// estricta: si los lotes se agotan antes de satisfacer la cantidad devuelve
// ErrInsufficientBatchStock — distinto del insuficiente agregado, porque la
// cantidad agregada puede exceder la rastreable cuando datos antiguos no
// llevan lote. Nada se persiste en ese caso (la transacción revierte).
func (uc *TrackerUseCase) ConsumeFIFO(
	ctx context.Context,
	tenantID, ingredientID string,
	quantity decimal.Decimal,
) ([]domcosting.BatchConsumption, error) {
	if !quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	var consumed []domcosting.BatchConsumption
	err := uc.txRunner.Run(ctx, func(
		_ repository.StockMovementRepository,
		_ repository.IngredientRepository,
		batchRepo repository.BatchRepository,
		_ repository.PurchaseOrderRepository,
	) error {
		batchesList, err := batchRepo.ListForConsume(ctx, tenantID, ingredientID)
		if err != nil {
			return err
		}
		var remaining decimal.Decimal
		consumed, remaining = domcosting.ConsumeFIFO(batchesList, domcosting.Quantity(quantity))
		if remaining.GreaterThan(decimal.Zero) {
			return domain.ErrInsufficientBatchStock
		}
		byID := make(map[string]*entity.Batch, len(batchesList))
		for _, b := range batchesList {
			byID[b.ID] = b
		}
		now := time.Now()
		for _, c := range consumed {
			b := byID[c.BatchID]
			if err := batchRepo.UpdateQuantity(ctx, tenantID, b.ID, b.Quantity, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return consumed, nil
}

// ExpiringBefore devuelve los lotes con stock que vencen antes del horizonte
// (consulta de solo lectura para alertas externas).
func (uc *TrackerUseCase) ExpiringBefore(ctx context.Context, tenantID string, horizon time.Time) ([]*entity.Batch, error) {
	return uc.batchRepo.ListExpiringBefore(ctx, tenantID, horizon)
}

// ListByIngredient devuelve los lotes del ingrediente, consumidos incluidos
// (se conservan en cero para trazabilidad).
func (uc *TrackerUseCase) ListByIngredient(ctx context.Context, tenantID, ingredientID string) ([]*entity.Batch, error) {
	return uc.batchRepo.ListByIngredient(ctx, tenantID, ingredientID)
}
