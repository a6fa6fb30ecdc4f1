// Package purchasing implementa el intake de compras: validación y
// normalización del documento de compra, guardia de idempotencia por número y
// aplicación de líneas al motor de costeo.
package purchasing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appcosting "github.com/jhoicas/costeo-api/internal/application/costing"
	"github.com/jhoicas/costeo-api/internal/application/ports"
	"github.com/jhoicas/costeo-api/internal/domain"
	domcosting "github.com/jhoicas/costeo-api/internal/domain/costing"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
	"github.com/jhoicas/costeo-api/pkg/logger"
)

// IntakeUseCase valida y persiste órdenes de compra y las aplica al motor de
// costeo al recibirlas.
type IntakeUseCase struct {
	txRunner       ports.TxRunner
	engine         *appcosting.Engine
	purchaseRepo   repository.PurchaseOrderRepository
	ingredientRepo repository.IngredientRepository
	log            *logger.Logger
}

// NewIntakeUseCase construye el caso de uso.
func NewIntakeUseCase(
	txRunner ports.TxRunner,
	engine *appcosting.Engine,
	purchaseRepo repository.PurchaseOrderRepository,
	ingredientRepo repository.IngredientRepository,
	log *logger.Logger,
) *IntakeUseCase {
	return &IntakeUseCase{
		txRunner:       txRunner,
		engine:         engine,
		purchaseRepo:   purchaseRepo,
		ingredientRepo: ingredientRepo,
		log:            log,
	}
}

// LineInput es una línea de compra entrante.
type LineInput struct {
	IngredientID string
	Quantity     decimal.Decimal
	UnitCost     decimal.Decimal
	Lot          string
	ExpiryDate   *time.Time
}

// SubmitInput es el documento de compra entrante.
type SubmitInput struct {
	Number       string
	Supplier     string
	PurchaseDate time.Time
	Lines        []LineInput
	AutoReceive  bool
}

// LineResult reporta el destino de una línea al recibir la orden.
type LineResult struct {
	Index        int
	IngredientID string
	Applied      bool   // false: omitida por idempotencia o fallida
	Skipped      bool   // true: ya aplicada en un intento anterior
	Err          string // vacío si la línea quedó aplicada u omitida
}

// ReceiveResult reporta el resultado de recibir una orden, línea por línea.
// Failed > 0 implica que la orden sigue pending y el caller puede reintentar:
// las líneas ya aplicadas se omiten por la clave (purchaseId, línea).
type ReceiveResult struct {
	Order   *entity.PurchaseOrder
	Lines   []LineResult
	Applied int
	Skipped int
	Failed  int
}

// SubmitPurchase valida el documento, lo persiste como pending y, si
// AutoReceive está activo, lo recibe inmediatamente.
// Toda validación ocurre antes de cualquier mutación: ErrInvalidLine,
// ErrDuplicatePurchase y ErrUnknownIngredient jamás dejan estado parcial.
func (uc *IntakeUseCase) SubmitPurchase(ctx context.Context, tenantID string, in SubmitInput) (*entity.PurchaseOrder, *ReceiveResult, error) {
	number := strings.TrimSpace(in.Number)
	if number == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	if len(in.Lines) == 0 {
		return nil, nil, domain.ErrInvalidLine
	}
	for _, line := range in.Lines {
		if !line.Quantity.GreaterThan(decimal.Zero) || !line.UnitCost.GreaterThan(decimal.Zero) {
			return nil, nil, domain.ErrInvalidLine
		}
	}

	// Guardia de idempotencia: el número de compra es único por tenant sin
	// distinguir mayúsculas. Un reintento del cliente observa el conflicto en
	// lugar de duplicar stock.
	existing, err := uc.purchaseRepo.GetByNumber(ctx, tenantID, number)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, domain.ErrDuplicatePurchase
	}

	total := decimal.Zero
	lines := make([]entity.PurchaseLineItem, 0, len(in.Lines))
	for i, line := range in.Lines {
		ing, err := uc.ingredientRepo.GetByID(ctx, tenantID, line.IngredientID)
		if err != nil {
			return nil, nil, err
		}
		if ing == nil {
			return nil, nil, domain.ErrUnknownIngredient
		}
		qty := domcosting.Quantity(line.Quantity)
		total = total.Add(qty.Mul(line.UnitCost))
		lines = append(lines, entity.PurchaseLineItem{
			Index:        i,
			IngredientID: line.IngredientID,
			Quantity:     qty,
			UnitCost:     line.UnitCost,
			Lot:          line.Lot,
			ExpiryDate:   line.ExpiryDate,
		})
	}

	now := time.Now()
	purchaseDate := in.PurchaseDate
	if purchaseDate.IsZero() {
		purchaseDate = now
	}
	order := &entity.PurchaseOrder{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		Number:       number,
		Supplier:     in.Supplier,
		PurchaseDate: purchaseDate,
		Status:       entity.PurchaseStatusPending,
		TotalAmount:  domcosting.Money(total),
		Lines:        lines,
		CreatedAt:    now,
	}
	if err := uc.purchaseRepo.Create(ctx, order); err != nil {
		if err == domain.ErrDuplicate {
			// Carrera entre dos submits con el mismo número: el segundo observa el conflicto.
			return nil, nil, domain.ErrDuplicatePurchase
		}
		return nil, nil, err
	}

	uc.log.Info().
		Str("tenant", tenantID).
		Str("purchase", order.ID).
		Str("number", order.Number).
		Int("lines", len(order.Lines)).
		Msg("orden de compra registrada")

	if !in.AutoReceive {
		return order, nil, nil
	}
	result, err := uc.ReceivePurchase(ctx, tenantID, order.ID)
	if err != nil {
		return order, nil, err
	}
	return result.Order, result, nil
}

// ReceivePurchase aplica la transición pending -> received: una recepción de
// costeo por línea, en orden, cada una en su propia transacción con su lote
// (si la línea trae lote/vencimiento) y su entrada del ledger. Recibir una
// orden ya recibida es un no-op que devuelve la orden sin cambios.
// Un fallo de mutación en una línea no detiene las demás: el resultado nombra
// qué líneas quedaron aplicadas y cuáles no, y la orden pasa a received solo
// cuando todas las líneas están aplicadas (u omitidas por idempotencia).
func (uc *IntakeUseCase) ReceivePurchase(ctx context.Context, tenantID, orderID string) (*ReceiveResult, error) {
	order, err := uc.purchaseRepo.GetByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if order.IsReceived() {
		return &ReceiveResult{Order: order, Skipped: len(order.Lines)}, nil
	}

	result := &ReceiveResult{Order: order}
	for _, line := range order.Lines {
		res := LineResult{Index: line.Index, IngredientID: line.IngredientID}

		var applied bool
		err := uc.txRunner.Run(ctx, func(
			movRepo repository.StockMovementRepository,
			ingredientRepo repository.IngredientRepository,
			batchRepo repository.BatchRepository,
			_ repository.PurchaseOrderRepository,
		) error {
			_, ok, err := uc.engine.ReceiptInTx(ctx, movRepo, ingredientRepo, batchRepo, appcosting.ReceiptInput{
				TenantID:     tenantID,
				IngredientID: line.IngredientID,
				Quantity:     line.Quantity,
				UnitCost:     line.UnitCost,
				Lot:          line.Lot,
				ExpiryDate:   line.ExpiryDate,
				Reference:    entity.PurchaseLineReference(order.ID, line.Index),
				Category:     categoryFor(order),
				OccurredAt:   order.PurchaseDate,
			})
			applied = ok
			return err
		})
		if err != nil {
			res.Err = err.Error()
			result.Failed++
			uc.log.Warn().
				Str("tenant", tenantID).
				Str("purchase", order.ID).
				Int("line", line.Index).
				Err(err).
				Msg("línea de compra no aplicada")
		} else if applied {
			res.Applied = true
			result.Applied++
		} else {
			res.Skipped = true
			result.Skipped++
		}
		result.Lines = append(result.Lines, res)
	}

	if result.Failed == 0 {
		now := time.Now()
		if err := uc.purchaseRepo.MarkReceived(ctx, tenantID, order.ID, now); err != nil {
			return nil, err
		}
		order.Status = entity.PurchaseStatusReceived
		order.ReceivedAt = &now
		uc.log.Info().
			Str("tenant", tenantID).
			Str("purchase", order.ID).
			Int("applied", result.Applied).
			Int("skipped", result.Skipped).
			Msg("orden de compra recibida")
	}

	return result, nil
}

// GetPurchase devuelve la orden por id.
func (uc *IntakeUseCase) GetPurchase(ctx context.Context, tenantID, id string) (*entity.PurchaseOrder, error) {
	order, err := uc.purchaseRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// ListPurchases devuelve las órdenes del tenant (más recientes primero).
func (uc *IntakeUseCase) ListPurchases(ctx context.Context, tenantID string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	return uc.purchaseRepo.ListByTenant(ctx, tenantID, limit, offset)
}

func categoryFor(order *entity.PurchaseOrder) string {
	if order.Supplier != "" {
		return "compra:" + order.Supplier
	}
	return "compra"
}
