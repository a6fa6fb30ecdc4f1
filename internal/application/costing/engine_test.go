package costing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcosting "github.com/jhoicas/costeo-api/internal/application/costing"
	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
	"github.com/jhoicas/costeo-api/internal/infrastructure/memory"
	"github.com/jhoicas/costeo-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del motor de costeo sobre el store en memoria: cada mutación debe
// dejar exactamente una entrada en el ledger dentro de la misma transacción.
// ──────────────────────────────────────────────────────────────────────────────

const (
	testTenant     = "tenant-1"
	testIngredient = "00000000-0000-0000-0000-0000000000aa"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

func newEngine(t *testing.T) (*appcosting.Engine, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.SeedIngredient(&entity.Ingredient{
		ID:       testIngredient,
		TenantID: testTenant,
		Name:     "Harina",
		Unit:     "kg",
	})
	engine := appcosting.NewEngine(memory.NewTxRunner(store), appcosting.RetryConfig{
		MaxRetries: 2,
		Backoff:    time.Millisecond,
	}, testLogger())
	return engine, store
}

func ledgerOf(t *testing.T, store *memory.Store, ingredientID string) []*entity.StockMovement {
	t.Helper()
	repo := memory.NewStockMovementRepository(store)
	list, err := repo.ListByIngredient(context.Background(), testTenant, ingredientID, nil, nil, 100, 0)
	require.NoError(t, err)
	return list
}

func TestApplyReceipt_ActualizaPromedioYLedger(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()

	level, err := engine.ApplyReceipt(ctx, appcosting.ReceiptInput{
		TenantID:     testTenant,
		IngredientID: testIngredient,
		Quantity:     dec("10"),
		UnitCost:     dec("2.00"),
		OccurredAt:   time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, level.QuantityOnHand.Equal(dec("10")))
	assert.True(t, level.UnitCost.Equal(dec("2")))

	level, err = engine.ApplyReceipt(ctx, appcosting.ReceiptInput{
		TenantID:     testTenant,
		IngredientID: testIngredient,
		Quantity:     dec("10"),
		UnitCost:     dec("4.00"),
		OccurredAt:   time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, level.QuantityOnHand.Equal(dec("20")))
	assert.True(t, level.UnitCost.Equal(dec("3")), "10@2.00 + 10@4.00 promedian 3, obtuvo %s", level.UnitCost)

	ledger := ledgerOf(t, store, testIngredient)
	require.Len(t, ledger, 2, "cada recepción deja exactamente una entrada en el ledger")
	assert.Equal(t, entity.MovementTypeEntrada, ledger[0].Type)
	assert.True(t, ledger[1].Value.Equal(dec("40")), "el valor de la entrada es cantidad*costo entrante")
}

func TestApplyReceipt_GeneraLoteSoloConLoteOVencimiento(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()

	_, err := engine.ApplyReceipt(ctx, appcosting.ReceiptInput{
		TenantID:     testTenant,
		IngredientID: testIngredient,
		Quantity:     dec("5"),
		UnitCost:     dec("1.00"),
		OccurredAt:   time.Now(),
	})
	require.NoError(t, err)

	_, err = engine.ApplyReceipt(ctx, appcosting.ReceiptInput{
		TenantID:     testTenant,
		IngredientID: testIngredient,
		Quantity:     dec("5"),
		UnitCost:     dec("1.00"),
		Lot:          "L-001",
		OccurredAt:   time.Now(),
	})
	require.NoError(t, err)

	batches, err := memory.NewBatchRepository(store).ListByIngredient(ctx, testTenant, testIngredient)
	require.NoError(t, err)
	require.Len(t, batches, 1, "solo la recepción con lote genera un lote rastreable")
	assert.Equal(t, "L-001", batches[0].Lot)
}

func TestApplyReceipt_ReferenciaDuplicadaNoDuplicaStock(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()

	in := appcosting.ReceiptInput{
		TenantID:     testTenant,
		IngredientID: testIngredient,
		Quantity:     dec("10"),
		UnitCost:     dec("2.00"),
		Reference:    "purchase:po-1:0",
		OccurredAt:   time.Now(),
	}
	level, err := engine.ApplyReceipt(ctx, in)
	require.NoError(t, err)
	assert.True(t, level.QuantityOnHand.Equal(dec("10")))

	// Reintento con la misma referencia: estado vigente, sin nueva entrada.
	level, err = engine.ApplyReceipt(ctx, in)
	require.NoError(t, err)
	assert.True(t, level.QuantityOnHand.Equal(dec("10")), "la referencia duplicada no debe duplicar stock")
	assert.Len(t, ledgerOf(t, store, testIngredient), 1)
}

func TestApplyReceipt_IngredienteDesconocido(t *testing.T) {
	engine, _ := newEngine(t)

	_, err := engine.ApplyReceipt(context.Background(), appcosting.ReceiptInput{
		TenantID:     testTenant,
		IngredientID: "no-existe",
		Quantity:     dec("1"),
		UnitCost:     dec("1"),
		OccurredAt:   time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrUnknownIngredient)
}

func TestApplyReceipt_EntradaInvalida(t *testing.T) {
	engine, _ := newEngine(t)

	_, err := engine.ApplyReceipt(context.Background(), appcosting.ReceiptInput{
		TenantID:     testTenant,
		IngredientID: testIngredient,
		Quantity:     decimal.Zero,
		UnitCost:     dec("1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero se rechaza antes de tocar el store")
}

func TestApplyIssue_BajaCantidadSinCambiarCosto(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()

	_, err := engine.ApplyReceipt(ctx, appcosting.ReceiptInput{
		TenantID: testTenant, IngredientID: testIngredient,
		Quantity: dec("10"), UnitCost: dec("3.00"), OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	level, err := engine.ApplyIssue(ctx, appcosting.IssueInput{
		TenantID:     testTenant,
		IngredientID: testIngredient,
		Quantity:     dec("4"),
		OccurredAt:   time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, level.QuantityOnHand.Equal(dec("6")))
	assert.True(t, level.UnitCost.Equal(dec("3")), "una salida no cambia el costo promedio")

	ledger := ledgerOf(t, store, testIngredient)
	require.Len(t, ledger, 2)
	saida := ledger[1]
	assert.Equal(t, entity.MovementTypeSaida, saida.Type)
	assert.True(t, saida.Quantity.Equal(dec("-4")), "la salida se registra con cantidad negativa")
	assert.True(t, saida.Value.Equal(dec("-12")), "valorizada al costo promedio vigente")
}

func TestApplyIssue_StockInsuficienteNoMuta(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()

	_, err := engine.ApplyReceipt(ctx, appcosting.ReceiptInput{
		TenantID: testTenant, IngredientID: testIngredient,
		Quantity: dec("3"), UnitCost: dec("1.00"), OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	_, err = engine.ApplyIssue(ctx, appcosting.IssueInput{
		TenantID:     testTenant,
		IngredientID: testIngredient,
		Quantity:     dec("5"),
		OccurredAt:   time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Ni cantidad ni ledger cambiaron: el stock nunca queda negativo.
	ing, err := memory.NewIngredientRepository(store).GetByID(ctx, testTenant, testIngredient)
	require.NoError(t, err)
	assert.True(t, ing.QuantityOnHand.Equal(dec("3")))
	assert.Len(t, ledgerOf(t, store, testIngredient), 1, "la salida rechazada no deja entrada en el ledger")
}

func TestApplyIssue_ConsumeLotesFIFO(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, in := range []appcosting.ReceiptInput{
		{Quantity: dec("3"), UnitCost: dec("1.00"), Lot: "L-A"},
		{Quantity: dec("5"), UnitCost: dec("1.00"), Lot: "L-B"},
	} {
		in.TenantID = testTenant
		in.IngredientID = testIngredient
		in.OccurredAt = base.AddDate(0, 0, i)
		_, err := engine.ApplyReceipt(ctx, in)
		require.NoError(t, err)
	}

	_, err := engine.ApplyIssue(ctx, appcosting.IssueInput{
		TenantID:     testTenant,
		IngredientID: testIngredient,
		Quantity:     dec("4"),
		OccurredAt:   base.AddDate(0, 0, 2),
	})
	require.NoError(t, err)

	batches, err := memory.NewBatchRepository(store).ListByIngredient(ctx, testTenant, testIngredient)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.True(t, batches[0].Quantity.IsZero(), "el lote más antiguo se agota primero y queda en cero")
	assert.True(t, batches[1].Quantity.Equal(dec("4")))
}

func TestApplyAdjustment_SetDirectoRegistraDelta(t *testing.T) {
	engine, store := newEngine(t)
	ctx := context.Background()

	_, err := engine.ApplyReceipt(ctx, appcosting.ReceiptInput{
		TenantID: testTenant, IngredientID: testIngredient,
		Quantity: dec("10"), UnitCost: dec("2.00"), OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	level, err := engine.ApplyAdjustment(ctx, appcosting.AdjustmentInput{
		TenantID:     testTenant,
		IngredientID: testIngredient,
		NewQuantity:  dec("7.5"),
		Category:     "conteo físico",
		OccurredAt:   time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, level.QuantityOnHand.Equal(dec("7.5")), "el ajuste fija la cantidad, no suma un delta")
	assert.True(t, level.UnitCost.Equal(dec("2")), "el ajuste no toca el costo promedio")

	ledger := ledgerOf(t, store, testIngredient)
	require.Len(t, ledger, 2)
	ajuste := ledger[1]
	assert.Equal(t, entity.MovementTypeAjuste, ajuste.Type)
	assert.True(t, ajuste.Quantity.Equal(dec("-2.5")), "el ledger registra el delta del ajuste")
	assert.True(t, ajuste.Value.Equal(dec("-5")))
}

func TestApplyAdjustment_NegativoSeRechaza(t *testing.T) {
	engine, _ := newEngine(t)

	_, err := engine.ApplyAdjustment(context.Background(), appcosting.AdjustmentInput{
		TenantID:     testTenant,
		IngredientID: testIngredient,
		NewQuantity:  dec("-1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// conflictRunner simula un store que siempre pierde la serialización.
type conflictRunner struct{ calls int }

func (r *conflictRunner) Run(_ context.Context, _ func(
	repository.StockMovementRepository,
	repository.IngredientRepository,
	repository.BatchRepository,
	repository.PurchaseOrderRepository,
) error) error {
	r.calls++
	return domain.ErrConflict
}

func TestWithRetry_AgotadoReportaConflictoConcurrente(t *testing.T) {
	runner := &conflictRunner{}
	engine := appcosting.NewEngine(runner, appcosting.RetryConfig{
		MaxRetries: 2,
		Backoff:    time.Millisecond,
	}, testLogger())

	_, err := engine.ApplyReceipt(context.Background(), appcosting.ReceiptInput{
		TenantID:     testTenant,
		IngredientID: testIngredient,
		Quantity:     dec("1"),
		UnitCost:     dec("1"),
		OccurredAt:   time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdateConflict)
	assert.Equal(t, 3, runner.calls, "intento inicial más MaxRetries reintentos")
}
