package costing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/costeo-api/internal/domain/costing"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del orden FIFO y del consumo greedy sobre lotes.
// Orden: vencimiento ascendente con nulos al final; a igual vencimiento (o
// ambos sin vencimiento), recepción ascendente.
// ──────────────────────────────────────────────────────────────────────────────

func batch(id string, qty string, expiry *time.Time, receivedAt time.Time) *entity.Batch {
	return &entity.Batch{
		ID:         id,
		Quantity:   dec(qty),
		UnitCost:   dec("1"),
		ExpiryDate: expiry,
		ReceivedAt: receivedAt,
	}
}

func datePtr(t time.Time) *time.Time { return &t }

func TestSortFIFO_VencimientoPrimeroNulosAlFinal(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sinVencimiento := batch("sin-venc", "1", nil, base)
	venceTarde := batch("tarde", "1", datePtr(base.AddDate(0, 2, 0)), base.AddDate(0, 0, 1))
	venceTemprano := batch("temprano", "1", datePtr(base.AddDate(0, 1, 0)), base.AddDate(0, 0, 2))

	list := []*entity.Batch{sinVencimiento, venceTarde, venceTemprano}
	costing.SortFIFO(list)

	require.Len(t, list, 3)
	assert.Equal(t, "temprano", list[0].ID, "el vencimiento más próximo va primero")
	assert.Equal(t, "tarde", list[1].ID)
	assert.Equal(t, "sin-venc", list[2].ID, "los lotes sin vencimiento van al final")
}

func TestSortFIFO_EmpateDeVencimientoDesempataPorRecepcion(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expiry := datePtr(base.AddDate(0, 1, 0))
	segundo := batch("segundo", "1", expiry, base.AddDate(0, 0, 5))
	primero := batch("primero", "1", expiry, base)

	list := []*entity.Batch{segundo, primero}
	costing.SortFIFO(list)

	assert.Equal(t, "primero", list[0].ID, "a igual vencimiento gana la recepción más antigua")
}

func TestConsumeFIFO_ConsumeEnOrdenYCruzaLotes(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b1 := batch("b1", "3", datePtr(base.AddDate(0, 1, 0)), base)
	b2 := batch("b2", "5", datePtr(base.AddDate(0, 2, 0)), base)

	consumed, remaining := costing.ConsumeFIFO([]*entity.Batch{b2, b1}, dec("4"))

	require.Len(t, consumed, 2, "4 unidades cruzan del primer lote al segundo")
	assert.Equal(t, "b1", consumed[0].BatchID)
	assert.True(t, consumed[0].Quantity.Equal(dec("3")), "el primer lote se agota completo")
	assert.Equal(t, "b2", consumed[1].BatchID)
	assert.True(t, consumed[1].Quantity.Equal(dec("1")))
	assert.True(t, remaining.IsZero(), "no debe quedar faltante")

	// Los lotes quedan mutados: b1 en cero (no se elimina), b2 con 4.
	assert.True(t, b1.Quantity.IsZero(), "un lote agotado queda en cero, nunca se elimina")
	assert.True(t, b2.Quantity.Equal(dec("4")))
}

func TestConsumeFIFO_FaltanteCuandoLotesNoAlcanzan(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b1 := batch("b1", "2", nil, base)

	consumed, remaining := costing.ConsumeFIFO([]*entity.Batch{b1}, dec("5"))

	require.Len(t, consumed, 1)
	assert.True(t, consumed[0].Quantity.Equal(dec("2")))
	assert.True(t, remaining.Equal(dec("3")), "el faltante es la cantidad no cubierta por lotes")
}

func TestConsumeFIFO_IgnoraLotesAgotados(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	agotado := batch("agotado", "0", nil, base)
	vivo := batch("vivo", "3", nil, base.AddDate(0, 0, 1))

	consumed, remaining := costing.ConsumeFIFO([]*entity.Batch{agotado, vivo}, decimal.NewFromInt(2))

	require.Len(t, consumed, 1)
	assert.Equal(t, "vivo", consumed[0].BatchID, "los lotes en cero no participan del consumo")
	assert.True(t, remaining.IsZero())
}
