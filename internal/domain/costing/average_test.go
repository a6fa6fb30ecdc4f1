package costing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/costeo-api/internal/domain/costing"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del costo promedio ponderado. La fórmula es el corazón del motor:
// NuevoCosto = ((StockActual*CostoActual) + (CantEntrada*CostoEntrada)) / Total,
// con redondeo half-even a 4 decimales aplicado solo al promedio final.
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Caso canónico: 10 unidades a 2.00 más 10 unidades a 4.00 promedian 3.00.
func TestAverageCost_PromedioSimple(t *testing.T) {
	got := costing.AverageCost(dec("10"), dec("2.00"), dec("10"), dec("4.00"))
	assert.True(t, got.Equal(dec("3")), "el promedio de 10@2.00 + 10@4.00 debe ser 3, obtuvo %s", got)
}

// El promedio solo depende del estado acumulado, no del orden de llegada:
// (10@2 luego 10@4) y (10@4 luego 10@2) terminan en el mismo costo.
func TestAverageCost_IndependienteDelOrden(t *testing.T) {
	a1 := costing.AverageCost(dec("0"), dec("0"), dec("10"), dec("2.00"))
	a2 := costing.AverageCost(dec("10"), a1, dec("10"), dec("4.00"))

	b1 := costing.AverageCost(dec("0"), dec("0"), dec("10"), dec("4.00"))
	b2 := costing.AverageCost(dec("10"), b1, dec("10"), dec("2.00"))

	assert.True(t, a2.Equal(b2), "el costo final no debe depender del orden: %s vs %s", a2, b2)
}

// Recepción sobre stock cero: el promedio es el costo de la entrada.
func TestAverageCost_StockCeroTomaCostoEntrada(t *testing.T) {
	got := costing.AverageCost(decimal.Zero, decimal.Zero, dec("5"), dec("1.2345"))
	assert.True(t, got.Equal(dec("1.2345")), "con stock cero el promedio es el costo entrante, obtuvo %s", got)
}

// Cantidad resultante no positiva: se conserva el promedio anterior.
func TestAverageCost_CantidadNoPositivaConservaCosto(t *testing.T) {
	got := costing.AverageCost(decimal.Zero, dec("7.50"), decimal.Zero, dec("99"))
	assert.True(t, got.Equal(dec("7.50")), "sin cantidad el promedio anterior se conserva, obtuvo %s", got)
}

// Redondeo half-even en el cuarto decimal: 1/3 → 0.3333 y el empate exacto
// 0.00005 baja al par (0.0000) en vez de subir siempre.
func TestAverageCost_RedondeoHalfEven(t *testing.T) {
	// 1 unidad a 0 + 2 unidades a 0.50 = 1.00 / 3 = 0.3333...
	got := costing.AverageCost(dec("1"), dec("0"), dec("2"), dec("0.50"))
	assert.True(t, got.Equal(dec("0.3333")), "1.00/3 redondeado a 4 decimales debe ser 0.3333, obtuvo %s", got)

	// Empate exacto: 0.00005 con half-even redondea al par 0.0000.
	tie := costing.AverageCost(dec("0"), dec("0"), dec("1"), dec("0.00005"))
	assert.True(t, tie.Equal(dec("0")), "0.00005 debe redondear al par (0.0000), obtuvo %s", tie)

	// Y 0.00015 redondea al par 0.0002.
	tie2 := costing.AverageCost(dec("0"), dec("0"), dec("1"), dec("0.00015"))
	assert.True(t, tie2.Equal(dec("0.0002")), "0.00015 debe redondear al par (0.0002), obtuvo %s", tie2)
}

// Muchas recepciones pequeñas no acumulan deriva gruesa: 100 entradas de
// 0.1 unidades a 1.00 sobre stock cero dejan el costo exactamente en 1.
func TestAverageCost_SinDerivaEnRecepcionesPequenas(t *testing.T) {
	qty := decimal.Zero
	cost := decimal.Zero
	for i := 0; i < 100; i++ {
		cost = costing.AverageCost(qty, cost, dec("0.1"), dec("1.00"))
		qty = qty.Add(dec("0.1"))
	}
	assert.True(t, cost.Equal(dec("1")), "100 recepciones homogéneas a 1.00 deben dejar el costo en 1, obtuvo %s", cost)
}

func TestQuantity_NormalizaEscala(t *testing.T) {
	assert.True(t, costing.Quantity(dec("1.23456")).Equal(dec("1.2346")))
	assert.True(t, costing.Money(dec("1.005")).Equal(dec("1")), "half-even: 1.005 baja al par 1.00")
}
