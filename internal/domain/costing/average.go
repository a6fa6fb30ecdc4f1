// Package costing implementa la lógica de costo promedio ponderado
// (servicio de dominio, sin estado ni dependencias de infraestructura).
package costing

import "github.com/shopspring/decimal"

// Escalas fijas de la aritmética decimal del motor.
// Cantidades a 4 decimales, montos monetarios a 2; el costo unitario se
// mantiene a 4 (es una tasa, no un monto) para no acumular deriva de
// redondeo a través de muchas recepciones pequeñas.
const (
	QuantityScale = 4
	MoneyScale    = 2
	CostScale     = 4
)

// AverageCost recalcula el costo promedio ponderado ante una recepción.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// El redondeo (half-even) se aplica únicamente aquí, al computar el nuevo
// promedio; las sumas y productos intermedios son exactos.
// Si la cantidad resultante no es positiva, el promedio anterior se conserva.
func AverageCost(qtyOnHand, unitCost, inQty, inCost decimal.Decimal) decimal.Decimal {
	newQty := qtyOnHand.Add(inQty)
	if newQty.LessThanOrEqual(decimal.Zero) {
		return unitCost
	}
	priorValue := qtyOnHand.Mul(unitCost)
	incomingValue := inQty.Mul(inCost)
	return priorValue.Add(incomingValue).Div(newQty).RoundBank(CostScale)
}

// Quantity normaliza una cantidad a la escala fija del motor.
func Quantity(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(QuantityScale)
}

// Money normaliza un monto monetario a la escala fija del motor.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(MoneyScale)
}
