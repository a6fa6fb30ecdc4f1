package costing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// BatchConsumption describe cuánto se consumió de un lote durante una salida FIFO.
type BatchConsumption struct {
	BatchID  string
	Lot      string
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// SortFIFO ordena los lotes para consumo: vencimiento ascendente (los lotes
// sin vencimiento al final) y, a igual vencimiento, recepción ascendente.
func SortFIFO(batches []*entity.Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		bi, bj := batches[i], batches[j]
		switch {
		case bi.ExpiryDate == nil && bj.ExpiryDate == nil:
			return bi.ReceivedAt.Before(bj.ReceivedAt)
		case bi.ExpiryDate == nil:
			return false
		case bj.ExpiryDate == nil:
			return true
		case bi.ExpiryDate.Equal(*bj.ExpiryDate):
			return bi.ReceivedAt.Before(bj.ReceivedAt)
		default:
			return bi.ExpiryDate.Before(*bj.ExpiryDate)
		}
	})
}

// ConsumeFIFO consume greedy la cantidad pedida sobre los lotes en orden FIFO,
// mutando sus cantidades. Devuelve los consumos por lote y el faltante
// (cero cuando los lotes alcanzaron). Los lotes llegan a cero, nunca se
// eliminan: la decisión de tratar el faltante como error es del caller,
// porque la cantidad agregada puede exceder la rastreable cuando datos
// antiguos no llevan lote.
func ConsumeFIFO(batches []*entity.Batch, quantity decimal.Decimal) ([]BatchConsumption, decimal.Decimal) {
	SortFIFO(batches)

	remaining := quantity
	var consumed []BatchConsumption
	for _, b := range batches {
		if !remaining.GreaterThan(decimal.Zero) {
			break
		}
		if !b.HasStock() {
			continue
		}
		took := b.Deduct(remaining)
		remaining = remaining.Sub(took)
		consumed = append(consumed, BatchConsumption{
			BatchID:  b.ID,
			Lot:      b.Lot,
			Quantity: took,
			UnitCost: b.UnitCost,
		})
	}
	return consumed, remaining
}
