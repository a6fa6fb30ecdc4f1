package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// RecipeCostResponse costo derivado de una receta. ComputedAt marca el
// instante del cálculo: los costos vigentes pueden cambiar entre lecturas.
type RecipeCostResponse struct {
	RecipeID       string          `json:"recipe_id"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	CostPerServing decimal.Decimal `json:"cost_per_serving"`
	ComputedAt     time.Time       `json:"computed_at"`
}

// ToRecipeCostResponse mapea el resultado del resolver.
func ToRecipeCostResponse(c *entity.RecipeCost) RecipeCostResponse {
	return RecipeCostResponse{
		RecipeID:       c.RecipeID,
		TotalCost:      c.TotalCost,
		CostPerServing: c.CostPerServing,
		ComputedAt:     c.ComputedAt,
	}
}
