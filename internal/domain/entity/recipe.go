package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe representa una receta: componentes (ingredientes y/o sub-recetas)
// y porciones. Los campos de costo son derivados: el Recipe Cost Resolver los
// recalcula en cada lectura; nunca son fuente de verdad sin su timestamp.
type Recipe struct {
	ID         string
	TenantID   string
	Name       string
	Servings   int // > 0, garantizado por la validación del catálogo
	Components []RecipeComponent
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RecipeComponent es un componente de receta: referencia a un ingrediente
// (con cantidad y unidad) o a otra receta (intermedia) con cantidad en porciones.
// Exactamente uno de IngredientID / RecipeID está presente.
type RecipeComponent struct {
	IngredientID string
	RecipeID     string
	Quantity     decimal.Decimal
	Unit         string // unidad de la cantidad cuando referencia un ingrediente
}

// IsRecipe indica si el componente referencia una sub-receta.
func (c RecipeComponent) IsRecipe() bool {
	return c.RecipeID != ""
}

// RecipeCost es el resultado derivado de una resolución de costo.
// ComputedAt marca el instante del cálculo: los costos de ingredientes pueden
// cambiar entre lecturas (lectura comprometida, no snapshot).
type RecipeCost struct {
	RecipeID       string
	TotalCost      decimal.Decimal
	CostPerServing decimal.Decimal
	ComputedAt     time.Time
}
