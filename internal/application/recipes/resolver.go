// Package recipes implementa el rollup de costo de recetas: cálculo
// recursivo del costo monetario de una receta a partir de los costos
// promedio vigentes de sus ingredientes y de sus sub-recetas intermedias.
package recipes

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain"
	domcosting "github.com/jhoicas/costeo-api/internal/domain/costing"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

// unitFactors convierte unidades de componente a la unidad base del
// ingrediente. Tabla fija: masa en kg, volumen en l, unidades sueltas en un.
var unitFactors = map[string]map[string]decimal.Decimal{
	"g":  {"kg": decimal.NewFromFloat(0.001), "g": decimal.NewFromInt(1)},
	"mg": {"kg": decimal.NewFromFloat(0.000001), "g": decimal.NewFromFloat(0.001), "mg": decimal.NewFromInt(1)},
	"kg": {"kg": decimal.NewFromInt(1), "g": decimal.NewFromInt(1000)},
	"ml": {"l": decimal.NewFromFloat(0.001), "ml": decimal.NewFromInt(1)},
	"l":  {"l": decimal.NewFromInt(1), "ml": decimal.NewFromInt(1000)},
	"un": {"un": decimal.NewFromInt(1)},
}

// ResolverUseCase resuelve costos de recetas. Lectura pura: no toma locks ni
// cachea entre llamadas — los costos de ingredientes pueden cambiar entre
// lecturas y la corrección vale más que la estabilidad. Un caller que
// necesite un costo estable debe resolver una vez y persistir el snapshot
// junto a su transacción.
type ResolverUseCase struct {
	recipeRepo     repository.RecipeRepository
	ingredientRepo repository.IngredientRepository
}

// NewResolverUseCase construye el resolver.
func NewResolverUseCase(recipeRepo repository.RecipeRepository, ingredientRepo repository.IngredientRepository) *ResolverUseCase {
	return &ResolverUseCase{recipeRepo: recipeRepo, ingredientRepo: ingredientRepo}
}

// ResolveCost calcula el costo total y por porción de la receta, resolviendo
// sub-recetas recursivamente. Un ciclo directo o transitivo se rechaza con
// ErrCyclicRecipe mediante el conjunto de recetas en visita — determinista,
// sin depender del límite de pila.
func (uc *ResolverUseCase) ResolveCost(ctx context.Context, tenantID, recipeID string) (*entity.RecipeCost, error) {
	visiting := make(map[string]struct{})
	total, servings, err := uc.resolve(ctx, tenantID, recipeID, visiting)
	if err != nil {
		return nil, err
	}
	perServing := total.Div(decimal.NewFromInt(int64(servings))).RoundBank(domcosting.MoneyScale)
	return &entity.RecipeCost{
		RecipeID:       recipeID,
		TotalCost:      domcosting.Money(total),
		CostPerServing: perServing,
		ComputedAt:     time.Now(),
	}, nil
}

// resolve devuelve el costo total exacto (sin redondear) y las porciones.
func (uc *ResolverUseCase) resolve(ctx context.Context, tenantID, recipeID string, visiting map[string]struct{}) (decimal.Decimal, int, error) {
	if _, ok := visiting[recipeID]; ok {
		return decimal.Zero, 0, domain.ErrCyclicRecipe
	}
	visiting[recipeID] = struct{}{}
	defer delete(visiting, recipeID)

	recipe, err := uc.recipeRepo.GetByID(ctx, tenantID, recipeID)
	if err != nil {
		return decimal.Zero, 0, err
	}
	if recipe == nil {
		return decimal.Zero, 0, domain.ErrNotFound
	}
	servings := recipe.Servings
	if servings < 1 {
		servings = 1
	}

	total := decimal.Zero
	for _, comp := range recipe.Components {
		if comp.IsRecipe() {
			subTotal, subServings, err := uc.resolve(ctx, tenantID, comp.RecipeID, visiting)
			if err != nil {
				return decimal.Zero, 0, err
			}
			// El componente consume N porciones de la sub-receta.
			perServing := subTotal.Div(decimal.NewFromInt(int64(subServings)))
			total = total.Add(comp.Quantity.Mul(perServing))
			continue
		}

		ing, err := uc.ingredientRepo.GetByID(ctx, tenantID, comp.IngredientID)
		if err != nil {
			return decimal.Zero, 0, err
		}
		if ing == nil {
			return decimal.Zero, 0, domain.ErrUnknownIngredient
		}
		qty, err := convertUnit(comp.Quantity, comp.Unit, ing.Unit)
		if err != nil {
			return decimal.Zero, 0, err
		}
		total = total.Add(qty.Mul(ing.UnitCost))
	}
	return total, servings, nil
}

// convertUnit convierte una cantidad a la unidad base del ingrediente según
// la tabla fija. Unidad vacía o igual a la base pasa sin conversión.
func convertUnit(qty decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == "" || from == to {
		return qty, nil
	}
	if factors, ok := unitFactors[from]; ok {
		if f, ok := factors[to]; ok {
			return qty.Mul(f), nil
		}
	}
	return decimal.Zero, domain.ErrInvalidInput
}
