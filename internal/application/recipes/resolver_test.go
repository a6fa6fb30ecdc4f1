package recipes_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/costeo-api/internal/application/recipes"
	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del rollup de costos de recetas: resolución recursiva con los costos
// promedio vigentes, conversión de unidades y detección de ciclos.
// ──────────────────────────────────────────────────────────────────────────────

const testTenant = "tenant-1"

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newResolver(store *memory.Store) *recipes.ResolverUseCase {
	return recipes.NewResolverUseCase(
		memory.NewRecipeRepository(store),
		memory.NewIngredientRepository(store),
	)
}

func seedIngredient(store *memory.Store, id, name, unit, cost string) {
	store.SeedIngredient(&entity.Ingredient{
		ID:       id,
		TenantID: testTenant,
		Name:     name,
		Unit:     unit,
		UnitCost: dec(cost),
	})
}

func TestResolveCost_RecetaPlana(t *testing.T) {
	store := memory.NewStore()
	seedIngredient(store, "ing-pan", "Pan", "un", "0.50")
	seedIngredient(store, "ing-carne", "Carne", "kg", "10.00")
	seedIngredient(store, "ing-queso", "Queso", "kg", "8.00")
	store.SeedRecipe(&entity.Recipe{
		ID:       "rec-burger",
		TenantID: testTenant,
		Name:     "Hamburguesa",
		Servings: 4,
		Components: []entity.RecipeComponent{
			{IngredientID: "ing-pan", Quantity: dec("4"), Unit: "un"},
			{IngredientID: "ing-carne", Quantity: dec("2"), Unit: "kg"},
			{IngredientID: "ing-queso", Quantity: dec("1"), Unit: "kg"},
		},
	})

	cost, err := newResolver(store).ResolveCost(context.Background(), testTenant, "rec-burger")
	require.NoError(t, err)

	// 4*0.50 + 2*10.00 + 1*8.00 = 30.00; 30.00/4 porciones = 7.50
	assert.True(t, cost.TotalCost.Equal(dec("30")), "total esperado 30.00, obtuvo %s", cost.TotalCost)
	assert.True(t, cost.CostPerServing.Equal(dec("7.5")), "por porción esperado 7.50, obtuvo %s", cost.CostPerServing)
}

func TestResolveCost_ConvierteUnidades(t *testing.T) {
	store := memory.NewStore()
	seedIngredient(store, "ing-carne", "Carne", "kg", "10.00")
	seedIngredient(store, "ing-leche", "Leche", "l", "2.00")
	store.SeedRecipe(&entity.Recipe{
		ID:       "rec-salsa",
		TenantID: testTenant,
		Name:     "Salsa",
		Servings: 1,
		Components: []entity.RecipeComponent{
			{IngredientID: "ing-carne", Quantity: dec("500"), Unit: "g"},
			{IngredientID: "ing-leche", Quantity: dec("250"), Unit: "ml"},
		},
	})

	cost, err := newResolver(store).ResolveCost(context.Background(), testTenant, "rec-salsa")
	require.NoError(t, err)

	// 500g de carne a 10.00/kg = 5.00; 250ml de leche a 2.00/l = 0.50
	assert.True(t, cost.TotalCost.Equal(dec("5.5")), "total esperado 5.50, obtuvo %s", cost.TotalCost)
}

func TestResolveCost_UnidadIncompatibleSeRechaza(t *testing.T) {
	store := memory.NewStore()
	seedIngredient(store, "ing-leche", "Leche", "l", "2.00")
	store.SeedRecipe(&entity.Recipe{
		ID:       "rec-mal",
		TenantID: testTenant,
		Servings: 1,
		Components: []entity.RecipeComponent{
			{IngredientID: "ing-leche", Quantity: dec("500"), Unit: "g"},
		},
	})

	_, err := newResolver(store).ResolveCost(context.Background(), testTenant, "rec-mal")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "masa sobre un ingrediente en volumen no tiene conversión")
}

func TestResolveCost_SubRecetaAnidada(t *testing.T) {
	store := memory.NewStore()
	seedIngredient(store, "ing-tomate", "Tomate", "kg", "3.00")
	seedIngredient(store, "ing-pasta", "Pasta", "kg", "4.00")

	// Salsa: 10 porciones, 2kg de tomate = 6.00 total, 0.60 por porción.
	store.SeedRecipe(&entity.Recipe{
		ID:       "rec-salsa",
		TenantID: testTenant,
		Servings: 10,
		Components: []entity.RecipeComponent{
			{IngredientID: "ing-tomate", Quantity: dec("2"), Unit: "kg"},
		},
	})
	// Plato: 2 porciones; 0.5kg de pasta (2.00) + 3 porciones de salsa (1.80).
	store.SeedRecipe(&entity.Recipe{
		ID:       "rec-plato",
		TenantID: testTenant,
		Servings: 2,
		Components: []entity.RecipeComponent{
			{IngredientID: "ing-pasta", Quantity: dec("0.5"), Unit: "kg"},
			{RecipeID: "rec-salsa", Quantity: dec("3")},
		},
	})

	cost, err := newResolver(store).ResolveCost(context.Background(), testTenant, "rec-plato")
	require.NoError(t, err)

	assert.True(t, cost.TotalCost.Equal(dec("3.8")), "total esperado 3.80, obtuvo %s", cost.TotalCost)
	assert.True(t, cost.CostPerServing.Equal(dec("1.9")), "por porción esperado 1.90, obtuvo %s", cost.CostPerServing)
}

func TestResolveCost_CicloDirecto(t *testing.T) {
	store := memory.NewStore()
	store.SeedRecipe(&entity.Recipe{
		ID:       "rec-a",
		TenantID: testTenant,
		Servings: 1,
		Components: []entity.RecipeComponent{
			{RecipeID: "rec-a", Quantity: dec("1")},
		},
	})

	_, err := newResolver(store).ResolveCost(context.Background(), testTenant, "rec-a")
	assert.ErrorIs(t, err, domain.ErrCyclicRecipe)
}

func TestResolveCost_CicloTransitivo(t *testing.T) {
	store := memory.NewStore()
	store.SeedRecipe(&entity.Recipe{
		ID:       "rec-a",
		TenantID: testTenant,
		Servings: 1,
		Components: []entity.RecipeComponent{
			{RecipeID: "rec-b", Quantity: dec("1")},
		},
	})
	store.SeedRecipe(&entity.Recipe{
		ID:       "rec-b",
		TenantID: testTenant,
		Servings: 1,
		Components: []entity.RecipeComponent{
			{RecipeID: "rec-a", Quantity: dec("1")},
		},
	})

	_, err := newResolver(store).ResolveCost(context.Background(), testTenant, "rec-a")
	assert.ErrorIs(t, err, domain.ErrCyclicRecipe, "el ciclo A → B → A se detecta antes de desbordar la pila")
}

func TestResolveCost_DiamanteNoEsCiclo(t *testing.T) {
	store := memory.NewStore()
	seedIngredient(store, "ing-sal", "Sal", "kg", "1.00")

	// base aparece dos veces como sub-receta (diamante): es válido, solo el
	// ciclo verdadero se rechaza.
	store.SeedRecipe(&entity.Recipe{
		ID:       "rec-base",
		TenantID: testTenant,
		Servings: 1,
		Components: []entity.RecipeComponent{
			{IngredientID: "ing-sal", Quantity: dec("1"), Unit: "kg"},
		},
	})
	store.SeedRecipe(&entity.Recipe{
		ID:       "rec-top",
		TenantID: testTenant,
		Servings: 1,
		Components: []entity.RecipeComponent{
			{RecipeID: "rec-base", Quantity: dec("1")},
			{RecipeID: "rec-base", Quantity: dec("2")},
		},
	})

	cost, err := newResolver(store).ResolveCost(context.Background(), testTenant, "rec-top")
	require.NoError(t, err)
	assert.True(t, cost.TotalCost.Equal(dec("3")), "1 + 2 porciones de la base a 1.00, obtuvo %s", cost.TotalCost)
}

func TestResolveCost_RecetaInexistente(t *testing.T) {
	store := memory.NewStore()

	_, err := newResolver(store).ResolveCost(context.Background(), testTenant, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveCost_IngredienteInexistente(t *testing.T) {
	store := memory.NewStore()
	store.SeedRecipe(&entity.Recipe{
		ID:       "rec-a",
		TenantID: testTenant,
		Servings: 1,
		Components: []entity.RecipeComponent{
			{IngredientID: "no-existe", Quantity: dec("1")},
		},
	})

	_, err := newResolver(store).ResolveCost(context.Background(), testTenant, "rec-a")
	assert.ErrorIs(t, err, domain.ErrUnknownIngredient)
}

func TestResolveCost_RedondeoSoloAlFinal(t *testing.T) {
	store := memory.NewStore()
	seedIngredient(store, "ing-azafran", "Azafrán", "g", "0.3333")
	store.SeedRecipe(&entity.Recipe{
		ID:       "rec-a",
		TenantID: testTenant,
		Servings: 3,
		Components: []entity.RecipeComponent{
			{IngredientID: "ing-azafran", Quantity: dec("10"), Unit: "g"},
		},
	})

	cost, err := newResolver(store).ResolveCost(context.Background(), testTenant, "rec-a")
	require.NoError(t, err)

	// 10 * 0.3333 = 3.333 → total 3.33; por porción 3.333/3 = 1.111 → 1.11
	assert.True(t, cost.TotalCost.Equal(dec("3.33")), "obtuvo %s", cost.TotalCost)
	assert.True(t, cost.CostPerServing.Equal(dec("1.11")), "obtuvo %s", cost.CostPerServing)
}
