package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo implementación de solo lectura de RecipeRepository sobre
// PostgreSQL: el catálogo externo es quien escribe las recetas.
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

// GetByID obtiene la receta con sus componentes. nil si no existe.
func (r *RecipeRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Recipe, error) {
	query := `
		SELECT id, tenant_id, name, servings, created_at, updated_at
		FROM recipes WHERE tenant_id = $1 AND id = $2`
	var recipe entity.Recipe
	err := r.q.QueryRow(ctx, query, tenantID, id).Scan(
		&recipe.ID, &recipe.TenantID, &recipe.Name, &recipe.Servings,
		&recipe.CreatedAt, &recipe.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	compQuery := `
		SELECT COALESCE(ingredient_id, ''), COALESCE(sub_recipe_id, ''), quantity, COALESCE(unit, '')
		FROM recipe_components WHERE recipe_id = $1
		ORDER BY position ASC`
	rows, err := r.q.Query(ctx, compQuery, id)
	if err != nil {
		return nil, fmt.Errorf("load recipe components: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c entity.RecipeComponent
		if err := rows.Scan(&c.IngredientID, &c.RecipeID, &c.Quantity, &c.Unit); err != nil {
			return nil, fmt.Errorf("scan recipe component: %w", err)
		}
		recipe.Components = append(recipe.Components, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &recipe, nil
}
