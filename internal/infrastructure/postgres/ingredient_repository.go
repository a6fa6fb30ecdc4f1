package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var _ repository.IngredientRepository = (*IngredientRepo)(nil)

// IngredientRepo implementación de IngredientRepository sobre PostgreSQL
// (usable con pool o tx).
type IngredientRepo struct {
	q Querier
}

// NewIngredientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIngredientRepository(q Querier) *IngredientRepo {
	return &IngredientRepo{q: q}
}

const ingredientColumns = `id, tenant_id, name, unit, quantity_on_hand, unit_cost, min_stock, created_at, updated_at`

func scanIngredient(row pgx.Row) (*entity.Ingredient, error) {
	var i entity.Ingredient
	err := row.Scan(
		&i.ID, &i.TenantID, &i.Name, &i.Unit,
		&i.QuantityOnHand, &i.UnitCost, &i.MinStock,
		&i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// GetByID obtiene un ingrediente del tenant. nil si no existe.
func (r *IngredientRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Ingredient, error) {
	query := `
		SELECT ` + ingredientColumns + `
		FROM ingredients WHERE tenant_id = $1 AND id = $2`
	ing, err := scanIngredient(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ingredient: %w", err)
	}
	return ing, nil
}

// GetForUpdate obtiene el ingrediente y bloquea la fila (SELECT FOR UPDATE):
// serializa las mutaciones por (tenant, ingrediente) sin bloquear otros
// ingredientes.
func (r *IngredientRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Ingredient, error) {
	query := `
		SELECT ` + ingredientColumns + `
		FROM ingredients WHERE tenant_id = $1 AND id = $2
		FOR UPDATE`
	ing, err := scanIngredient(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ingredient for update: %w", err)
	}
	return ing, nil
}

// UpdateStock persiste cantidad y costo promedio del ingrediente.
func (r *IngredientRepo) UpdateStock(ctx context.Context, ing *entity.Ingredient) error {
	query := `
		UPDATE ingredients
		SET quantity_on_hand = $3, unit_cost = $4, updated_at = now()
		WHERE tenant_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query, ing.TenantID, ing.ID, ing.QuantityOnHand, ing.UnitCost)
	if err != nil {
		return fmt.Errorf("update ingredient stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update ingredient stock: fila no encontrada")
	}
	ing.UpdatedAt = time.Now()
	return nil
}

// ListByTenant lista los ingredientes del tenant, ordenados por nombre.
func (r *IngredientRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Ingredient, error) {
	query := `
		SELECT ` + ingredientColumns + `
		FROM ingredients WHERE tenant_id = $1
		ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()
	var list []*entity.Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		list = append(list, ing)
	}
	return list, rows.Err()
}

// ListBelowMinStock lista los ingredientes bajo su umbral mínimo de stock.
func (r *IngredientRepo) ListBelowMinStock(ctx context.Context, tenantID string) ([]*entity.Ingredient, error) {
	query := `
		SELECT ` + ingredientColumns + `
		FROM ingredients
		WHERE tenant_id = $1 AND min_stock IS NOT NULL AND quantity_on_hand < min_stock
		ORDER BY name`
	rows, err := r.q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list below min stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		list = append(list, ing)
	}
	return list, rows.Err()
}
