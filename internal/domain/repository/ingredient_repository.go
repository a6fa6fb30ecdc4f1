package repository

import (
	"context"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// IngredientRepository define el puerto de persistencia para Ingredient (DIP).
// El catálogo externo crea los ingredientes; el motor solo los lee y muta
// QuantityOnHand/UnitCost vía UpdateStock.
type IngredientRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*entity.Ingredient, error)
	// GetForUpdate obtiene el ingrediente y bloquea la fila para mutación
	// (SELECT FOR UPDATE en Postgres). Serializa las mutaciones por
	// (tenant, ingrediente): dos compras sobre ingredientes distintos avanzan
	// en paralelo.
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Ingredient, error)
	// UpdateStock persiste QuantityOnHand y UnitCost del ingrediente.
	UpdateStock(ctx context.Context, ing *entity.Ingredient) error
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Ingredient, error)
	// ListBelowMinStock devuelve los ingredientes bajo su umbral de reposición.
	ListBelowMinStock(ctx context.Context, tenantID string) ([]*entity.Ingredient, error)
}
