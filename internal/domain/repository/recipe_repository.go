package repository

import (
	"context"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// RecipeRepository define el puerto de lectura de recetas (DIP).
// El catálogo externo las crea y edita; el motor solo las lee para costear.
type RecipeRepository interface {
	// GetByID devuelve la receta con sus componentes. nil si no existe.
	GetByID(ctx context.Context, tenantID, id string) (*entity.Recipe, error)
}
