package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Intake de compras y motor de costeo.
	ErrInvalidLine              = errors.New("línea de compra inválida")
	ErrDuplicatePurchase        = errors.New("número de compra ya registrado")
	ErrUnknownIngredient        = errors.New("ingrediente no encontrado")
	ErrInsufficientStock        = errors.New("stock insuficiente")
	ErrInsufficientBatchStock   = errors.New("stock insuficiente en lotes rastreables")
	ErrCyclicRecipe             = errors.New("la receta contiene una referencia cíclica")
	ErrConcurrentUpdateConflict = errors.New("conflicto de actualización concurrente, reintentos agotados")
)
