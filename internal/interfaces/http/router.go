package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/costeo-api/internal/application/batches"
	"github.com/jhoicas/costeo-api/internal/application/inventory"
	"github.com/jhoicas/costeo-api/internal/application/purchasing"
	"github.com/jhoicas/costeo-api/internal/application/recipes"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	IntakeUC   *purchasing.IntakeUseCase
	MovementUC *inventory.MovementUseCase
	TrackerUC  *batches.TrackerUseCase
	ResolverUC *recipes.ResolverUseCase
}

// Router registra las rutas de la API. Todo el grupo /api exige el header
// X-Tenant-ID.
func Router(app *fiber.App, deps RouterDeps) {
	validate := validator.New()

	api := app.Group("/api", TenantMiddleware())

	// Compras
	purchases := api.Group("/purchases")
	purchaseHandler := NewPurchaseHandler(deps.IntakeUC, validate)
	purchases.Post("/", purchaseHandler.Submit)
	purchases.Get("/", purchaseHandler.List)
	purchases.Get("/:id", purchaseHandler.GetByID)
	purchases.Post("/:id/receive", purchaseHandler.Receive)

	// Inventario: ledger, movimientos manuales y reportes
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.MovementUC, validate)
	inv.Post("/movements", inventoryHandler.RegisterMovement)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Get("/low-stock", inventoryHandler.LowStock)
	inv.Get("/valuation", inventoryHandler.Valuation)

	// Lotes
	batchHandler := NewBatchHandler(deps.TrackerUC)
	inv.Get("/batches/expiring", batchHandler.Expiring)
	inv.Get("/ingredients/:id/batches", batchHandler.ListByIngredient)

	// Recetas
	recipesGroup := api.Group("/recipes")
	recipeHandler := NewRecipeHandler(deps.ResolverUC)
	recipesGroup.Get("/:id/cost", recipeHandler.Cost)
}
