package http

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/costeo-api/internal/application/dto"
	"github.com/jhoicas/costeo-api/internal/application/inventory"
)

// InventoryHandler maneja los movimientos manuales y las consultas de reporte.
type InventoryHandler struct {
	uc       *inventory.MovementUseCase
	validate *validator.Validate
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.MovementUseCase, validate *validator.Validate) *InventoryHandler {
	return &InventoryHandler{uc: uc, validate: validate}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento manual de stock
// @Description  entrada exige unit_cost; ajuste fija la cantidad absoluta;
//
//	transferencia exige origin y destination.
//
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID  header  string  true  "Tenant"
// @Param        body  body  dto.RegisterMovementRequest  true  "ingredient_id, type, quantity"
// @Success      201   {object}  dto.StockLevelResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	level, err := h.uc.Register(c.Context(), tenantID, inventory.MovementInput{
		IngredientID: in.IngredientID,
		Type:         in.Type,
		Quantity:     in.Quantity,
		UnitCost:     in.UnitCost,
		Lot:          in.Lot,
		ExpiryDate:   in.ExpiryDate,
		Origin:       in.Origin,
		Destination:  in.Destination,
		Category:     in.Category,
		Reference:    in.Reference,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.StockLevelResponse{
		IngredientID:   in.IngredientID,
		QuantityOnHand: level.QuantityOnHand,
		UnitCost:       level.UnitCost,
	})
}

// ListMovements godoc
// @Summary      Consultar el ledger de un ingrediente
// @Tags         inventory
// @Produce      json
// @Param        X-Tenant-ID  header  string  true  "Tenant"
// @Param        ingredient_id  query  string  true   "Ingrediente (UUID)"
// @Param        from           query  string  false  "Desde (RFC3339)"
// @Param        to             query  string  false  "Hasta (RFC3339)"
// @Param        limit          query  int     false  "Máximo de resultados (default 20)"
// @Param        offset         query  int     false  "Desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	ingredientID := c.Query("ingredient_id")
	if ingredientID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ingredient_id requerido"})
	}
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido, use RFC3339"})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido, use RFC3339"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de paginación inválidos"})
	}
	page.DefaultPage()

	movements, err := h.uc.ListMovements(c.Context(), tenantID, ingredientID, from, to, page.Limit, page.Offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.ToMovementResponse(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// LowStock godoc
// @Summary      Ingredientes bajo su stock mínimo
// @Tags         inventory
// @Produce      json
// @Param        X-Tenant-ID  header  string  true  "Tenant"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	ingredients, err := h.uc.LowStock(c.Context(), tenantID)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.LowStockItemResponse, 0, len(ingredients))
	for _, ing := range ingredients {
		item := dto.LowStockItemResponse{
			IngredientID:   ing.ID,
			Name:           ing.Name,
			Unit:           ing.Unit,
			QuantityOnHand: ing.QuantityOnHand,
		}
		if ing.MinStock != nil {
			item.MinStock = *ing.MinStock
		}
		out = append(out, item)
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}

// Valuation godoc
// @Summary      Valor total del inventario del tenant
// @Tags         inventory
// @Produce      json
// @Param        X-Tenant-ID  header  string  true  "Tenant"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/valuation [get]
func (h *InventoryHandler) Valuation(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	total, err := h.uc.Valuation(c.Context(), tenantID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total_value": total})
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
