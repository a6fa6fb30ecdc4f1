package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/costeo-api/internal/application/dto"
	"github.com/jhoicas/costeo-api/internal/application/recipes"
)

// RecipeHandler maneja las consultas de costo de recetas.
type RecipeHandler struct {
	uc *recipes.ResolverUseCase
}

// NewRecipeHandler construye el handler.
func NewRecipeHandler(uc *recipes.ResolverUseCase) *RecipeHandler {
	return &RecipeHandler{uc: uc}
}

// Cost godoc
// @Summary      Costo vigente de una receta
// @Description  Resuelve sub-recetas recursivamente con los costos promedio
//
//	vigentes al momento de la consulta. No persiste nada.
//
// @Tags         recipes
// @Produce      json
// @Param        X-Tenant-ID  header  string  true  "Tenant"
// @Param        id  path  string  true  "ID de la receta"
// @Success      200  {object}  dto.RecipeCostResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/recipes/{id}/cost [get]
func (h *RecipeHandler) Cost(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	cost, err := h.uc.ResolveCost(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.ToRecipeCostResponse(cost))
}
