package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/costeo-api/internal/application/batches"
	"github.com/jhoicas/costeo-api/internal/application/dto"
)

// BatchHandler maneja las consultas de lotes.
type BatchHandler struct {
	uc *batches.TrackerUseCase
}

// NewBatchHandler construye el handler.
func NewBatchHandler(uc *batches.TrackerUseCase) *BatchHandler {
	return &BatchHandler{uc: uc}
}

// Expiring godoc
// @Summary      Lotes que vencen antes de una fecha
// @Description  Incluye lotes ya vencidos con cantidad remanente; los lotes
//
//	sin fecha de vencimiento nunca aparecen.
//
// @Tags         batches
// @Produce      json
// @Param        X-Tenant-ID  header  string  true   "Tenant"
// @Param        before       query   string  true   "Horizonte (RFC3339)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/batches/expiring [get]
func (h *BatchHandler) Expiring(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	raw := c.Query("before")
	if raw == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "before requerido"})
	}
	horizon, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "before inválido, use RFC3339"})
	}

	list, err := h.uc.ExpiringBefore(c.Context(), tenantID, horizon)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.BatchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, dto.ToBatchResponse(b))
	}
	return c.JSON(fiber.Map{"total": len(out), "batches": out})
}

// ListByIngredient godoc
// @Summary      Lotes vivos de un ingrediente en orden de consumo
// @Tags         batches
// @Produce      json
// @Param        X-Tenant-ID  header  string  true  "Tenant"
// @Param        id  path  string  true  "Ingrediente (UUID)"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/ingredients/{id}/batches [get]
func (h *BatchHandler) ListByIngredient(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	list, err := h.uc.ListByIngredient(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.BatchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, dto.ToBatchResponse(b))
	}
	return c.JSON(fiber.Map{"total": len(out), "batches": out})
}
