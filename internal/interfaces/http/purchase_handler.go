package http

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/costeo-api/internal/application/dto"
	"github.com/jhoicas/costeo-api/internal/application/purchasing"
)

// PurchaseHandler maneja las peticiones HTTP del intake de compras.
type PurchaseHandler struct {
	uc       *purchasing.IntakeUseCase
	validate *validator.Validate
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(uc *purchasing.IntakeUseCase, validate *validator.Validate) *PurchaseHandler {
	return &PurchaseHandler{uc: uc, validate: validate}
}

// Submit godoc
// @Summary      Registrar documento de compra
// @Description  Valida el documento completo antes de persistir. Con
//
//	auto_receive=true también aplica cada línea al inventario.
//
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID  header  string  true  "Tenant"
// @Param        body  body  dto.SubmitPurchaseRequest  true  "number, lines (ingredient_id, quantity, unit_cost)"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/purchases [post]
func (h *PurchaseHandler) Submit(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	var in dto.SubmitPurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	lines := make([]purchasing.LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, purchasing.LineInput{
			IngredientID: l.IngredientID,
			Quantity:     l.Quantity,
			UnitCost:     l.UnitCost,
			Lot:          l.Lot,
			ExpiryDate:   l.ExpiryDate,
		})
	}
	purchaseDate := time.Now()
	if in.PurchaseDate != nil {
		purchaseDate = *in.PurchaseDate
	}

	order, result, err := h.uc.SubmitPurchase(c.Context(), tenantID, purchasing.SubmitInput{
		Number:       in.Number,
		Supplier:     in.Supplier,
		PurchaseDate: purchaseDate,
		Lines:        lines,
		AutoReceive:  in.AutoReceive,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	if result != nil {
		return c.Status(fiber.StatusCreated).JSON(dto.ToReceiveResponse(result))
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToPurchaseOrderResponse(order))
}

// Receive godoc
// @Summary      Recibir una orden pendiente
// @Description  Aplica cada línea al inventario. Las líneas ya aplicadas en
//
//	un intento anterior se omiten, así que reintentar es seguro.
//
// @Tags         purchases
// @Produce      json
// @Param        X-Tenant-ID  header  string  true  "Tenant"
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.ReceivePurchaseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/receive [post]
func (h *PurchaseHandler) Receive(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	result, err := h.uc.ReceivePurchase(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.ToReceiveResponse(result))
}

// GetByID godoc
// @Summary      Consultar una orden de compra
// @Tags         purchases
// @Produce      json
// @Param        X-Tenant-ID  header  string  true  "Tenant"
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id} [get]
func (h *PurchaseHandler) GetByID(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	order, err := h.uc.GetPurchase(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.ToPurchaseOrderResponse(order))
}

// List godoc
// @Summary      Listar órdenes de compra del tenant
// @Tags         purchases
// @Produce      json
// @Param        X-Tenant-ID  header  string  true  "Tenant"
// @Param        limit   query  int  false  "Máximo de resultados (default 20)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/purchases [get]
func (h *PurchaseHandler) List(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de paginación inválidos"})
	}
	page.DefaultPage()

	orders, err := h.uc.ListPurchases(c.Context(), tenantID, page.Limit, page.Offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.PurchaseOrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, dto.ToPurchaseOrderResponse(o))
	}
	return c.JSON(fiber.Map{"total": len(out), "purchases": out})
}
