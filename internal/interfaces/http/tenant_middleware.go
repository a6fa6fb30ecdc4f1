package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/costeo-api/internal/application/dto"
)

// Locals key para el TenantID en Fiber.
const LocalTenantID = "tenant_id"

// TenantMiddleware extrae el header X-Tenant-ID a c.Locals. El gateway
// corporativo autentica y resuelve el tenant antes de llegar aquí; este
// servicio solo exige que el header venga presente.
func TenantMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID := strings.TrimSpace(c.Get("X-Tenant-ID"))
		if tenantID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TENANT", Message: "header X-Tenant-ID requerido"})
		}
		c.Locals(LocalTenantID, tenantID)
		return c.Next()
	}
}

// GetTenantID devuelve el TenantID del contexto (después del middleware).
func GetTenantID(c *fiber.Ctx) string {
	v := c.Locals(LocalTenantID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
