package repository

import (
	"context"
	"time"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// PurchaseOrderRepository define el puerto de persistencia para órdenes de compra (DIP).
type PurchaseOrderRepository interface {
	// Create persiste la orden con sus líneas. Devuelve domain.ErrDuplicate si
	// el número (sin distinguir mayúsculas) ya existe para el tenant.
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.PurchaseOrder, error)
	// GetByNumber busca por número sin distinguir mayúsculas. nil si no existe.
	GetByNumber(ctx context.Context, tenantID, number string) (*entity.PurchaseOrder, error)
	// MarkReceived aplica la transición pending -> received (una sola vía).
	MarkReceived(ctx context.Context, tenantID, id string, receivedAt time.Time) error
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.PurchaseOrder, error)
}
