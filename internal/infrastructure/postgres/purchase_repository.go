package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo implementación de PurchaseOrderRepository sobre
// PostgreSQL (usable con pool o tx). La unicidad del número por tenant sin
// distinguir mayúsculas la respalda un índice único sobre
// (tenant_id, lower(number)).
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create persiste la orden con sus líneas. ErrDuplicate si el número ya
// existe para el tenant.
func (r *PurchaseOrderRepo) Create(ctx context.Context, order *entity.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (id, tenant_id, number, supplier, purchase_date, status, total_amount, received_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.TenantID, order.Number, order.Supplier,
		order.PurchaseDate, order.Status, order.TotalAmount,
		order.ReceivedAt, order.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create purchase order: %w", err)
	}
	lineQuery := `
		INSERT INTO purchase_lines (purchase_id, line_index, ingredient_id, quantity, unit_cost, lot, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, line := range order.Lines {
		if _, err := r.q.Exec(ctx, lineQuery,
			order.ID, line.Index, line.IngredientID,
			line.Quantity, line.UnitCost, line.Lot, line.ExpiryDate,
		); err != nil {
			return fmt.Errorf("create purchase line %d: %w", line.Index, err)
		}
	}
	return nil
}

const purchaseColumns = `id, tenant_id, number, supplier, purchase_date, status, total_amount, received_at, created_at`

func scanPurchase(row pgx.Row) (*entity.PurchaseOrder, error) {
	var p entity.PurchaseOrder
	err := row.Scan(
		&p.ID, &p.TenantID, &p.Number, &p.Supplier, &p.PurchaseDate,
		&p.Status, &p.TotalAmount, &p.ReceivedAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID obtiene la orden con sus líneas. nil si no existe.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.PurchaseOrder, error) {
	query := `
		SELECT ` + purchaseColumns + `
		FROM purchase_orders WHERE tenant_id = $1 AND id = $2`
	order, err := scanPurchase(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	if err := r.loadLines(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetByNumber busca por número sin distinguir mayúsculas. nil si no existe.
func (r *PurchaseOrderRepo) GetByNumber(ctx context.Context, tenantID, number string) (*entity.PurchaseOrder, error) {
	query := `
		SELECT ` + purchaseColumns + `
		FROM purchase_orders WHERE tenant_id = $1 AND lower(number) = lower($2)`
	order, err := scanPurchase(r.q.QueryRow(ctx, query, tenantID, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase by number: %w", err)
	}
	if err := r.loadLines(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// MarkReceived aplica la transición pending -> received (idempotente).
func (r *PurchaseOrderRepo) MarkReceived(ctx context.Context, tenantID, id string, receivedAt time.Time) error {
	query := `
		UPDATE purchase_orders SET status = $3, received_at = $4
		WHERE tenant_id = $1 AND id = $2 AND status = $5`
	_, err := r.q.Exec(ctx, query, tenantID, id,
		entity.PurchaseStatusReceived, receivedAt, entity.PurchaseStatusPending)
	if err != nil {
		return fmt.Errorf("mark purchase received: %w", err)
	}
	return nil
}

// ListByTenant lista las órdenes del tenant, más recientes primero.
func (r *PurchaseOrderRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	query := `
		SELECT ` + purchaseColumns + `
		FROM purchase_orders WHERE tenant_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseOrder
	for rows.Next() {
		order, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		list = append(list, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, order := range list {
		if err := r.loadLines(ctx, order); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *PurchaseOrderRepo) loadLines(ctx context.Context, order *entity.PurchaseOrder) error {
	query := `
		SELECT line_index, ingredient_id, quantity, unit_cost, lot, expiry_date
		FROM purchase_lines WHERE purchase_id = $1
		ORDER BY line_index ASC`
	rows, err := r.q.Query(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("load purchase lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.PurchaseLineItem
		if err := rows.Scan(&l.Index, &l.IngredientID, &l.Quantity, &l.UnitCost, &l.Lot, &l.ExpiryDate); err != nil {
			return fmt.Errorf("scan purchase line: %w", err)
		}
		order.Lines = append(order.Lines, l)
	}
	return rows.Err()
}
