package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación de BatchRepository sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `id, tenant_id, ingredient_id, lot, quantity, unit_cost, expiry_date, received_at, created_at, updated_at`

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(
		&b.ID, &b.TenantID, &b.IngredientID, &b.Lot,
		&b.Quantity, &b.UnitCost, &b.ExpiryDate, &b.ReceivedAt,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create persiste un lote nuevo.
func (r *BatchRepo) Create(ctx context.Context, batch *entity.Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	query := `
		INSERT INTO batches (id, tenant_id, ingredient_id, lot, quantity, unit_cost, expiry_date, received_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`
	_, err := r.q.Exec(ctx, query,
		batch.ID, batch.TenantID, batch.IngredientID, batch.Lot,
		batch.Quantity, batch.UnitCost, batch.ExpiryDate, batch.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// ListForConsume devuelve los lotes con stock del ingrediente en orden FIFO
// (vencimiento ascendente con nulos al final, luego recepción ascendente) y
// bloquea las filas para la transacción (FOR UPDATE).
func (r *BatchRepo) ListForConsume(ctx context.Context, tenantID, ingredientID string) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM batches
		WHERE tenant_id = $1 AND ingredient_id = $2 AND quantity > 0
		ORDER BY expiry_date ASC NULLS LAST, received_at ASC
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, tenantID, ingredientID)
	if err != nil {
		return nil, fmt.Errorf("list batches for consume: %w", err)
	}
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// UpdateQuantity persiste la cantidad restante de un lote (los lotes llegan
// a cero, nunca se eliminan).
func (r *BatchRepo) UpdateQuantity(ctx context.Context, tenantID, batchID string, qty decimal.Decimal, updatedAt time.Time) error {
	query := `
		UPDATE batches SET quantity = $3, updated_at = $4
		WHERE tenant_id = $1 AND id = $2`
	_, err := r.q.Exec(ctx, query, tenantID, batchID, qty, updatedAt)
	if err != nil {
		return fmt.Errorf("update batch quantity: %w", err)
	}
	return nil
}

// ListByIngredient devuelve todos los lotes del ingrediente, consumidos incluidos.
func (r *BatchRepo) ListByIngredient(ctx context.Context, tenantID, ingredientID string) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM batches
		WHERE tenant_id = $1 AND ingredient_id = $2
		ORDER BY received_at ASC`
	rows, err := r.q.Query(ctx, query, tenantID, ingredientID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// ListExpiringBefore devuelve lotes con stock que vencen antes del horizonte.
func (r *BatchRepo) ListExpiringBefore(ctx context.Context, tenantID string, horizon time.Time) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM batches
		WHERE tenant_id = $1 AND quantity > 0 AND expiry_date IS NOT NULL AND expiry_date < $2
		ORDER BY expiry_date ASC, received_at ASC`
	rows, err := r.q.Query(ctx, query, tenantID, horizon)
	if err != nil {
		return nil, fmt.Errorf("list expiring batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}
