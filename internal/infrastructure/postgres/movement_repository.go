package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del ledger sobre PostgreSQL (usable con
// pool o tx). La tabla es append-only: este adaptador no expone UPDATE ni
// DELETE y el índice único parcial sobre (tenant_id, reference) aporta la
// idempotencia por línea de compra.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Append persiste una entrada del ledger. ErrDuplicate si la Reference ya
// existe para el tenant (la línea ya fue aplicada).
func (r *StockMovementRepo) Append(ctx context.Context, movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now()
	}
	reference := (*string)(nil)
	if movement.Reference != "" {
		reference = &movement.Reference
	}
	query := `
		INSERT INTO stock_movements (id, tenant_id, ingredient_id, type, quantity, value, reference, category, is_processed, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.TenantID, movement.IngredientID, movement.Type,
		movement.Quantity, movement.Value, reference, movement.Category,
		movement.IsProcessed, movement.OccurredAt, movement.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("append stock movement: %w", err)
	}
	return nil
}

// ListByIngredient lista las entradas del ingrediente en orden cronológico
// ascendente, con rango de fechas opcional. Consulta reiniciable: cada
// llamada relee desde el store.
func (r *StockMovementRepo) ListByIngredient(ctx context.Context, tenantID, ingredientID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, tenant_id, ingredient_id, type, quantity, value, reference, category, is_processed, occurred_at, created_at
		FROM stock_movements WHERE tenant_id = $1 AND ingredient_id = $2`
	args := []any{tenantID, ingredientID}
	pos := 3
	if from != nil {
		query += fmt.Sprintf(" AND occurred_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND occurred_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY occurred_at ASC, created_at ASC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var reference *string
		if err := rows.Scan(&m.ID, &m.TenantID, &m.IngredientID, &m.Type,
			&m.Quantity, &m.Value, &reference, &m.Category,
			&m.IsProcessed, &m.OccurredAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if reference != nil {
			m.Reference = *reference
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
