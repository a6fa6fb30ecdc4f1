package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/costing"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var (
	_ repository.IngredientRepository    = (*IngredientRepo)(nil)
	_ repository.BatchRepository         = (*BatchRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
	_ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)
	_ repository.RecipeRepository        = (*RecipeRepo)(nil)
)

// IngredientRepo adaptador en memoria de IngredientRepository.
type IngredientRepo struct{ s *Store }

// NewIngredientRepository construye el adaptador.
func NewIngredientRepository(s *Store) *IngredientRepo { return &IngredientRepo{s: s} }

// GetByID devuelve una copia del ingrediente o nil si no existe.
func (r *IngredientRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Ingredient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ing, ok := r.s.ingredients[key(tenantID, id)]
	if !ok {
		return nil, nil
	}
	cp := *ing
	return &cp, nil
}

// GetForUpdate en memoria equivale a GetByID: el TxRunner ya serializa las
// transacciones globalmente.
func (r *IngredientRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Ingredient, error) {
	return r.GetByID(ctx, tenantID, id)
}

// UpdateStock persiste cantidad y costo del ingrediente.
func (r *IngredientRepo) UpdateStock(_ context.Context, ing *entity.Ingredient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.ingredients[key(ing.TenantID, ing.ID)]
	if !ok {
		return domain.ErrNotFound
	}
	cur.QuantityOnHand = ing.QuantityOnHand
	cur.UnitCost = ing.UnitCost
	cur.UpdatedAt = time.Now()
	return nil
}

// ListByTenant devuelve los ingredientes del tenant ordenados por nombre.
func (r *IngredientRepo) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*entity.Ingredient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Ingredient
	for _, ing := range r.s.ingredients {
		if ing.TenantID == tenantID {
			cp := *ing
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return paginate(list, limit, offset), nil
}

// ListBelowMinStock devuelve los ingredientes bajo su umbral mínimo.
func (r *IngredientRepo) ListBelowMinStock(_ context.Context, tenantID string) ([]*entity.Ingredient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Ingredient
	for _, ing := range r.s.ingredients {
		if ing.TenantID == tenantID && ing.BelowMinStock() {
			cp := *ing
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// BatchRepo adaptador en memoria de BatchRepository.
type BatchRepo struct{ s *Store }

// NewBatchRepository construye el adaptador.
func NewBatchRepository(s *Store) *BatchRepo { return &BatchRepo{s: s} }

// Create persiste un lote nuevo.
func (r *BatchRepo) Create(_ context.Context, batch *entity.Batch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	now := time.Now()
	batch.CreatedAt = now
	batch.UpdatedAt = now
	cp := *batch
	r.s.batches[key(batch.TenantID, batch.ID)] = &cp
	return nil
}

// ListForConsume devuelve copias de los lotes con stock en orden FIFO.
func (r *BatchRepo) ListForConsume(_ context.Context, tenantID, ingredientID string) ([]*entity.Batch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Batch
	for _, b := range r.s.batches {
		if b.TenantID == tenantID && b.IngredientID == ingredientID && b.HasStock() {
			cp := *b
			list = append(list, &cp)
		}
	}
	costing.SortFIFO(list)
	return list, nil
}

// UpdateQuantity persiste la cantidad restante de un lote.
func (r *BatchRepo) UpdateQuantity(_ context.Context, tenantID, batchID string, qty decimal.Decimal, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.batches[key(tenantID, batchID)]
	if !ok {
		return domain.ErrNotFound
	}
	b.Quantity = qty
	b.UpdatedAt = updatedAt
	return nil
}

// ListByIngredient devuelve todos los lotes del ingrediente, consumidos incluidos.
func (r *BatchRepo) ListByIngredient(_ context.Context, tenantID, ingredientID string) ([]*entity.Batch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Batch
	for _, b := range r.s.batches {
		if b.TenantID == tenantID && b.IngredientID == ingredientID {
			cp := *b
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ReceivedAt.Before(list[j].ReceivedAt) })
	return list, nil
}

// ListExpiringBefore devuelve lotes con stock que vencen antes del horizonte.
func (r *BatchRepo) ListExpiringBefore(_ context.Context, tenantID string, horizon time.Time) ([]*entity.Batch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Batch
	for _, b := range r.s.batches {
		if b.TenantID == tenantID && b.HasStock() && b.ExpiryDate != nil && b.ExpiryDate.Before(horizon) {
			cp := *b
			list = append(list, &cp)
		}
	}
	costing.SortFIFO(list)
	return list, nil
}

// StockMovementRepo adaptador en memoria del ledger (append-only).
type StockMovementRepo struct{ s *Store }

// NewStockMovementRepository construye el adaptador.
func NewStockMovementRepository(s *Store) *StockMovementRepo { return &StockMovementRepo{s: s} }

// Append agrega una entrada al ledger; ErrDuplicate si la Reference ya existe
// para el tenant.
func (r *StockMovementRepo) Append(_ context.Context, movement *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if movement.Reference != "" {
		if _, exists := r.s.movementRef[refKey(movement.TenantID, movement.Reference)]; exists {
			return domain.ErrDuplicate
		}
		r.s.movementRef[refKey(movement.TenantID, movement.Reference)] = struct{}{}
	}
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	movement.CreatedAt = time.Now()
	cp := *movement
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

// ListByIngredient devuelve las entradas en orden cronológico ascendente.
func (r *StockMovementRepo) ListByIngredient(_ context.Context, tenantID, ingredientID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.TenantID != tenantID || m.IngredientID != ingredientID {
			continue
		}
		if from != nil && m.OccurredAt.Before(*from) {
			continue
		}
		if to != nil && m.OccurredAt.After(*to) {
			continue
		}
		cp := *m
		list = append(list, &cp)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].OccurredAt.Before(list[j].OccurredAt) })
	return paginate(list, limit, offset), nil
}

// PurchaseOrderRepo adaptador en memoria de PurchaseOrderRepository.
type PurchaseOrderRepo struct{ s *Store }

// NewPurchaseOrderRepository construye el adaptador.
func NewPurchaseOrderRepository(s *Store) *PurchaseOrderRepo { return &PurchaseOrderRepo{s: s} }

// Create persiste la orden; ErrDuplicate si el número ya existe para el
// tenant (sin distinguir mayúsculas).
func (r *PurchaseOrderRepo) Create(_ context.Context, order *entity.PurchaseOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.purchases {
		if existing.TenantID == order.TenantID && strings.EqualFold(existing.Number, order.Number) {
			return domain.ErrDuplicate
		}
	}
	cp := *order
	cp.Lines = append([]entity.PurchaseLineItem(nil), order.Lines...)
	r.s.purchases[key(order.TenantID, order.ID)] = &cp
	return nil
}

// GetByID devuelve la orden o nil.
func (r *PurchaseOrderRepo) GetByID(_ context.Context, tenantID, id string) (*entity.PurchaseOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	order, ok := r.s.purchases[key(tenantID, id)]
	if !ok {
		return nil, nil
	}
	cp := *order
	cp.Lines = append([]entity.PurchaseLineItem(nil), order.Lines...)
	return &cp, nil
}

// GetByNumber busca por número sin distinguir mayúsculas; nil si no existe.
func (r *PurchaseOrderRepo) GetByNumber(_ context.Context, tenantID, number string) (*entity.PurchaseOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, order := range r.s.purchases {
		if order.TenantID == tenantID && strings.EqualFold(order.Number, number) {
			cp := *order
			cp.Lines = append([]entity.PurchaseLineItem(nil), order.Lines...)
			return &cp, nil
		}
	}
	return nil, nil
}

// MarkReceived aplica pending -> received.
func (r *PurchaseOrderRepo) MarkReceived(_ context.Context, tenantID, id string, receivedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.purchases[key(tenantID, id)]
	if !ok {
		return domain.ErrNotFound
	}
	if order.Status == entity.PurchaseStatusReceived {
		return nil
	}
	order.Status = entity.PurchaseStatusReceived
	order.ReceivedAt = &receivedAt
	return nil
}

// ListByTenant devuelve las órdenes del tenant, más recientes primero.
func (r *PurchaseOrderRepo) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.PurchaseOrder
	for _, order := range r.s.purchases {
		if order.TenantID == tenantID {
			cp := *order
			cp.Lines = append([]entity.PurchaseLineItem(nil), order.Lines...)
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, limit, offset), nil
}

// RecipeRepo adaptador en memoria de RecipeRepository (solo lectura).
type RecipeRepo struct{ s *Store }

// NewRecipeRepository construye el adaptador.
func NewRecipeRepository(s *Store) *RecipeRepo { return &RecipeRepo{s: s} }

// GetByID devuelve la receta con componentes o nil.
func (r *RecipeRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Recipe, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	recipe, ok := r.s.recipes[key(tenantID, id)]
	if !ok {
		return nil, nil
	}
	cp := *recipe
	cp.Components = append([]entity.RecipeComponent(nil), recipe.Components...)
	return &cp, nil
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
