// Package memory implementa los puertos de persistencia sobre mapas en
// memoria: lo usan los tests de los casos de uso y el modo desarrollo sin
// PostgreSQL. El TxRunner serializa las transacciones con un mutex global y
// revierte por snapshot; la paralelización por ingrediente la aporta el
// adaptador de Postgres con SELECT FOR UPDATE.
package memory

import (
	"sync"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// Store agrupa el estado en memoria de un despliegue (todos los tenants).
type Store struct {
	txMu        sync.Mutex // serializa transacciones del TxRunner
	mu          sync.RWMutex
	ingredients map[string]*entity.Ingredient    // clave tenant|id
	batches     map[string]*entity.Batch         // clave tenant|id
	movements   []*entity.StockMovement          // append-only
	movementRef map[string]struct{}              // clave tenant|reference (idempotencia)
	purchases   map[string]*entity.PurchaseOrder // clave tenant|id
	recipes     map[string]*entity.Recipe        // clave tenant|id
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{
		ingredients: make(map[string]*entity.Ingredient),
		batches:     make(map[string]*entity.Batch),
		movementRef: make(map[string]struct{}),
		purchases:   make(map[string]*entity.PurchaseOrder),
		recipes:     make(map[string]*entity.Recipe),
	}
}

func key(tenantID, id string) string {
	return tenantID + "|" + id
}

func refKey(tenantID, reference string) string {
	return tenantID + "|" + reference
}

// SeedIngredient registra un ingrediente (rol del catálogo externo).
func (s *Store) SeedIngredient(ing *entity.Ingredient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *ing
	s.ingredients[key(ing.TenantID, ing.ID)] = &cp
}

// SeedRecipe registra una receta (rol del catálogo externo).
func (s *Store) SeedRecipe(r *entity.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	cp.Components = append([]entity.RecipeComponent(nil), r.Components...)
	s.recipes[key(r.TenantID, r.ID)] = &cp
}

// RemoveIngredient retira un ingrediente del catálogo (rol del catálogo
// externo cuando desactiva un ingrediente).
func (s *Store) RemoveIngredient(tenantID, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ingredients, key(tenantID, id))
}

// snapshot copia el estado mutable para poder revertir una transacción.
func (s *Store) snapshot() *storeState {
	st := &storeState{
		ingredients: make(map[string]*entity.Ingredient, len(s.ingredients)),
		batches:     make(map[string]*entity.Batch, len(s.batches)),
		movements:   append([]*entity.StockMovement(nil), s.movements...),
		movementRef: make(map[string]struct{}, len(s.movementRef)),
		purchases:   make(map[string]*entity.PurchaseOrder, len(s.purchases)),
	}
	for k, v := range s.ingredients {
		cp := *v
		st.ingredients[k] = &cp
	}
	for k, v := range s.batches {
		cp := *v
		st.batches[k] = &cp
	}
	for k := range s.movementRef {
		st.movementRef[k] = struct{}{}
	}
	for k, v := range s.purchases {
		cp := *v
		cp.Lines = append([]entity.PurchaseLineItem(nil), v.Lines...)
		st.purchases[k] = &cp
	}
	return st
}

func (s *Store) restore(st *storeState) {
	s.ingredients = st.ingredients
	s.batches = st.batches
	s.movements = st.movements
	s.movementRef = st.movementRef
	s.purchases = st.purchases
}

type storeState struct {
	ingredients map[string]*entity.Ingredient
	batches     map[string]*entity.Batch
	movements   []*entity.StockMovement
	movementRef map[string]struct{}
	purchases   map[string]*entity.PurchaseOrder
}
