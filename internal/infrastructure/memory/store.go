// Package memory implementa los repositorios en memoria: driver de desarrollo y backend de pruebas.
// Cada transacción trabaja sobre una copia del estado bajo un mutex global; el commit reemplaza el
// estado y un error lo descarta, así que las transacciones quedan serializadas.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

type ruleKey struct{ tenant, payer, plan, product string }

type stockKey struct {
	tenant string
	key    entity.StockKey
}

type memoryState struct {
	warehouses map[string]entity.Warehouse
	products   map[string]entity.Product
	patients   map[string]entity.Patient
	episodes   map[string]entity.Episode
	stages     map[string]entity.WorkflowStage
	payers     map[string]entity.Payer
	plans      map[string]entity.Plan
	catalog    []entity.PayerRequirement
	movements  []entity.StockMovement
	levels     map[stockKey]entity.StockLevel
	orders     map[string]entity.ApprovedOrder
	kits       map[string]entity.KitTemplate
	pickLists  map[string]entity.PickList
	incidents  map[string]entity.Incident
	deliveries map[string]entity.Delivery
	evidence   []entity.DeliveryEvidence
	auths      map[string]entity.Authorization
	rules      map[ruleKey]entity.BillingRule
	invoices   map[string]entity.Invoice
	tenants    map[string]entity.Tenant
	modules    map[[2]string]entity.TenantModule
}

func newMemoryState() memoryState {
	return memoryState{
		warehouses: map[string]entity.Warehouse{},
		products:   map[string]entity.Product{},
		patients:   map[string]entity.Patient{},
		episodes:   map[string]entity.Episode{},
		stages:     map[string]entity.WorkflowStage{},
		payers:     map[string]entity.Payer{},
		plans:      map[string]entity.Plan{},
		levels:     map[stockKey]entity.StockLevel{},
		orders:     map[string]entity.ApprovedOrder{},
		kits:       map[string]entity.KitTemplate{},
		pickLists:  map[string]entity.PickList{},
		incidents:  map[string]entity.Incident{},
		deliveries: map[string]entity.Delivery{},
		auths:      map[string]entity.Authorization{},
		rules:      map[ruleKey]entity.BillingRule{},
		invoices:   map[string]entity.Invoice{},
		tenants:    map[string]entity.Tenant{},
		modules:    map[[2]string]entity.TenantModule{},
	}
}

// clone copia mapas y slices. Los valores guardados nunca se modifican en sitio (los repos
// reemplazan la entrada entera con una copia), así que basta con copiar los contenedores.
func (st memoryState) clone() memoryState {
	return memoryState{
		warehouses: copyMap(st.warehouses),
		products:   copyMap(st.products),
		patients:   copyMap(st.patients),
		episodes:   copyMap(st.episodes),
		stages:     copyMap(st.stages),
		payers:     copyMap(st.payers),
		plans:      copyMap(st.plans),
		catalog:    append([]entity.PayerRequirement(nil), st.catalog...),
		movements:  append([]entity.StockMovement(nil), st.movements...),
		levels:     copyMap(st.levels),
		orders:     copyMap(st.orders),
		kits:       copyMap(st.kits),
		pickLists:  copyMap(st.pickLists),
		incidents:  copyMap(st.incidents),
		deliveries: copyMap(st.deliveries),
		evidence:   append([]entity.DeliveryEvidence(nil), st.evidence...),
		auths:      copyMap(st.auths),
		rules:      copyMap(st.rules),
		invoices:   copyMap(st.invoices),
		tenants:    copyMap(st.tenants),
		modules:    copyMap(st.modules),
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store guarda todo el estado en memoria.
type Store struct {
	mu    sync.Mutex
	state memoryState
}

// New construye un store vacío.
func New() *Store {
	return &Store{state: newMemoryState()}
}

// Run ejecuta fn sobre una copia del estado. Si fn devuelve error la copia se descarta.
func (s *Store) Run(ctx context.Context, fn func(repository.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txState{state: s.state.clone()}
	if err := fn(tx.stores()); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// txState es el estado de trabajo de una transacción.
type txState struct {
	state memoryState
}

func (t *txState) stores() repository.Stores {
	return repository.Stores{
		Warehouses:     warehouseRepo{t},
		Products:       productRepo{t},
		Patients:       patientRepo{t},
		Payers:         payerRepo{t},
		Movements:      movementRepo{t},
		Stock:          stockRepo{t},
		Orders:         orderRepo{t},
		Kits:           kitRepo{t},
		PickLists:      pickListRepo{t},
		Incidents:      incidentRepo{t},
		Deliveries:     deliveryRepo{t},
		Authorizations: authorizationRepo{t},
		BillingRules:   billingRuleRepo{t},
		Invoices:       invoiceRepo{t},
	}
}
