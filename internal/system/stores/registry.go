// Package stores provides a central registry for store instances so services
// can reach sibling-module persistence without import cycles.
package stores

import (
	"fmt"
	"sync"

	dbmodel "github.com/trustvault/audit-management-api/internal/system/database/model"
	"github.com/trustvault/audit-management-api/internal/system/database/provider"
	"github.com/trustvault/audit-management-api/internal/system/log"
)

// StoreRegistry holds references to all store instances. Stores are stored as
// interface{} and asserted to their typed contracts at the point of use.
type StoreRegistry struct {
	mu sync.RWMutex

	AuditStore   interface{}
	FindingStore interface{}
	ControlStore interface{}
	RiskStore    interface{}
}

var (
	registry     *StoreRegistry
	registryOnce sync.Once
)

// GetRegistry returns the singleton store registry.
func GetRegistry() *StoreRegistry {
	registryOnce.Do(func() {
		registry = &StoreRegistry{}
	})
	return registry
}

// RegisterAuditStore registers the audit store instance.
func (r *StoreRegistry) RegisterAuditStore(store interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.AuditStore = store
}

// RegisterFindingStore registers the finding store instance.
func (r *StoreRegistry) RegisterFindingStore(store interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FindingStore = store
}

// RegisterControlStore registers the control catalog store instance.
func (r *StoreRegistry) RegisterControlStore(store interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ControlStore = store
}

// RegisterRiskStore registers the risk register store instance.
func (r *StoreRegistry) RegisterRiskStore(store interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RiskStore = store
}

// GetAuditStore returns the registered audit store.
func (r *StoreRegistry) GetAuditStore() interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.AuditStore
}

// GetFindingStore returns the registered finding store.
func (r *StoreRegistry) GetFindingStore() interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.FindingStore
}

// GetControlStore returns the registered control catalog store.
func (r *StoreRegistry) GetControlStore() interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ControlStore
}

// GetRiskStore returns the registered risk register store.
func (r *StoreRegistry) GetRiskStore() interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.RiskStore
}

// ExecuteTransaction runs the given steps inside a single database
// transaction. Any step error rolls the whole transaction back.
func ExecuteTransaction(queries []func(tx dbmodel.TxInterface) error) error {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "StoreRegistry"))

	dbClient, err := provider.GetDBProvider().GetAuditDBClient()
	if err != nil {
		logger.Error("Failed to get database client", log.Error(err))
		return fmt.Errorf("failed to get database client: %w", err)
	}

	if err := dbmodel.ExecuteTransaction(dbClient.GetDB(), queries); err != nil {
		logger.Error("Transaction failed", log.Error(err))
		return err
	}
	return nil
}
