package provider

import (
	"sync"

	"github.com/trustvault/audit-management-api/internal/system/database"
	"github.com/trustvault/audit-management-api/internal/system/log"
)

// DBProviderInterface defines the interface for getting database clients.
type DBProviderInterface interface {
	GetAuditDBClient() (DBClientInterface, error)
}

// DBProviderCloser is a separate interface for closing the provider.
// Only the lifecycle manager should use this interface.
type DBProviderCloser interface {
	Close() error
}

// dbProvider is the implementation of DBProviderInterface.
type dbProvider struct {
	auditClient DBClientInterface
	auditMutex  sync.RWMutex
	db          *database.DB
	dbType      string
}

var (
	instance *dbProvider
	once     sync.Once
)

// InitDBProvider initializes the singleton instance of DBProvider with the database connection.
func InitDBProvider(db *database.DB, dbType string) {
	once.Do(func() {
		instance = &dbProvider{
			db:     db,
			dbType: dbType,
		}
		instance.initializeClient()
	})
}

// GetDBProvider returns the instance of DBProvider.
func GetDBProvider() DBProviderInterface {
	if instance == nil {
		panic("DBProvider not initialized. Call InitDBProvider first.")
	}
	return instance
}

// GetDBProviderCloser returns the DBProvider with closing capability.
// This should only be called from the main lifecycle manager.
func GetDBProviderCloser() DBProviderCloser {
	if instance == nil {
		panic("DBProvider not initialized. Call InitDBProvider first.")
	}
	return instance
}

// GetAuditDBClient returns a database client for the audit datasource.
// Not required to close the returned client manually since it manages its own connection pool.
func (d *dbProvider) GetAuditDBClient() (DBClientInterface, error) {
	d.auditMutex.RLock()
	defer d.auditMutex.RUnlock()
	return d.auditClient, nil
}

// initializeClient initializes the database client.
func (d *dbProvider) initializeClient() {
	d.auditMutex.Lock()
	defer d.auditMutex.Unlock()

	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DBProvider"))

	if d.db == nil {
		logger.Fatal("Database connection is nil")
		return
	}

	d.auditClient = NewDBClient(d.db, d.dbType)
	logger.Debug("Audit DB client initialized")
}

// Close closes the database connections. This should only be called by the lifecycle manager during shutdown.
func (d *dbProvider) Close() error {
	d.auditMutex.Lock()
	defer d.auditMutex.Unlock()

	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DBProvider"))
	logger.Debug("Closing database connections")

	// The underlying pool is owned by database.DB and closed by the
	// lifecycle manager; drop the client reference only.
	d.auditClient = nil
	return nil
}
