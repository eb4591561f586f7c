// Package provider provides functionality for managing database connections and clients.
package provider

import (
	"fmt"

	"github.com/trustvault/audit-management-api/internal/system/database"
	dbmodel "github.com/trustvault/audit-management-api/internal/system/database/model"
	dbutils "github.com/trustvault/audit-management-api/internal/system/database/utils"
	"github.com/trustvault/audit-management-api/internal/system/log"
)

// DBClientInterface defines the interface for database client operations.
type DBClientInterface interface {
	Query(query dbmodel.DBQueryInterface, args ...interface{}) ([]map[string]interface{}, error)
	Execute(query dbmodel.DBQueryInterface, args ...interface{}) (int64, error)
	BeginTx() (dbmodel.TxInterface, error)
	GetDB() dbmodel.DBInterface
	DBType() string
}

// dbClient executes identified queries against the underlying connection,
// selecting the query variant and placeholder style for the configured
// database type.
type dbClient struct {
	db     *database.DB
	dbType string
}

// NewDBClient creates a new database client for the given database type.
func NewDBClient(db *database.DB, dbType string) DBClientInterface {
	return &dbClient{
		db:     db,
		dbType: dbType,
	}
}

// DBType returns the database type this client targets.
func (c *dbClient) DBType() string {
	return c.dbType
}

// Query executes a read query and returns the result rows as column-name maps.
func (c *dbClient) Query(query dbmodel.DBQueryInterface, args ...interface{}) ([]map[string]interface{}, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DBClient"))

	rows, err := c.db.Query(c.rebind(query.GetQuery(c.dbType)), args...)
	if err != nil {
		logger.Error("Query execution failed", log.String("query_id", query.GetID()), log.Error(err))
		return nil, fmt.Errorf("query %s failed: %w", query.GetID(), err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query %s failed to read columns: %w", query.GetID(), err)
	}

	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("query %s failed to scan row: %w", query.GetID(), err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			// Drivers return text columns as []byte; normalize to string
			// so store mappers can type-assert uniformly.
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s row iteration failed: %w", query.GetID(), err)
	}

	return results, nil
}

// Execute executes a write query and returns the number of affected rows.
func (c *dbClient) Execute(query dbmodel.DBQueryInterface, args ...interface{}) (int64, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DBClient"))

	result, err := c.db.Exec(c.rebind(query.GetQuery(c.dbType)), args...)
	if err != nil {
		logger.Error("Execute failed", log.String("query_id", query.GetID()), log.Error(err))
		return 0, fmt.Errorf("execute %s failed: %w", query.GetID(), err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("execute %s failed to read affected rows: %w", query.GetID(), err)
	}
	return affected, nil
}

// BeginTx starts a new transaction on the underlying connection.
func (c *dbClient) BeginTx() (dbmodel.TxInterface, error) {
	tx, err := c.db.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return dbmodel.NewTx(tx), nil
}

// GetDB exposes the underlying connection for callers that drive
// transactions through the dbmodel helpers.
func (c *dbClient) GetDB() dbmodel.DBInterface {
	return c.db.DB
}

// rebind rewrites MySQL-style placeholders when the target database needs a
// different placeholder syntax.
func (c *dbClient) rebind(query string) string {
	switch c.dbType {
	case "postgres", "postgresql":
		return dbutils.ConvertToPostgresParams(query)
	default:
		return query
	}
}
