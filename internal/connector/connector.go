// Package connector implements the connector registry: one adapter per
// SQL dialect behind a uniform capability set, grounded on
// a dialect-neutral connector contract.
package connector

import "context"

// ColumnInfo describes one column returned by ListColumns.
type ColumnInfo struct {
	Name     string
	DataType string
	Nullable bool
}

// TableInfo describes one table returned by ListTables.
type TableInfo struct {
	Schema string
	Name   string
}

// Row is an ordered name->value mapping for one result row.
type Row map[string]any

// Connector is the capability set every dialect adapter implements.
// A Connector wraps one live session; callers must Close it.
type Connector interface {
	// Test verifies the underlying session is reachable.
	Test(ctx context.Context) error

	// Close releases the session. Idempotent.
	Close(ctx context.Context) error

	// Execute runs sql and returns every row as a name->value mapping.
	Execute(ctx context.Context, sql string) ([]Row, error)

	// ExecuteScalar runs sql and returns the first cell of the first row.
	ExecuteScalar(ctx context.Context, sql string) (any, error)

	// ExecuteSensorSQL is the executor's fast path: runs sql, which
	// must project exactly one column aliased sensor_value, and returns its
	// float value or nil if the cell is SQL NULL or non-numeric.
	ExecuteSensorSQL(ctx context.Context, sql string) (*float64, error)

	ListSchemas(ctx context.Context) ([]string, error)
	ListTables(ctx context.Context, schema string) ([]TableInfo, error)
	ListColumns(ctx context.Context, schema, table string) ([]ColumnInfo, error)

	// QuoteIdentifier applies this dialect's identifier quoting rules
	// (backticks for MySQL/BigQuery/Databricks, brackets for SQL Server,
	// double quotes elsewhere; Oracle upper-cases before quoting).
	QuoteIdentifier(name string) string
}

// Opener constructs and opens a Connector from a decrypted config bag.
// One Opener is registered per domain.ConnectionType in the Registry.
type Opener func(ctx context.Context, config map[string]any) (Connector, error)
