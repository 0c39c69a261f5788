package connector

import (
	"context"
	"database/sql"
	"fmt"
)

// dialectSpec is the small set of per-dialect differences a database/sql
// driver needs beyond the driver name and DSN: how to enumerate schemas,
// tables, and columns, and how to quote an identifier.
type dialectSpec struct {
	name             string
	quote            func(string) string
	listSchemasSQL   string
	listTablesSQL    string // takes one arg: schema
	listColumnsSQL   string // takes two args: schema, table
	noSchemaConcept  bool   // true makes ListSchemas return just "main"; no dialect currently sets it
}

// genericSQLConnector adapts any database/sql driver to the Connector
// capability set. Every dialect except Postgres (pgx-native, matching the
// teacher's own store) and BigQuery (native SDK, no database/sql driver)
// is built on this.
type genericSQLConnector struct {
	db   *sql.DB
	spec dialectSpec
}

func openGenericSQL(ctx context.Context, driverName, dsn string, spec dialectSpec) (Connector, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, &ConnectionError{Dialect: spec.name, Op: "open", Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &ConnectionError{Dialect: spec.name, Op: "network", Err: err}
	}
	return &genericSQLConnector{db: db, spec: spec}, nil
}

func (c *genericSQLConnector) Test(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return &ConnectionError{Dialect: c.spec.name, Op: "test", Err: err}
	}
	return nil
}

func (c *genericSQLConnector) Close(ctx context.Context) error {
	return c.db.Close()
}

func (c *genericSQLConnector) QuoteIdentifier(name string) string {
	return c.spec.quote(name)
}

func (c *genericSQLConnector) Execute(ctx context.Context, query string) ([]Row, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &ExecutionError{Dialect: c.spec.name, SQL: query, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &ExecutionError{Dialect: c.spec.name, SQL: query, Err: err}
	}

	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &ExecutionError{Dialect: c.spec.name, SQL: query, Err: err}
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &ExecutionError{Dialect: c.spec.name, SQL: query, Err: err}
	}
	return out, nil
}

func (c *genericSQLConnector) ExecuteScalar(ctx context.Context, query string) (any, error) {
	var v any
	if err := c.db.QueryRowContext(ctx, query).Scan(&v); err != nil {
		return nil, &ExecutionError{Dialect: c.spec.name, SQL: query, Err: err}
	}
	return v, nil
}

// ExecuteSensorSQL is the fast path: runs sql, expects exactly one
// column aliased sensor_value, returns its float or nil on NULL/failure.
func (c *genericSQLConnector) ExecuteSensorSQL(ctx context.Context, query string) (*float64, error) {
	var v any
	if err := c.db.QueryRowContext(ctx, query).Scan(&v); err != nil {
		return nil, nil // execution failure degrades to null, not an error
	}
	return toFloat64(v), nil
}

func (c *genericSQLConnector) ListSchemas(ctx context.Context) ([]string, error) {
	if c.spec.noSchemaConcept {
		return []string{"main"}, nil
	}
	rows, err := c.db.QueryContext(ctx, c.spec.listSchemasSQL)
	if err != nil {
		return nil, &ExecutionError{Dialect: c.spec.name, SQL: c.spec.listSchemasSQL, Err: err}
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (c *genericSQLConnector) ListTables(ctx context.Context, schema string) ([]TableInfo, error) {
	rows, err := c.db.QueryContext(ctx, c.spec.listTablesSQL, schema)
	if err != nil {
		return nil, &ExecutionError{Dialect: c.spec.name, SQL: c.spec.listTablesSQL, Err: err}
	}
	defer rows.Close()
	var out []TableInfo
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, TableInfo{Schema: schema, Name: name})
	}
	return out, rows.Err()
}

func (c *genericSQLConnector) ListColumns(ctx context.Context, schema, table string) ([]ColumnInfo, error) {
	rows, err := c.db.QueryContext(ctx, c.spec.listColumnsSQL, schema, table)
	if err != nil {
		return nil, &ExecutionError{Dialect: c.spec.name, SQL: c.spec.listColumnsSQL, Err: err}
	}
	defer rows.Close()
	var out []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		var nullable string
		if err := rows.Scan(&col.Name, &col.DataType, &nullable); err != nil {
			return nil, err
		}
		col.Nullable = nullable == "YES" || nullable == "Y" || nullable == "1"
		out = append(out, col)
	}
	return out, rows.Err()
}

// requireString is a small config-access helper shared by every dialect's
// constructor to turn a missing/ill-typed key into a clear ConnectionError.
func requireString(config map[string]any, key, dialect string) (string, error) {
	v, ok := config[key]
	if !ok {
		return "", &ConnectionError{Dialect: dialect, Op: "open", Err: fmt.Errorf("missing required config key %q", key)}
	}
	s, ok := v.(string)
	if !ok {
		return "", &ConnectionError{Dialect: dialect, Op: "open", Err: fmt.Errorf("config key %q must be a string", key)}
	}
	return s, nil
}

func optionalString(config map[string]any, key, def string) string {
	if v, ok := config[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}
