package connector

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgresConnector talks to a monitored Postgres source over pgx/v5,
// the same driver the platform's own metadata store uses. Kept separate
// from genericSQLConnector so result rows retain pgx's native type
// decoding instead of going through database/sql's driver.Value boundary.
type postgresConnector struct {
	pool *pgxpool.Pool
}

func openPostgres(ctx context.Context, config map[string]any) (Connector, error) {
	dsn, err := requireString(config, "dsn", "postgresql")
	if err != nil {
		host, herr := requireString(config, "host", "postgresql")
		if herr != nil {
			return nil, err
		}
		port := optionalString(config, "port", "5432")
		user, uerr := requireString(config, "user", "postgresql")
		if uerr != nil {
			return nil, uerr
		}
		password := optionalString(config, "password", "")
		database, derr := requireString(config, "database", "postgresql")
		if derr != nil {
			return nil, derr
		}
		sslmode := optionalString(config, "sslmode", "require")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, database, sslmode)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, &ConnectionError{Dialect: "postgresql", Op: "open", Err: err}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &ConnectionError{Dialect: "postgresql", Op: "network", Err: err}
	}
	return &postgresConnector{pool: pool}, nil
}

func (c *postgresConnector) Test(ctx context.Context) error {
	if err := c.pool.Ping(ctx); err != nil {
		return &ConnectionError{Dialect: "postgresql", Op: "test", Err: err}
	}
	return nil
}

func (c *postgresConnector) Close(ctx context.Context) error {
	c.pool.Close()
	return nil
}

func (c *postgresConnector) QuoteIdentifier(name string) string {
	return quoteDouble(name)
}

func (c *postgresConnector) Execute(ctx context.Context, query string) ([]Row, error) {
	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, &ExecutionError{Dialect: "postgresql", SQL: query, Err: err}
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []Row
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, &ExecutionError{Dialect: "postgresql", SQL: query, Err: err}
		}
		row := make(Row, len(fields))
		for i, f := range fields {
			row[string(f.Name)] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &ExecutionError{Dialect: "postgresql", SQL: query, Err: err}
	}
	return out, nil
}

func (c *postgresConnector) ExecuteScalar(ctx context.Context, query string) (any, error) {
	var v any
	if err := c.pool.QueryRow(ctx, query).Scan(&v); err != nil {
		return nil, &ExecutionError{Dialect: "postgresql", SQL: query, Err: err}
	}
	return v, nil
}

func (c *postgresConnector) ExecuteSensorSQL(ctx context.Context, query string) (*float64, error) {
	var v any
	if err := c.pool.QueryRow(ctx, query).Scan(&v); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, nil // execution failure degrades to null
	}
	return toFloat64(v), nil
}

func (c *postgresConnector) ListSchemas(ctx context.Context) ([]string, error) {
	const q = `SELECT schema_name FROM information_schema.schemata
		WHERE schema_name NOT IN ('pg_catalog', 'information_schema') ORDER BY schema_name`
	rows, err := c.pool.Query(ctx, q)
	if err != nil {
		return nil, &ExecutionError{Dialect: "postgresql", SQL: q, Err: err}
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

func (c *postgresConnector) ListTables(ctx context.Context, schema string) ([]TableInfo, error) {
	const q = `SELECT table_name FROM information_schema.tables WHERE table_schema = $1 ORDER BY table_name`
	rows, err := c.pool.Query(ctx, q, schema)
	if err != nil {
		return nil, &ExecutionError{Dialect: "postgresql", SQL: q, Err: err}
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

func (c *postgresConnector) ListColumns(ctx context.Context, schema, table string) ([]ColumnInfo, error) {
	const q = `SELECT column_name, data_type, is_nullable FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2 ORDER BY ordinal_position`
	rows, err := c.pool.Query(ctx, q, schema, table)
	if err != nil {
		return nil, &ExecutionError{Dialect: "postgresql", SQL: q, Err: err}
	}
	defer rows.Close()
	var out []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		var nullable string
		if err := rows.Scan(&col.Name, &col.DataType, &nullable); err != nil {
			return nil, err
		}
		col.Nullable = nullable == "YES"
		out = append(out, col)
	}
	return out, rows.Err()
}
