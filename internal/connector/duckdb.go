package connector

import (
	"context"

	_ "github.com/marcboeker/go-duckdb"
)

var duckdbSpec = dialectSpec{
	name:            "duckdb",
	quote:           quoteDouble,
	noSchemaConcept: false,
	listSchemasSQL:  `SELECT schema_name FROM information_schema.schemata WHERE schema_name NOT IN ('information_schema', 'pg_catalog')`,
	listTablesSQL:   `SELECT table_name FROM information_schema.tables WHERE table_schema = ? ORDER BY table_name`,
	listColumnsSQL: `SELECT column_name, data_type, is_nullable FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position`,
}

// DuckDB connections are file-backed or in-memory; config carries a
// "path" key (":memory:" or a filesystem path to a .duckdb file).
func openDuckDB(ctx context.Context, config map[string]any) (Connector, error) {
	path := optionalString(config, "path", ":memory:")
	return openGenericSQL(ctx, "duckdb", path, duckdbSpec)
}
