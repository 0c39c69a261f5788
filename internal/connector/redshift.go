package connector

import (
	"context"
	"fmt"

	_ "github.com/lib/pq"
)

// Redshift speaks the Postgres wire protocol but has its own catalog
// quirks (no information_schema.schemata filtering convention, leader-node
// only system views); lib/pq is the stack's pure database/sql driver for it
// rather than pgx, keeping the native pgx path reserved for the platform's
// own Postgres dialect.
var redshiftSpec = dialectSpec{
	name:  "redshift",
	quote: quoteDouble,
	listSchemasSQL: `SELECT schema_name FROM information_schema.schemata
		WHERE schema_name NOT IN ('pg_catalog', 'information_schema', 'pg_internal')`,
	listTablesSQL: `SELECT table_name FROM information_schema.tables WHERE table_schema = $1 ORDER BY table_name`,
	listColumnsSQL: `SELECT column_name, data_type, is_nullable FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2 ORDER BY ordinal_position`,
}

func openRedshift(ctx context.Context, config map[string]any) (Connector, error) {
	dsn, err := requireString(config, "dsn", "redshift")
	if err != nil {
		host, herr := requireString(config, "host", "redshift")
		if herr != nil {
			return nil, err
		}
		port := optionalString(config, "port", "5439")
		user, uerr := requireString(config, "user", "redshift")
		if uerr != nil {
			return nil, uerr
		}
		password := optionalString(config, "password", "")
		database, derr := requireString(config, "database", "redshift")
		if derr != nil {
			return nil, derr
		}
		sslmode := optionalString(config, "sslmode", "require")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, database, sslmode)
	}
	return openGenericSQL(ctx, "postgres", dsn, redshiftSpec)
}
