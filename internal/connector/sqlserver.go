package connector

import (
	"context"
	"fmt"
	"net/url"

	_ "github.com/denisenkom/go-mssqldb"
)

var sqlserverSpec = dialectSpec{
	name:  "sqlserver",
	quote: quoteBracket,
	listSchemasSQL: `SELECT schema_name FROM information_schema.schemata
		WHERE schema_name NOT IN ('sys', 'INFORMATION_SCHEMA', 'guest', 'db_owner')`,
	listTablesSQL: `SELECT table_name FROM information_schema.tables WHERE table_schema = @p1 ORDER BY table_name`,
	listColumnsSQL: `SELECT column_name, data_type, is_nullable FROM information_schema.columns
		WHERE table_schema = @p1 AND table_name = @p2 ORDER BY ordinal_position`,
}

func openSQLServer(ctx context.Context, config map[string]any) (Connector, error) {
	dsn, err := requireString(config, "dsn", "sqlserver")
	if err != nil {
		host, herr := requireString(config, "host", "sqlserver")
		if herr != nil {
			return nil, err
		}
		port := optionalString(config, "port", "1433")
		user, uerr := requireString(config, "user", "sqlserver")
		if uerr != nil {
			return nil, uerr
		}
		password := optionalString(config, "password", "")
		database := optionalString(config, "database", "")
		q := url.Values{}
		q.Set("database", database)
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(user, password),
			Host:     fmt.Sprintf("%s:%s", host, port),
			RawQuery: q.Encode(),
		}
		dsn = u.String()
	}
	return openGenericSQL(ctx, "sqlserver", dsn, sqlserverSpec)
}
