package connector

import (
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

var mysqlSpec = dialectSpec{
	name:  "mysql",
	quote: quoteBacktick,
	listSchemasSQL: `SELECT schema_name FROM information_schema.schemata
		WHERE schema_name NOT IN ('mysql', 'information_schema', 'performance_schema', 'sys')`,
	listTablesSQL: `SELECT table_name FROM information_schema.tables WHERE table_schema = ? ORDER BY table_name`,
	listColumnsSQL: `SELECT column_name, data_type, is_nullable FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position`,
}

func openMySQL(ctx context.Context, config map[string]any) (Connector, error) {
	dsn, err := requireString(config, "dsn", "mysql")
	if err != nil {
		host, herr := requireString(config, "host", "mysql")
		if herr != nil {
			return nil, err
		}
		port := optionalString(config, "port", "3306")
		user, uerr := requireString(config, "user", "mysql")
		if uerr != nil {
			return nil, uerr
		}
		password := optionalString(config, "password", "")
		database, derr := requireString(config, "database", "mysql")
		if derr != nil {
			return nil, derr
		}
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", user, password, host, port, database)
	}
	return openGenericSQL(ctx, "mysql", dsn, mysqlSpec)
}
