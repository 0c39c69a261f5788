package connector

import (
	"context"
	"fmt"

	_ "github.com/snowflakedb/gosnowflake"
)

var snowflakeSpec = dialectSpec{
	name:  "snowflake",
	quote: quoteDouble,
	listSchemasSQL: `SELECT schema_name FROM information_schema.schemata
		WHERE schema_name NOT IN ('INFORMATION_SCHEMA')`,
	listTablesSQL: `SELECT table_name FROM information_schema.tables WHERE table_schema = ? ORDER BY table_name`,
	listColumnsSQL: `SELECT column_name, data_type, is_nullable FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position`,
}

func openSnowflake(ctx context.Context, config map[string]any) (Connector, error) {
	dsn, err := requireString(config, "dsn", "snowflake")
	if err != nil {
		account, aerr := requireString(config, "account", "snowflake")
		if aerr != nil {
			return nil, err
		}
		user, uerr := requireString(config, "user", "snowflake")
		if uerr != nil {
			return nil, uerr
		}
		password := optionalString(config, "password", "")
		database, derr := requireString(config, "database", "snowflake")
		if derr != nil {
			return nil, derr
		}
		warehouse := optionalString(config, "warehouse", "")
		dsn = fmt.Sprintf("%s:%s@%s/%s?warehouse=%s", user, password, account, database, warehouse)
	}
	return openGenericSQL(ctx, "snowflake", dsn, snowflakeSpec)
}
