package connector

import (
	"context"
	"fmt"

	_ "github.com/databricks/databricks-sql-go"
)

var databricksSpec = dialectSpec{
	name:  "databricks",
	quote: quoteBacktick,
	listSchemasSQL: `SELECT schema_name FROM information_schema.schemata
		WHERE schema_name NOT IN ('information_schema')`,
	listTablesSQL: `SELECT table_name FROM information_schema.tables WHERE table_schema = ? ORDER BY table_name`,
	listColumnsSQL: `SELECT column_name, data_type, is_nullable FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position`,
}

func openDatabricks(ctx context.Context, config map[string]any) (Connector, error) {
	dsn, err := requireString(config, "dsn", "databricks")
	if err != nil {
		host, herr := requireString(config, "host", "databricks")
		if herr != nil {
			return nil, err
		}
		httpPath, perr := requireString(config, "http_path", "databricks")
		if perr != nil {
			return nil, perr
		}
		token, terr := requireString(config, "token", "databricks")
		if terr != nil {
			return nil, terr
		}
		dsn = fmt.Sprintf("token:%s@%s:443%s", token, host, httpPath)
	}
	return openGenericSQL(ctx, "databricks", dsn, databricksSpec)
}
