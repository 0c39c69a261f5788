package connector

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/sijms/go-ora/v2"
)

// Oracle's catalog is case-folded to upper-case by default, so identifiers
// are upper-cased before quoting per Oracle's identifier rules.
func quoteOracle(name string) string {
	return quoteDouble(strings.ToUpper(name))
}

var oracleSpec = dialectSpec{
	name:  "oracle",
	quote: quoteOracle,
	listSchemasSQL: `SELECT username FROM all_users
		WHERE username NOT IN ('SYS', 'SYSTEM', 'OUTLN', 'XDB', 'ORDSYS', 'ORDDATA', 'CTXSYS')`,
	listTablesSQL: `SELECT table_name FROM all_tables WHERE owner = :1 ORDER BY table_name`,
	listColumnsSQL: `SELECT column_name, data_type, nullable FROM all_tab_columns
		WHERE owner = :1 AND table_name = :2 ORDER BY column_id`,
}

func openOracle(ctx context.Context, config map[string]any) (Connector, error) {
	dsn, err := requireString(config, "dsn", "oracle")
	if err != nil {
		host, herr := requireString(config, "host", "oracle")
		if herr != nil {
			return nil, err
		}
		port := optionalString(config, "port", "1521")
		user, uerr := requireString(config, "user", "oracle")
		if uerr != nil {
			return nil, uerr
		}
		password := optionalString(config, "password", "")
		service, serr := requireString(config, "service", "oracle")
		if serr != nil {
			return nil, serr
		}
		dsn = fmt.Sprintf("oracle://%s:%s@%s:%s/%s", user, password, host, port, service)
	}
	return openGenericSQL(ctx, "oracle", dsn, oracleSpec)
}
