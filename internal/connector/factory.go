package connector

import (
	"context"
	"fmt"

	"github.com/dqplatform/dq-engine/internal/domain"
)

// registry maps each supported ConnectionType to the opener that builds a
// live Connector from its decrypted config map. This is the dialect
// dispatch table.
var registry = map[domain.ConnectionType]Opener{
	domain.ConnectionPostgreSQL: openPostgres,
	domain.ConnectionMySQL:      openMySQL,
	domain.ConnectionSQLServer:  openSQLServer,
	domain.ConnectionBigQuery:   openBigQuery,
	domain.ConnectionSnowflake:  openSnowflake,
	domain.ConnectionRedshift:   openRedshift,
	domain.ConnectionDuckDB:     openDuckDB,
	domain.ConnectionOracle:     openOracle,
	domain.ConnectionDatabricks: openDatabricks,
}

// Open dispatches to the registered Opener for connType. Callers hold the
// decrypted config map only for the duration of this call.
func Open(ctx context.Context, connType domain.ConnectionType, config map[string]any) (Connector, error) {
	open, ok := registry[connType]
	if !ok {
		return nil, fmt.Errorf("connector: unsupported connection type %q", connType)
	}
	return open(ctx, config)
}
