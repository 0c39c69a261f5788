package domain

import "time"

// ConnectionType is the SQL dialect a Connection speaks. The connector
// registry (internal/connector) keeps one adapter per value.
type ConnectionType string

const (
	ConnectionPostgreSQL ConnectionType = "postgresql"
	ConnectionMySQL      ConnectionType = "mysql"
	ConnectionSQLServer  ConnectionType = "sqlserver"
	ConnectionBigQuery   ConnectionType = "bigquery"
	ConnectionSnowflake  ConnectionType = "snowflake"
	ConnectionRedshift   ConnectionType = "redshift"
	ConnectionDuckDB     ConnectionType = "duckdb"
	ConnectionOracle     ConnectionType = "oracle"
	ConnectionDatabricks ConnectionType = "databricks"
)

var ValidConnectionTypes = []ConnectionType{
	ConnectionPostgreSQL, ConnectionMySQL, ConnectionSQLServer, ConnectionBigQuery,
	ConnectionSnowflake, ConnectionRedshift, ConnectionDuckDB, ConnectionOracle, ConnectionDatabricks,
}

func (t ConnectionType) Valid() bool {
	for _, v := range ValidConnectionTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Connection is a registered data source. EncryptedConfig is the
// authenticated-encryption ciphertext of a dialect-specific JSON config bag
// (host, port, database, credentials, …); see internal/crypto.
type Connection struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	Type            ConnectionType `json:"type"`
	EncryptedConfig []byte         `json:"-"`
	IsActive        bool           `json:"isActive"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}
