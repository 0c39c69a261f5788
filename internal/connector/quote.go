package connector

import "strings"

// quoteDouble quotes an identifier with doubled double-quotes, the default
// for Postgres, Redshift, Snowflake, DuckDB, and Oracle (after upper-casing).
func quoteDouble(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteBacktick quotes an identifier with doubled backticks, used by MySQL,
// BigQuery, and Databricks.
func quoteBacktick(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// quoteBracket quotes an identifier SQL Server-style, doubling any
// embedded closing brackets.
func quoteBracket(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}
