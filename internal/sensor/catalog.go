package sensor

// catalog is the static, closed sensor set. Template placeholders receive
// pre-quoted identifiers (QuotedSchema, QuotedTable, QuotedColumn) and any
// rule parameters that double as render inputs. Every template must
// project exactly one column aliased sensor_value.
var catalog = map[Type]Sensor{
	// --- volume ---
	"row_count": {
		Name: "row_count", IsColumnLevel: false,
		Template: `SELECT COUNT(*) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},
	"row_count_change": {
		Name: "row_count_change", IsColumnLevel: false,
		Template: `SELECT COUNT(*) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},

	// --- schema ---
	"column_count": {
		Name: "column_count", IsColumnLevel: false,
		Template: `SELECT COUNT(*) AS sensor_value FROM information_schema.columns WHERE table_schema = '{{.SchemaName}}' AND table_name = '{{.TableName}}'`,
	},
	"column_exists": {
		Name: "column_exists", IsColumnLevel: true,
		Template: `SELECT CASE WHEN COUNT(*) > 0 THEN 1 ELSE 0 END AS sensor_value FROM information_schema.columns WHERE table_schema = '{{.SchemaName}}' AND table_name = '{{.TableName}}' AND column_name = '{{.ColumnName}}'`,
	},

	// --- timeliness ---
	"data_freshness": {
		Name: "data_freshness", IsColumnLevel: true,
		Template:      `SELECT {{.DateDiffExpr}} AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}`,
		DefaultParams: map[string]any{"DateDiffExpr": "0"},
	},
	"data_staleness": {
		Name: "data_staleness", IsColumnLevel: true,
		Template: `SELECT MAX({{.QuotedColumn}}) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},

	// --- nulls ---
	"nulls_count": {
		Name: "nulls_count", IsColumnLevel: true,
		Template: `SELECT COUNT(*) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}} WHERE {{.QuotedColumn}} IS NULL{{if .PartitionFilter}} AND {{.PartitionFilter}}{{end}}`,
	},
	"nulls_percent": {
		Name: "nulls_percent", IsColumnLevel: true,
		Template: `SELECT 100.0 * SUM(CASE WHEN {{.QuotedColumn}} IS NULL THEN 1 ELSE 0 END) / NULLIF(COUNT(*), 0) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},

	// --- uniqueness ---
	"distinct_count": {
		Name: "distinct_count", IsColumnLevel: true,
		Template: `SELECT COUNT(DISTINCT {{.QuotedColumn}}) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},
	"duplicate_percent": {
		Name: "duplicate_percent", IsColumnLevel: true,
		Template: `SELECT 100.0 * (COUNT(*) - COUNT(DISTINCT {{.QuotedColumn}})) / NULLIF(COUNT(*), 0) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},

	// --- numeric ---
	"min_value": {
		Name: "min_value", IsColumnLevel: true,
		Template: `SELECT MIN({{.QuotedColumn}}) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},
	"max_value": {
		Name: "max_value", IsColumnLevel: true,
		Template: `SELECT MAX({{.QuotedColumn}}) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},
	"sum_value": {
		Name: "sum_value", IsColumnLevel: true,
		Template: `SELECT SUM({{.QuotedColumn}}) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},
	"mean_value": {
		Name: "mean_value", IsColumnLevel: true,
		Template: `SELECT AVG({{.QuotedColumn}}) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},

	// --- statistical ---
	"stddev_sample": {
		Name: "stddev_sample", IsColumnLevel: true,
		Template: `SELECT STDDEV_SAMP({{.QuotedColumn}}) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},
	"variance_sample": {
		Name: "variance_sample", IsColumnLevel: true,
		Template: `SELECT VAR_SAMP({{.QuotedColumn}}) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},

	// --- percentile ---
	"percentile": {
		Name: "percentile", IsColumnLevel: true,
		Template:      `SELECT PERCENTILE_CONT({{.Percentile}}) WITHIN GROUP (ORDER BY {{.QuotedColumn}}) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
		DefaultParams: map[string]any{"Percentile": 0.5},
	},

	// --- text ---
	"text_min_length": {
		Name: "text_min_length", IsColumnLevel: true,
		Template: `SELECT MIN(LENGTH({{.QuotedColumn}})) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},
	"text_max_length": {
		Name: "text_max_length", IsColumnLevel: true,
		Template: `SELECT MAX(LENGTH({{.QuotedColumn}})) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},
	"empty_text_percent": {
		Name: "empty_text_percent", IsColumnLevel: true,
		Template: `SELECT 100.0 * SUM(CASE WHEN TRIM({{.QuotedColumn}}) = '' THEN 1 ELSE 0 END) / NULLIF(COUNT(*), 0) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},

	// --- pattern ---
	"regex_match_percent": {
		Name: "regex_match_percent", IsColumnLevel: true,
		Template: `SELECT 100.0 * SUM(CASE WHEN {{.QuotedColumn}} ~ '{{.Pattern}}' THEN 1 ELSE 0 END) / NULLIF(COUNT(*), 0) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},

	// --- PII ---
	"contains_email_percent": {
		Name: "contains_email_percent", IsColumnLevel: true,
		Template:      `SELECT 100.0 * SUM(CASE WHEN {{.QuotedColumn}} ~ '{{.EmailPattern}}' THEN 1 ELSE 0 END) / NULLIF(COUNT(*), 0) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
		DefaultParams: map[string]any{"EmailPattern": `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`},
	},
	"contains_phone_percent": {
		Name: "contains_phone_percent", IsColumnLevel: true,
		Template:      `SELECT 100.0 * SUM(CASE WHEN {{.QuotedColumn}} ~ '{{.PhonePattern}}' THEN 1 ELSE 0 END) / NULLIF(COUNT(*), 0) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
		DefaultParams: map[string]any{"PhonePattern": `\+?[0-9][0-9\-\s]{7,}`},
	},

	// --- geographic ---
	"valid_latitude_percent": {
		Name: "valid_latitude_percent", IsColumnLevel: true,
		Template: `SELECT 100.0 * SUM(CASE WHEN {{.QuotedColumn}} BETWEEN -90 AND 90 THEN 1 ELSE 0 END) / NULLIF(COUNT(*), 0) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},

	// --- boolean ---
	"true_percent": {
		Name: "true_percent", IsColumnLevel: true,
		Template: `SELECT 100.0 * SUM(CASE WHEN {{.QuotedColumn}} THEN 1 ELSE 0 END) / NULLIF(COUNT(*), 0) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},
	"false_percent": {
		Name: "false_percent", IsColumnLevel: true,
		Template: `SELECT 100.0 * SUM(CASE WHEN NOT {{.QuotedColumn}} THEN 1 ELSE 0 END) / NULLIF(COUNT(*), 0) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},

	// --- datetime ---
	"future_date_percent": {
		Name: "future_date_percent", IsColumnLevel: true,
		Template: `SELECT 100.0 * SUM(CASE WHEN {{.QuotedColumn}} > CURRENT_TIMESTAMP THEN 1 ELSE 0 END) / NULLIF(COUNT(*), 0) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},

	// --- referential ---
	"foreign_key_found_percent": {
		Name: "foreign_key_found_percent", IsColumnLevel: true,
		Template: `SELECT 100.0 * SUM(CASE WHEN EXISTS (
			SELECT 1 FROM {{.QuotedRefSchema}}.{{.QuotedRefTable}} r WHERE r.{{.QuotedRefColumn}} = t.{{.QuotedColumn}}
		) THEN 1 ELSE 0 END) / NULLIF(COUNT(*), 0) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}} t{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},

	// --- custom SQL ---
	"sql_aggregate_value": {
		Name: "sql_aggregate_value", IsColumnLevel: false, AllowsCustomSQL: true,
		Template: `{{.CustomSQL}}`,
	},
	"sql_condition_passed_percent": {
		Name: "sql_condition_passed_percent", IsColumnLevel: false, AllowsCustomSQL: true,
		Template: `SELECT 100.0 * SUM(CASE WHEN {{.CustomSQL}} THEN 1 ELSE 0 END) / NULLIF(COUNT(*), 0) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},

	// --- cross-table match / cross-source (rendered identically on two connections) ---
	"row_count_match_percent": {
		Name: "row_count_match_percent", IsColumnLevel: false,
		Template: `SELECT COUNT(*) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},
	"sum_match_percent": {
		Name: "sum_match_percent", IsColumnLevel: true,
		Template: `SELECT SUM({{.QuotedColumn}}) AS sensor_value FROM {{.QuotedSchema}}.{{.QuotedTable}}{{if .PartitionFilter}} WHERE {{.PartitionFilter}}{{end}}`,
	},
}
