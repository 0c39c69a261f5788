package connector

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// bigqueryConnector uses the native Google Cloud SDK rather than a
// database/sql driver: BigQuery's job-based execution model (async query
// jobs, no persistent connection) doesn't map cleanly onto database/sql's
// connection-pool abstraction.
type bigqueryConnector struct {
	client    *bigquery.Client
	projectID string
}

func openBigQuery(ctx context.Context, config map[string]any) (Connector, error) {
	projectID, err := requireString(config, "project_id", "bigquery")
	if err != nil {
		return nil, err
	}

	opts := []option.ClientOption{}
	if credsJSON, ok := config["credentials_json"]; ok {
		if s, ok := credsJSON.(string); ok && s != "" {
			opts = append(opts, option.WithCredentialsJSON([]byte(s)))
		}
	}

	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, &ConnectionError{Dialect: "bigquery", Op: "open", Err: err}
	}
	return &bigqueryConnector{client: client, projectID: projectID}, nil
}

func (c *bigqueryConnector) Test(ctx context.Context) error {
	q := c.client.Query("SELECT 1")
	it, err := q.Read(ctx)
	if err != nil {
		return &ConnectionError{Dialect: "bigquery", Op: "test", Err: err}
	}
	var row []bigquery.Value
	if err := it.Next(&row); err != nil && err != iterator.Done {
		return &ConnectionError{Dialect: "bigquery", Op: "test", Err: err}
	}
	return nil
}

func (c *bigqueryConnector) Close(ctx context.Context) error {
	return c.client.Close()
}

func (c *bigqueryConnector) QuoteIdentifier(name string) string {
	return quoteBacktick(name)
}

func (c *bigqueryConnector) Execute(ctx context.Context, query string) ([]Row, error) {
	it, err := c.client.Query(query).Read(ctx)
	if err != nil {
		return nil, &ExecutionError{Dialect: "bigquery", SQL: query, Err: err}
	}
	var out []Row
	for {
		var vals map[string]bigquery.Value
		err := it.Next(&vals)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, &ExecutionError{Dialect: "bigquery", SQL: query, Err: err}
		}
		row := make(Row, len(vals))
		for k, v := range vals {
			row[k] = v
		}
		out = append(out, row)
	}
	return out, nil
}

func (c *bigqueryConnector) ExecuteScalar(ctx context.Context, query string) (any, error) {
	it, err := c.client.Query(query).Read(ctx)
	if err != nil {
		return nil, &ExecutionError{Dialect: "bigquery", SQL: query, Err: err}
	}
	var row []bigquery.Value
	if err := it.Next(&row); err != nil {
		return nil, &ExecutionError{Dialect: "bigquery", SQL: query, Err: err}
	}
	if len(row) == 0 {
		return nil, nil
	}
	return row[0], nil
}

func (c *bigqueryConnector) ExecuteSensorSQL(ctx context.Context, query string) (*float64, error) {
	it, err := c.client.Query(query).Read(ctx)
	if err != nil {
		return nil, nil // execution failure degrades to null
	}
	var row []bigquery.Value
	if err := it.Next(&row); err != nil || len(row) == 0 {
		return nil, nil
	}
	return toFloat64(row[0]), nil
}

func (c *bigqueryConnector) ListSchemas(ctx context.Context) ([]string, error) {
	var out []string
	it := c.client.Datasets(ctx)
	for {
		ds, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, &ExecutionError{Dialect: "bigquery", SQL: "list datasets", Err: err}
		}
		out = append(out, ds.DatasetID)
	}
	return out, nil
}

func (c *bigqueryConnector) ListTables(ctx context.Context, schema string) ([]TableInfo, error) {
	var out []TableInfo
	it := c.client.Dataset(schema).Tables(ctx)
	for {
		t, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, &ExecutionError{Dialect: "bigquery", SQL: "list tables", Err: err}
		}
		out = append(out, TableInfo{Schema: schema, Name: t.TableID})
	}
	return out, nil
}

func (c *bigqueryConnector) ListColumns(ctx context.Context, schema, table string) ([]ColumnInfo, error) {
	md, err := c.client.Dataset(schema).Table(table).Metadata(ctx)
	if err != nil {
		return nil, &ExecutionError{Dialect: "bigquery", SQL: fmt.Sprintf("metadata %s.%s", schema, table), Err: err}
	}
	out := make([]ColumnInfo, 0, len(md.Schema))
	for _, f := range md.Schema {
		out = append(out, ColumnInfo{
			Name:     f.Name,
			DataType: string(f.Type),
			Nullable: !f.Required,
		})
	}
	return out, nil
}
