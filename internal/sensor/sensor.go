// Package sensor holds the static catalog of parameterized SQL templates
// A Sensor renders into SQL that a connector executes to
// produce a single float (or null) observation for a check.
package sensor

import (
	"bytes"
	"fmt"
	"text/template"
)

// Type names a sensor in the closed catalog.
type Type string

// Sensor is {name, is_column_level, template, default_params}. Template is
// rendered with Go's text/template: identifiers arrive pre-quoted by the
// connector, so the template layer never needs to escape SQL itself.
type Sensor struct {
	Name           Type
	IsColumnLevel  bool
	Template       string
	DefaultParams  map[string]any
	AllowsCustomSQL bool
}

// Params is the merged, flattened input to Render: schema/table/column
// names (already quoted), sensor defaults, and any rule-params that also
// double as template inputs (e.g. a regex pattern).
type Params map[string]any

// Render executes the sensor's template against params. The result must
// project exactly one column aliased sensor_value; Render does not itself
// enforce that shape since it has no access to the executed result — the
// connector and executor treat any other shape as an execution error.
func (s Sensor) Render(params Params) (string, error) {
	tmpl, err := template.New(string(s.Name)).Parse(s.Template)
	if err != nil {
		return "", fmt.Errorf("sensor %s: parse template: %w", s.Name, err)
	}
	merged := make(Params, len(s.DefaultParams)+len(params))
	for k, v := range s.DefaultParams {
		merged[k] = v
	}
	for k, v := range params {
		merged[k] = v
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, merged); err != nil {
		return "", fmt.Errorf("sensor %s: render: %w", s.Name, err)
	}
	return buf.String(), nil
}

// Catalog looks up a registered Sensor by name.
func Catalog(name Type) (Sensor, bool) {
	s, ok := catalog[name]
	return s, ok
}
