// Package output renders query results for the sharepoint CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hashicorp-forge/hermes-sharepoint/pkg/sharepoint"
)

// Format represents the output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists the accepted -format values.
var Formats = []Format{FormatJSON, FormatYAML, FormatTable}

// ParseFormat validates a -format flag value.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q, expected one of json, yaml, table", s)
}

// Formatter formats data for output.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatTable:
		return &TableFormatter{}
	default:
		return &JSONFormatter{}
	}
}

// JSONFormatter formats data as JSON.
type JSONFormatter struct{}

// Format formats data as indented JSON.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// YAMLFormatter formats data as YAML.
type YAMLFormatter struct{}

// Format formats data as YAML.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// Render writes a query result with f. Objects are written as the fields
// the server returned; raw bodies are written as is.
func Render(w io.Writer, f Formatter, res *sharepoint.Result) error {
	if res != nil && res.Kind == sharepoint.ResultRaw {
		_, err := w.Write(res.Raw)
		return err
	}
	if tf, ok := f.(*TableFormatter); ok {
		return tf.Format(w, res)
	}
	return f.Format(w, Data(res))
}

// Data converts a result into plain maps, slices and scalars.
func Data(res *sharepoint.Result) any {
	if res == nil {
		return nil
	}

	switch res.Kind {
	case sharepoint.ResultObject:
		return res.Object.Data()
	case sharepoint.ResultSequence:
		items := make([]map[string]any, 0, len(res.Objects))
		for _, obj := range res.Objects {
			items = append(items, obj.Data())
		}
		return items
	case sharepoint.ResultValue:
		return res.Value
	case sharepoint.ResultRaw:
		return string(res.Raw)
	default:
		return nil
	}
}
