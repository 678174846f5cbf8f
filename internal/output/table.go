package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/hashicorp-forge/hermes-sharepoint/pkg/sharepoint"
)

// TableFormatter writes one row per object with its type, identifier,
// title and URI. Anything that is not a result falls back to JSON.
type TableFormatter struct {
	NoHeaders bool
}

// Format formats data as a table.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	res, ok := data.(*sharepoint.Result)
	if !ok {
		return (&JSONFormatter{}).Format(w, data)
	}

	switch res.Kind {
	case sharepoint.ResultObject, sharepoint.ResultSequence:
	case sharepoint.ResultNone:
		return nil
	default:
		return (&JSONFormatter{}).Format(w, Data(res))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !f.NoHeaders {
		fmt.Fprintln(tw, "TYPE\tID\tTITLE\tURI")
	}
	for _, obj := range res.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			obj.TypeName(),
			cell(obj.Data(), "Id", "StringId"),
			cell(obj.Data(), "Title", "Name", "LoginName"),
			obj.Metadata().URI,
		)
	}
	return tw.Flush()
}

// cell returns the first present field of keys, formatted for display.
func cell(data map[string]any, keys ...string) string {
	for _, key := range keys {
		v, ok := data[key]
		if !ok || v == nil {
			continue
		}
		s := fmt.Sprint(v)
		return strings.ReplaceAll(s, "\t", " ")
	}
	return "-"
}
