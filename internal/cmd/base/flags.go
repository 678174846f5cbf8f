package base

import (
	"bytes"
	"flag"
	"fmt"
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

const helpWrapWidth = 76

// FlagSet wraps flag.FlagSet to render option help in the CLI style.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet wraps f. Parse errors are returned instead of printed.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	f.SetOutput(new(bytes.Buffer))
	return &FlagSet{FlagSet: f}
}

// Help renders every flag with its default and wrapped usage text.
func (f *FlagSet) Help() string {
	var out bytes.Buffer
	out.WriteString("\n\nOptions:\n")

	f.VisitAll(func(fl *flag.Flag) {
		fmt.Fprintf(&out, "\n  -%s", fl.Name)
		if fl.DefValue != "" && fl.DefValue != "false" {
			fmt.Fprintf(&out, "=%s", fl.DefValue)
		}
		out.WriteString("\n")

		for _, line := range strings.Split(wordwrap.WrapString(fl.Usage, helpWrapWidth-6), "\n") {
			fmt.Fprintf(&out, "      %s\n", line)
		}
	})

	return strings.TrimRight(out.String(), "\n")
}

// StringSliceVar is a repeatable string flag.
type StringSliceVar []string

func (s *StringSliceVar) String() string {
	return strings.Join(*s, ",")
}

func (s *StringSliceVar) Set(v string) error {
	*s = append(*s, v)
	return nil
}
