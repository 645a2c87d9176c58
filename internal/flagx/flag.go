// Package flagx contains small helpers around spf13/pflag shared by the
// datamarket binaries.
package flagx

import (
	"io"

	"github.com/spf13/pflag"
)

// NewFlagSet returns a flag set that tolerates flags it does not know
// about. Each binary parses os.Args twice: once to locate the JSON config
// file and once for the full set, so the first pass must not fail on the
// rest of the command line.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	return fs
}

// ConfigPath extracts the value of -c/--config from args. Everything else
// is ignored. An empty string means no config file was given.
func ConfigPath(args []string) string {
	var path string

	fs := NewFlagSet("config")
	fs.StringVarP(&path, "config", "c", "", "path to JSON config file")
	_ = fs.Parse(args)

	return path
}
