// Package flagx helps several independent flag sets share os.Args: each
// consumer picks out only the flags it understands before parsing.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// flagName strips one or two leading dashes and any "=value" suffix.
// It returns false for arguments that are not flags.
func flagName(arg string) (string, bool) {
	if len(arg) < 2 || arg[0] != '-' || arg == "--" {
		return "", false
	}
	name := strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
	if i := strings.IndexByte(name, '='); i >= 0 {
		name = name[:i]
	}
	return name, name != ""
}

// Pick returns the arguments belonging to the named flags, keeping their
// order. Names are given without dashes; both "-name" and "--name" forms are
// recognised, as are "-name=value" and "-name value". A value is only taken
// from the next argument when it does not itself look like a flag.
func Pick(args []string, names ...string) []string {
	known := make(map[string]struct{}, len(names))
	for _, n := range names {
		known[strings.TrimLeft(n, "-")] = struct{}{}
	}

	picked := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		name, ok := flagName(args[i])
		if !ok {
			continue
		}
		if _, ok := known[name]; !ok {
			continue
		}
		picked = append(picked, args[i])
		if strings.Contains(args[i], "=") {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			picked = append(picked, args[i+1])
			i++
		}
	}
	return picked
}

// ConfigPath extracts the JSON config file path given via -c or -config.
// It returns "" when neither flag is present.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(Pick(args, "c", "config"))

	return path
}
