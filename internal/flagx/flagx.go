// Package flagx lets several components parse their own flags out of one
// argument list without tripping over each other's flags.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// Known maps a flag as written on the command line ("-d", "-config") to
// whether it takes a separate value. Boolean flags map to false.
type Known map[string]bool

// FilterArgs returns the arguments in args that belong to flags in known,
// keeping their values. Both "-f value" and "-f=value" forms are accepted.
// A valued flag followed by a dash-prefixed token is kept without a value.
func FilterArgs(args []string, known Known) []string {
	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if _, found := known[name]; found {
				filtered = append(filtered, arg)
			}
			continue
		}

		takesValue, ok := known[arg]
		if !ok {
			continue
		}
		filtered = append(filtered, arg)
		if takesValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// JsonConfigFlags returns the config file path given with -c or -config, or
// an empty string. The last occurrence wins.
func JsonConfigFlags(args []string) string {
	var config string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&config, "config", "", "path to config file")
	fs.StringVar(&config, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, Known{"-c": true, "-config": true}))

	return config
}
