package suite

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Builtin loads one of the embedded suites by name ("kitchen", "meals").
// The embedded suites reproduce the fixed invocation orders of the original
// shell smoke scripts, one per service.
func Builtin(name string) (*Suite, error) {
	data, err := BuiltinBytes(name)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		// Embedded suites ship with the binary; a parse failure here is a
		// packaging bug, not user error.
		return nil, fmt.Errorf("built-in suite %q is broken: %w", name, err)
	}
	return s, nil
}

// BuiltinBytes returns the raw YAML of an embedded suite.
func BuiltinBytes(name string) ([]byte, error) {
	data, err := builtinFS.ReadFile("builtin/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown built-in suite %q (available: %s)",
			name, strings.Join(BuiltinNames(), ", "))
	}
	return data, nil
}

// BuiltinNames lists the embedded suite names in sorted order.
func BuiltinNames() []string {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}
