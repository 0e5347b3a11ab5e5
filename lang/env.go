package lang

import "strings"

// Lookup resolves an environment variable by name. The parser calls it to
// resolve %env references.
type Lookup func(name string) (value string, ok bool)

// MapLookup returns a Lookup backed by a map.
func MapLookup(env map[string]string) Lookup {
	return func(name string) (string, bool) {
		v, ok := env[name]

		return v, ok
	}
}

// EnvironLookup returns a Lookup backed by a "KEY=VALUE" slice as produced
// by os.Environ.
func EnvironLookup(environ []string) Lookup {
	env := make(map[string]string, len(environ))

	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if ok {
			env[key] = value
		}
	}

	return MapLookup(env)
}
