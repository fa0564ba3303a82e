package settings

import (
	"fmt"
	"sort"
	"strings"
)

// Env is a set of environment variables keyed by name.
// The derivation works on a private copy; the result is frozen inside Settings.
type Env map[string]string

// NewEnv builds an Env from KEY=VALUE pairs as returned by os.Environ.
// Entries without '=' are ignored; later duplicates win.
func NewEnv(pairs []string) Env {
	env := make(Env, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			continue
		}
		env[name] = value
	}
	return env
}

// Lookup returns the value of name and whether it is present.
func (e Env) Lookup(name string) (string, bool) {
	v, ok := e[name]
	return v, ok
}

// Get returns the value of name, or "" when absent.
func (e Env) Get(name string) string {
	return e[name]
}

// Set assigns name unconditionally.
func (e Env) Set(name, value string) {
	e[name] = value
}

// SetDefault assigns name only when it is absent. A present but empty value is kept.
func (e Env) SetDefault(name, value string) {
	if _, ok := e[name]; !ok {
		e[name] = value
	}
}

// SetBrittle forces name to value. An existing different value is a conflict:
// something downstream depends on exactly this value.
func (e Env) SetBrittle(name, value string) error {
	if existing, ok := e[name]; ok && existing != value {
		return fmt.Errorf("%w: sorry, we need to set %s (we want to set it to %s, found %s)", ErrBrittleConflict, name, value, existing)
	}
	e[name] = value
	return nil
}

// SetSynonym makes two names interchangeable. Non-empty values must agree; a
// non-empty value on one side seeds the other when it is absent.
func (e Env) SetSynonym(name1, name2 string) error {
	v1, v2 := e[name1], e[name2]
	if v1 != "" && v2 != "" && v1 != v2 {
		return fmt.Errorf("%w: %s and %s are synonyms and should be the same", ErrSynonymConflict, name1, name2)
	}
	if v1 != "" {
		e.SetDefault(name2, v1)
	}
	if v2 != "" {
		e.SetDefault(name1, v2)
	}
	return nil
}

// Clone returns an independent copy.
func (e Env) Clone() Env {
	out := make(Env, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Environ returns the variables as sorted KEY=VALUE pairs.
func (e Env) Environ() []string {
	out := make([]string, 0, len(e))
	for k, v := range e {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
