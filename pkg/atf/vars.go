package atf

import "github.com/dkoosis/atfgo/pkg/engine"

// Vars holds -v configuration variables in command-line order. Setting a
// key again replaces its value without moving it. The zero value is ready
// to use.
type Vars struct {
	keys   []string
	values map[string]string
}

// Set stores value under key.
func (v *Vars) Set(key, value string) {
	if v.values == nil {
		v.values = make(map[string]string)
	}
	if _, ok := v.values[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.values[key] = value
}

// Get returns the value of key.
func (v *Vars) Get(key string) (string, bool) {
	val, ok := v.values[key]
	return val, ok
}

// Keys returns the variable names in first-seen order.
func (v *Vars) Keys() []string {
	return append([]string(nil), v.keys...)
}

// Len returns the number of variables.
func (v *Vars) Len() int {
	if v == nil {
		return 0
	}
	return len(v.keys)
}

// Map returns the variables as a plain map.
func (v *Vars) Map() map[string]string {
	m := make(map[string]string, len(v.keys))
	for k, val := range v.values {
		m[k] = val
	}
	return m
}

// List returns the variables in order as engine.Var values.
func (v *Vars) List() []engine.Var {
	if v == nil {
		return nil
	}
	out := make([]engine.Var, len(v.keys))
	for i, k := range v.keys {
		out[i] = engine.Var{Key: k, Value: v.values[k]}
	}
	return out
}
