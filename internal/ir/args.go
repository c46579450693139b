package ir

import (
	"encoding/json"
	"sort"
)

// Args is an ordered mapping of argument names to string values.
//
// Keys keep the position of their first insertion. Setting an existing key
// replaces its value in place (last write wins).
//
// Args is not safe for concurrent mutation. Pipelines build a fresh Args
// per request, so no locking is needed.
type Args struct {
	keys   []string
	values map[string]string
}

// NewArgs creates an empty Args.
func NewArgs() *Args {
	return &Args{values: make(map[string]string)}
}

// ArgsFromMap builds Args from a plain map. Keys are sorted for determinism
// because map iteration order carries no meaning.
func ArgsFromMap(m map[string]string) *Args {
	a := NewArgs()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		a.Set(k, m[k])
	}
	return a
}

// Set assigns value to key.
func (a *Args) Set(key, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Get returns the value for key.
func (a *Args) Get(key string) (string, bool) {
	if a == nil {
		return "", false
	}
	v, ok := a.values[key]
	return v, ok
}

// Has reports whether key is present.
func (a *Args) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

// Delete removes key, preserving the order of the remaining keys.
func (a *Args) Delete(key string) {
	if a == nil {
		return
	}
	if _, ok := a.values[key]; !ok {
		return
	}
	delete(a.values, key)
	for i, k := range a.keys {
		if k == key {
			a.keys = append(a.keys[:i], a.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (a *Args) Keys() []string {
	if a == nil {
		return nil
	}
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Len returns the number of keys.
func (a *Args) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

// Clone returns an independent copy.
func (a *Args) Clone() *Args {
	c := NewArgs()
	if a == nil {
		return c
	}
	for _, k := range a.keys {
		c.Set(k, a.values[k])
	}
	return c
}

// Map returns the values as a plain map.
func (a *Args) Map() map[string]string {
	out := make(map[string]string, a.Len())
	if a == nil {
		return out
	}
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

// Equal reports whether both mappings hold the same keys in the same order
// with the same values.
func (a *Args) Equal(b *Args) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i, k := range a.Keys() {
		if b.keys[i] != k || b.values[k] != a.values[k] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes Args as a JSON object. encoding/json sorts map keys,
// so the output is stable but does not reflect insertion order.
func (a *Args) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Map())
}

// UnmarshalJSON decodes a JSON object of string values.
func (a *Args) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*a = *ArgsFromMap(m)
	return nil
}
