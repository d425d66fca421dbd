// Package metadata builds and serialises the ATF properties of test cases.
package metadata

// Well-known property keys that are not produced by annotations.
const (
	KeyIdent = "ident"
	KeyDescr = "descr"
)

// Property is one key/value pair of a Record.
type Property struct {
	Key   string
	Value any
}

// Record is an insertion-ordered set of ATF properties for one test case.
// The zero value is ready to use.
type Record struct {
	props []Property
	index map[string]int
}

// NewRecord returns a record holding the ident property.
func NewRecord(ident string) *Record {
	r := &Record{}
	r.Set(KeyIdent, ident)
	return r
}

// Set stores value under key. An existing key keeps its position.
func (r *Record) Set(key string, value any) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[key]; ok {
		r.props[i].Value = value
		return
	}
	r.index[key] = len(r.props)
	r.props = append(r.props, Property{Key: key, Value: value})
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	i, ok := r.index[key]
	if !ok {
		return nil, false
	}
	return r.props[i].Value, true
}

// Keys returns the property keys in insertion order.
func (r *Record) Keys() []string {
	keys := make([]string, len(r.props))
	for i, p := range r.props {
		keys[i] = p.Key
	}
	return keys
}

// Properties returns a copy of the properties in insertion order.
func (r *Record) Properties() []Property {
	out := make([]Property, len(r.props))
	copy(out, r.props)
	return out
}

// Len returns the number of properties.
func (r *Record) Len() int { return len(r.props) }
