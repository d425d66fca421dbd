package marker

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"golang.org/x/text/cases"
)

// Shape is the kind of value an annotation accepts.
type Shape int

const (
	// String accepts a single string.
	String Shape = iota
	// Integer accepts a single integer.
	Integer
	// Size accepts a single string or integer, e.g. "512M" or 1024.
	Size
	// Enum accepts one of Descriptor.Values, or a value whose string form is one.
	Enum
	// List accepts either one slice argument or any number of arguments.
	List
)

func (s Shape) String() string {
	switch s {
	case String:
		return "string"
	case Integer:
		return "integer"
	case Size:
		return "size"
	case Enum:
		return "enum"
	case List:
		return "list"
	default:
		return "unknown"
	}
}

// ErrShape is returned when annotation arguments do not match the declared shape.
var ErrShape = errors.New("marker: value does not match shape")

// User is the privilege level accepted by the user annotation.
type User string

const (
	Root         User = "root"
	Privileged   User = Root
	Unprivileged User = "unprivileged"
)

func (u User) String() string { return string(u) }

// Coerce validates annotation arguments against the descriptor's shape and
// returns the canonical value: []string for List, int64 for integers and
// string otherwise.
func (d Descriptor) Coerce(args []any) (any, error) {
	if d.Shape == List {
		return coerceList(args)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: %s(): %s annotation needs an argument", ErrShape, d.Name, d.Shape)
	}
	v := args[0]
	switch d.Shape {
	case String:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case Integer:
		if n, ok := toInt64(v); ok {
			return n, nil
		}
	case Size:
		if s, ok := v.(string); ok {
			return s, nil
		}
		if n, ok := toInt64(v); ok {
			return n, nil
		}
	case Enum:
		if s, ok := d.enumValue(v); ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s(%#v) is not a %s", ErrShape, d.Name, v, d.Shape)
}

func (d Descriptor) enumValue(v any) (string, bool) {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case fmt.Stringer:
		s = x.String()
	default:
		return "", false
	}
	fold := cases.Fold()
	folded := fold.String(strings.TrimSpace(s))
	for _, allowed := range d.Values {
		if fold.String(allowed) == folded {
			return allowed, true
		}
	}
	return "", false
}

// coerceList accepts the single-list-argument and the varargs call styles.
func coerceList(args []any) ([]string, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: list annotation needs at least one argument", ErrShape)
	}
	items := args
	if len(args) == 1 {
		if rv := reflect.ValueOf(args[0]); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			items = make([]any, rv.Len())
			for i := range items {
				items[i] = rv.Index(i).Interface()
			}
		}
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = fmt.Sprint(item)
	}
	return out, nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
