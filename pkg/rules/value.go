package rules

import "strings"

// ValueKind discriminates scalar field values from list values derived by
// composite entities.
type ValueKind int

const (
	KindScalar ValueKind = iota
	KindList
)

// Value is the snapshot of an entity's current input: a single string for
// leaf fields, an ordered list for composites (checked values of a
// multi-select group, or all child values of a plain group).
type Value struct {
	kind   ValueKind
	scalar string
	list   []string
}

// Scalar wraps a single string value.
func Scalar(s string) Value {
	return Value{kind: KindScalar, scalar: s}
}

// List wraps an ordered list value.
func List(items ...string) Value {
	return Value{kind: KindList, list: items}
}

func (v Value) Kind() ValueKind { return v.kind }

// Scalar returns the scalar form. For list values it returns the first
// element, which matches how a single-select group reads its choice.
func (v Value) Scalar() string {
	if v.kind == KindList {
		if len(v.list) == 0 {
			return ""
		}
		return v.list[0]
	}
	return v.scalar
}

// List returns the list form; a scalar value becomes a one-element list.
func (v Value) List() []string {
	if v.kind == KindScalar {
		return []string{v.scalar}
	}
	return v.list
}

// IsEmpty reports whether the value carries no usable input: an empty scalar,
// an empty list, or a list whose every element is empty.
func (v Value) IsEmpty() bool {
	if v.kind == KindScalar {
		return v.scalar == ""
	}
	if len(v.list) == 0 {
		return true
	}
	for _, item := range v.list {
		if item != "" {
			return false
		}
	}
	return true
}

// Count returns the number of list elements; scalars count as one when
// non-empty.
func (v Value) Count() int {
	if v.kind == KindScalar {
		if v.scalar == "" {
			return 0
		}
		return 1
	}
	return len(v.list)
}

// NonEmptyCount returns how many elements carry a non-blank value.
func (v Value) NonEmptyCount() int {
	n := 0
	for _, item := range v.List() {
		if strings.TrimSpace(item) != "" {
			n++
		}
	}
	return n
}

// Trim returns the value with surrounding whitespace removed from the scalar
// or from each list element.
func (v Value) Trim() Value {
	if v.kind == KindScalar {
		return Value{kind: KindScalar, scalar: strings.TrimSpace(v.scalar)}
	}
	trimmed := make([]string, len(v.list))
	for i, item := range v.list {
		trimmed[i] = strings.TrimSpace(item)
	}
	return Value{kind: KindList, list: trimmed}
}

// Equal reports deep equality of two values. It is the cache key comparison
// that makes re-evaluation of an unchanged entity free.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == KindScalar {
		return v.scalar == o.scalar
	}
	if len(v.list) != len(o.list) {
		return false
	}
	for i := range v.list {
		if v.list[i] != o.list[i] {
			return false
		}
	}
	return true
}

func (v Value) String() string {
	if v.kind == KindScalar {
		return v.scalar
	}
	return strings.Join(v.list, ", ")
}
