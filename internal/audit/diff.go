// Package audit computes field-level differences between two versions of a
// record.
package audit

import (
	"reflect"
	"sort"

	"github.com/shopspring/decimal"
)

// Field names one comparable field of a record of type T. Get returns nil when
// the field is absent.
type Field[T any] struct {
	Name string
	Get  func(T) any
}

// EqualFunc decides whether two field values are the same.
type EqualFunc func(a, b any) bool

// Change is the set of fields that differ between two records. Old and New
// hold values only for the fields listed in Fields, with pointers resolved.
type Change struct {
	Fields []string
	Old    map[string]any
	New    map[string]any
}

// Empty reports whether no field changed.
func (c Change) Empty() bool {
	return len(c.Fields) == 0
}

// Diff compares old and new field by field, in the order of fields. A nil eq
// means ValueEqual.
func Diff[T any](old, new T, fields []Field[T], eq EqualFunc) Change {
	if eq == nil {
		eq = ValueEqual
	}

	c := Change{Old: map[string]any{}, New: map[string]any{}}
	for _, f := range fields {
		a, b := f.Get(old), f.Get(new)
		if eq(a, b) {
			continue
		}
		c.Fields = append(c.Fields, f.Name)
		c.Old[f.Name] = deref(a)
		c.New[f.Name] = deref(b)
	}
	return c
}

// DiffRecords compares two plain records keyed by field name. A key missing
// from one side is treated as nil. Changed fields are listed in key order.
func DiffRecords(old, new map[string]any, eq EqualFunc) Change {
	names := make(map[string]struct{}, len(old)+len(new))
	for k := range old {
		names[k] = struct{}{}
	}
	for k := range new {
		names[k] = struct{}{}
	}

	fields := make([]Field[map[string]any], 0, len(names))
	for name := range names {
		fields = append(fields, Field[map[string]any]{
			Name: name,
			Get:  func(r map[string]any) any { return r[name] },
		})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })

	return Diff(old, new, fields, eq)
}

// ValueEqual is the default equality policy. Nil, absent and nil pointers are
// all equal to each other; decimals compare by value; everything else by deep
// equality after dereferencing pointers.
func ValueEqual(a, b any) bool {
	a, b = deref(a), deref(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if da, ok := a.(decimal.Decimal); ok {
		if db, ok := b.(decimal.Decimal); ok {
			return da.Equal(db)
		}
		return false
	}

	return reflect.DeepEqual(a, b)
}

func deref(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}
