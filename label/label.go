// Package label converts a raw label column into the boolean good/bad flag
// consumed by the pMPO statistics.
package label

import (
	"reflect"
)

// defaultTruthy are the string tokens recognised as "good" when no explicit
// good value is configured.
var defaultTruthy = map[string]struct{}{
	"true": {}, "True": {}, "TRUE": {}, "t": {}, "T": {},
	"good": {}, "Good": {}, "GOOD": {}, "g": {}, "G": {},
	"active": {}, "Active": {}, "ACTIVE": {}, "a": {}, "A": {},
	"yes": {}, "Yes": {}, "YES": {}, "y": {}, "Y": {},
	"1": {},
}

type mode int

const (
	modeDefault mode = iota
	modeEquals
	modePredicate
)

// GoodValue selects how a raw label is judged good.
// The zero value behaves like Default().
type GoodValue struct {
	mode  mode
	value any
	pred  func(any) bool
}

// Default matches the built-in truth set: the tokens above, numeric 1 and boolean true.
func Default() GoodValue { return GoodValue{mode: modeDefault} }

// Equals matches labels equal to v. Numbers compare by value across kinds.
func Equals(v any) GoodValue { return GoodValue{mode: modeEquals, value: v} }

// Predicate matches labels for which fn returns true. A nil fn matches nothing.
func Predicate(fn func(any) bool) GoodValue { return GoodValue{mode: modePredicate, pred: fn} }

// IsDefault reports whether g uses the built-in truth set.
func (g GoodValue) IsDefault() bool { return g.mode == modeDefault }

// Evaluator returns the predicate described by g.
func Evaluator(g GoodValue) func(any) bool {
	switch g.mode {
	case modeEquals:
		want := g.value
		return func(v any) bool { return equal(v, want) }
	case modePredicate:
		if g.pred == nil {
			return func(any) bool { return false }
		}
		return g.pred
	default:
		return isDefaultGood
	}
}

// Normalize applies the evaluator of g to every value.
func Normalize(values []any, g GoodValue) []bool {
	eval := Evaluator(g)
	out := make([]bool, len(values))
	for i, v := range values {
		out[i] = eval(v)
	}
	return out
}

func isDefaultGood(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		_, ok := defaultTruthy[x]
		return ok
	case bool:
		return x
	}
	if f, ok := toFloat(v); ok {
		return f == 1
	}
	return false
}

func equal(v, want any) bool {
	if v == nil || want == nil {
		return v == nil && want == nil
	}
	if a, ok := toFloat(v); ok {
		if b, ok := toFloat(want); ok {
			return a == b
		}
		return false
	}
	rv, rw := reflect.ValueOf(v), reflect.ValueOf(want)
	if rv.Type() != rw.Type() || !rv.Type().Comparable() {
		return false
	}
	return v == want
}

// toFloat converts Go numeric kinds to float64. Strings and bools are not numbers.
func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
