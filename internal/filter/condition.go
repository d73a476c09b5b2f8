package filter

import "reflect"

// Condition is the test Status applies to one attribute value. Build one with
// Exact or Range.
type Condition interface {
	match(key string, value any) (bool, error)
}

type exact struct {
	value any
}

// Exact matches values equal to v. Numbers compare by value across numeric
// types, so Exact(5) matches a stored 5.0. Booleans and strings compare by
// identity; a boolean is never read as a range bound, callers wanting that
// must convert it themselves.
func Exact(v any) Condition {
	return exact{value: v}
}

func (c exact) match(_ string, value any) (bool, error) {
	if value == nil || c.value == nil {
		return value == nil && c.value == nil, nil
	}
	if isNumber(c.value) && isNumber(value) {
		want, _ := toFloat(c.value)
		got, _ := toFloat(value)
		return want == got, nil
	}
	wantType := reflect.TypeOf(c.value)
	if reflect.TypeOf(value) != wantType || !wantType.Comparable() {
		return false, nil
	}
	return value == c.value, nil
}

type valueRange struct {
	min, max float64
}

// Range matches numeric values in [min-Tolerance, max+Tolerance].
func Range(min, max float64) Condition {
	return valueRange{min: min, max: max}
}

func (c valueRange) match(key string, value any) (bool, error) {
	v, ok := toFloat(value)
	if !ok {
		return false, &ConversionError{Key: key, Value: value}
	}
	return inRange(v, c.min, c.max), nil
}

func isNumber(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
