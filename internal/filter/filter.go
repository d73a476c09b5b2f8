// Package filter selects subsets of organisms by attribute. Every function
// returns a new slice in input order and never modifies the organisms.
package filter

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"dose/internal/genetic"
	"dose/internal/world"
)

// Tolerance widens both bounds of every range test so that boundary values
// survive floating point representation noise.
const Tolerance = 0.01

// ConversionError reports a status value that a range test could not read as a number.
type ConversionError struct {
	Key   string
	Value any
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("status %q: cannot convert %v (%T) to float", e.Key, e.Value, e.Value)
}

// Deme keeps agents whose deme equals name, ignoring case.
func Deme(name string, agents []*genetic.Organism) []*genetic.Organism {
	return keep(agents, func(o *genetic.Organism) bool {
		return strings.EqualFold(o.Deme, name)
	})
}

// Gender keeps agents whose gender equals value, ignoring case.
func Gender(value string, agents []*genetic.Organism) []*genetic.Organism {
	return keep(agents, func(o *genetic.Organism) bool {
		return strings.EqualFold(o.Gender, value)
	})
}

// Location keeps agents standing exactly at loc.
func Location(loc world.Location, agents []*genetic.Organism) []*genetic.Organism {
	return keep(agents, func(o *genetic.Organism) bool {
		return o.Location == loc
	})
}

// Age keeps agents whose age lies in [min-Tolerance, max+Tolerance].
func Age(min, max float64, agents []*genetic.Organism) []*genetic.Organism {
	return keep(agents, func(o *genetic.Organism) bool {
		return inRange(o.Age, min, max)
	})
}

// Vitality keeps agents whose vitality lies in [min-Tolerance, max+Tolerance].
func Vitality(min, max float64, agents []*genetic.Organism) []*genetic.Organism {
	return keep(agents, func(o *genetic.Organism) bool {
		return inRange(o.Vitality, min, max)
	})
}

// Status keeps agents whose attribute key satisfies cond. An agent without
// the attribute never matches an Exact condition and fails a Range condition
// with a ConversionError.
func Status(key string, cond Condition, agents []*genetic.Organism) ([]*genetic.Organism, error) {
	if cond == nil {
		return nil, fmt.Errorf("status %q: condition is required", key)
	}
	out := make([]*genetic.Organism, 0, len(agents))
	for _, agent := range agents {
		value, _ := agent.StatusValue(key)
		ok, err := cond.match(key, value)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, agent)
		}
	}
	return out, nil
}

func keep(agents []*genetic.Organism, pred func(*genetic.Organism) bool) []*genetic.Organism {
	out := make([]*genetic.Organism, 0, len(agents))
	for _, agent := range agents {
		if pred(agent) {
			out = append(out, agent)
		}
	}
	return out
}

func inRange(v, min, max float64) bool {
	return v >= min-Tolerance && v <= max+Tolerance
}

// toFloat coerces numeric kinds and numeric strings.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
