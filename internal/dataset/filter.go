package dataset

import (
	"fmt"
	"strings"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
	"github.com/twiced-technology-gmbh/armsboard/internal/date"
)

// Operator names a filter comparison.
type Operator string

// Filter operators.
const (
	Equals      Operator = "equals"
	Contains    Operator = "contains"
	GreaterThan Operator = "greater_than"
	LessThan    Operator = "less_than"
	DateRange   Operator = "date_range"
)

// Operators lists every supported operator.
var Operators = []Operator{Equals, Contains, GreaterThan, LessThan, DateRange}

// Filter restricts a dataset to rows whose Column satisfies the operator.
// DateRange uses Start and End (either may be empty); the others use Value.
type Filter struct {
	Column   string   `json:"column" yaml:"column"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    string   `json:"value,omitempty" yaml:"value,omitempty"`
	Start    string   `json:"start,omitempty" yaml:"start,omitempty"`
	End      string   `json:"end,omitempty" yaml:"end,omitempty"`
}

func (f Filter) String() string {
	if f.Operator == DateRange {
		return fmt.Sprintf("%s:%s:%s..%s", f.Column, f.Operator, f.Start, f.End)
	}
	return fmt.Sprintf("%s:%s:%s", f.Column, f.Operator, f.Value)
}

// ParseFilter parses "column:operator:value". Date ranges are written
// "column:date_range:start..end" with either bound optional. The column
// and value may themselves contain colons.
func ParseFilter(expr string) (Filter, error) {
	parts := strings.Split(expr, ":")
	for i := 1; i < len(parts); i++ {
		op := Operator(strings.ToLower(strings.TrimSpace(parts[i])))
		if !knownOperator(op) {
			continue
		}
		f := Filter{
			Column:   strings.TrimSpace(strings.Join(parts[:i], ":")),
			Operator: op,
		}
		value := strings.Join(parts[i+1:], ":")
		if op == DateRange {
			start, end, _ := strings.Cut(value, "..")
			f.Start, f.End = strings.TrimSpace(start), strings.TrimSpace(end)
		} else {
			f.Value = value
		}
		if f.Column == "" {
			break
		}
		return f, nil
	}
	return Filter{}, clierr.Newf(clierr.InvalidFilter,
		"invalid filter %q: expected column:operator:value", expr).
		WithDetails(map[string]any{"filter": expr, "operators": Operators})
}

func knownOperator(op Operator) bool {
	for _, o := range Operators {
		if o == op {
			return true
		}
	}
	return false
}

// compiled is a filter checked against a dataset and ready to run.
type compiled struct {
	col  int
	keep func(Value) bool
}

func (f Filter) compile(ds *Dataset) (compiled, error) {
	col, err := ds.requireColumn(f.Column, clierr.InvalidFilter)
	if err != nil {
		return compiled{}, err
	}
	invalid := func(format string, args ...any) error {
		return clierr.Newf(clierr.InvalidFilter, format, args...).
			WithDetails(map[string]any{"filter": f.String()})
	}

	c := compiled{col: col}
	switch f.Operator {
	case Equals:
		c.keep = func(v Value) bool { return !v.IsNull() && v.String() == f.Value }
	case Contains:
		c.keep = func(v Value) bool { return !v.IsNull() && strings.Contains(v.String(), f.Value) }
	case GreaterThan, LessThan:
		bound, ok := ParseNumber(f.Value)
		if !ok {
			return compiled{}, invalid("filter %s: %q is not a number", f.Operator, f.Value)
		}
		gt := f.Operator == GreaterThan
		c.keep = func(v Value) bool {
			n, ok := v.Float()
			if !ok {
				return false
			}
			if gt {
				return n > bound
			}
			return n < bound
		}
	case DateRange:
		var start, end *date.Date
		for _, b := range []struct {
			raw string
			dst **date.Date
		}{{f.Start, &start}, {f.End, &end}} {
			if b.raw == "" {
				continue
			}
			d, err := date.ParseLoose(b.raw)
			if err != nil {
				return compiled{}, invalid("filter date_range: %v", err)
			}
			*b.dst = &d
		}
		c.keep = func(v Value) bool {
			t, ok := v.Time()
			if !ok {
				return false
			}
			d := date.Of(t)
			if start != nil && d.Before(*start) {
				return false
			}
			if end != nil && d.After(*end) {
				return false
			}
			return true
		}
	default:
		return compiled{}, invalid("unknown filter operator %q", f.Operator)
	}
	return c, nil
}

// ApplyFilters keeps the rows that satisfy every filter, applied in order.
// All filters are checked before any runs; one bad filter aborts the batch
// with INVALID_FILTER. The input dataset is not modified.
func ApplyFilters(ds *Dataset, filters []Filter) (*Dataset, error) {
	steps := make([]compiled, 0, len(filters))
	for _, f := range filters {
		c, err := f.compile(ds)
		if err != nil {
			return nil, err
		}
		steps = append(steps, c)
	}

	out := ds.Where(func([]Value) bool { return true })
	for _, c := range steps {
		out = out.Where(func(row []Value) bool { return c.keep(row[c.col]) })
	}
	return out, nil
}
