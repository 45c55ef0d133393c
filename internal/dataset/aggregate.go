package dataset

import (
	"math"
	"strings"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
)

// Operation names an aggregate function.
type Operation string

// Aggregate operations.
const (
	Sum           Operation = "sum"
	Average       Operation = "average"
	Count         Operation = "count"
	DistinctCount Operation = "distinct_count"
	Min           Operation = "min"
	Max           Operation = "max"
	StdDev        Operation = "std_dev"
)

// Operations lists every supported operation.
var Operations = []Operation{Sum, Average, Count, DistinctCount, Min, Max, StdDev}

var operationAliases = map[string]Operation{
	"mean":           Average,
	"avg":            Average,
	"distinct count": DistinctCount,
	"distinct":       DistinctCount,
	"nunique":        DistinctCount,
	"std":            StdDev,
	"stddev":         StdDev,
	"std dev":        StdDev,
	"minimum":        Min,
	"maximum":        Max,
}

// BlankGroup is the group key used for null group values.
const BlankGroup = "(blank)"

// ParseOperation resolves an operation name. Matching ignores case and
// accepts common aliases ("mean", "Distinct Count", "std").
func ParseOperation(name string) (Operation, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, op := range Operations {
		if string(op) == key || strings.ReplaceAll(string(op), "_", " ") == key {
			return op, nil
		}
	}
	if op, ok := operationAliases[key]; ok {
		return op, nil
	}
	return "", clierr.Newf(clierr.InvalidAggregation, "unknown aggregation %q", name).
		WithDetails(map[string]any{"operation": name, "allowed": Operations})
}

// Numeric reports whether op only looks at numeric values.
func (op Operation) Numeric() bool {
	return op != Count && op != DistinctCount
}

// Aggregate computes op over one column. Numeric operations skip values
// that do not coerce to numbers; with nothing left, sum is 0 and the rest
// are NaN. Count and distinct_count look at raw non-null values.
func Aggregate(ds *Dataset, column string, op Operation) (float64, error) {
	col, err := ds.requireColumn(column, clierr.InvalidAggregation)
	if err != nil {
		return 0, err
	}
	op, err = ParseOperation(string(op))
	if err != nil {
		return 0, err
	}
	return aggregateRows(ds.Rows, col, op), nil
}

// Group is one partition's aggregate.
type Group struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Rows  int     `json:"rows"`
}

// GroupAggregate partitions rows by the string cast of groupColumn, in order
// of first occurrence, and aggregates valueColumn within each partition.
func GroupAggregate(ds *Dataset, groupColumn, valueColumn string, op Operation) ([]Group, error) {
	gcol, err := ds.requireColumn(groupColumn, clierr.InvalidGroupBy)
	if err != nil {
		return nil, err
	}
	vcol, err := ds.requireColumn(valueColumn, clierr.InvalidAggregation)
	if err != nil {
		return nil, err
	}
	op, err = ParseOperation(string(op))
	if err != nil {
		return nil, err
	}

	var order []string
	parts := make(map[string][][]Value)
	for _, row := range ds.Rows {
		key := BlankGroup
		if !row[gcol].IsNull() {
			key = row[gcol].String()
		}
		if _, seen := parts[key]; !seen {
			order = append(order, key)
		}
		parts[key] = append(parts[key], row)
	}

	out := make([]Group, 0, len(order))
	for _, key := range order {
		rows := parts[key]
		out = append(out, Group{Key: key, Value: aggregateRows(rows, vcol, op), Rows: len(rows)})
	}
	return out, nil
}

func aggregateRows(rows [][]Value, col int, op Operation) float64 {
	switch op {
	case Count:
		n := 0
		for _, row := range rows {
			if !row[col].IsNull() {
				n++
			}
		}
		return float64(n)
	case DistinctCount:
		seen := make(map[string]struct{})
		for _, row := range rows {
			if v := row[col]; !v.IsNull() {
				seen[v.key()] = struct{}{}
			}
		}
		return float64(len(seen))
	}

	nums := make([]float64, 0, len(rows))
	for _, row := range rows {
		if f, ok := row[col].Float(); ok {
			nums = append(nums, f)
		}
	}
	switch op {
	case Sum:
		return sum(nums)
	case Average:
		if len(nums) == 0 {
			return math.NaN()
		}
		return sum(nums) / float64(len(nums))
	case Min, Max:
		if len(nums) == 0 {
			return math.NaN()
		}
		m := nums[0]
		for _, n := range nums[1:] {
			if (op == Min && n < m) || (op == Max && n > m) {
				m = n
			}
		}
		return m
	case StdDev:
		if len(nums) < 2 {
			return math.NaN()
		}
		mean := sum(nums) / float64(len(nums))
		var ss float64
		for _, n := range nums {
			ss += (n - mean) * (n - mean)
		}
		return math.Sqrt(ss / float64(len(nums)-1))
	}
	return math.NaN()
}

func sum(nums []float64) float64 {
	var s float64
	for _, n := range nums {
		s += n
	}
	return s
}
