package dataset

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/armsboard/internal/clierr"
)

func cases() *Dataset {
	return FromRecords("cases", []string{"Analyst", "Chapter", "Amount", "Filing Date"}, []map[string]any{
		{"Analyst": "Jane", "Chapter": "Chapter 11", "Amount": 10.0, "Filing Date": "2024-01-05"},
		{"Analyst": "Omar", "Chapter": "Chapter 7", "Amount": "20", "Filing Date": "2024-01-20"},
		{"Analyst": "Jane", "Chapter": "Chapter 7", "Amount": "bad", "Filing Date": "someday"},
		{"Analyst": nil, "Chapter": "Chapter 11", "Amount": 40, "Filing Date": time.Date(2024, 2, 1, 15, 0, 0, 0, time.UTC)},
	})
}

func TestAmountScenario(t *testing.T) {
	ds := FromRecords("s", []string{"Amount"}, []map[string]any{
		{"Amount": 10}, {"Amount": 20}, {"Amount": "bad"}, {"Amount": 40},
	})

	sum, err := Aggregate(ds, "Amount", Sum)
	require.NoError(t, err)
	assert.Equal(t, 70.0, sum)

	count, err := Aggregate(ds, "Amount", Count)
	require.NoError(t, err)
	assert.Equal(t, 4.0, count)
}

func TestAggregateSkipsNonFiniteText(t *testing.T) {
	ds := FromRecords("s", []string{"Amount"}, []map[string]any{
		{"Amount": 10}, {"Amount": "NaN"}, {"Amount": "inf"}, {"Amount": 40}, {"Amount": "-Infinity"},
	})

	tests := []struct {
		op   Operation
		want float64
	}{
		{Sum, 50},
		{Average, 25},
		{Min, 10},
		{Max, 40},
		{StdDev, math.Sqrt(450)},
		{Count, 5},
	}
	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			got, err := Aggregate(ds, "Amount", tt.op)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	_, err := ApplyFilters(ds, []Filter{{Column: "Amount", Operator: GreaterThan, Value: "NaN"}})
	assert.True(t, clierr.HasCode(err, clierr.InvalidFilter))
}

func TestNumberText(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12", 12, true},
		{" -3.5 ", -3.5, true},
		{"0", 0, true},
		{"00123", 0, false},
		{"12.50", 0, false},
		{"1e3", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"n/a", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NumberText(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	f, ok := ParseNumber("12.50")
	assert.True(t, ok)
	assert.Equal(t, 12.5, f)
	_, ok = ParseNumber("nan")
	assert.False(t, ok)
}

func TestInferTypesKeepsCodes(t *testing.T) {
	ds := New("accounts", []string{"Account", "Balance"})
	require.NoError(t, ds.Append(StringValue("00123"), StringValue("100")))
	require.NoError(t, ds.Append(StringValue("456"), StringValue("12.50")))
	ds.InferTypes()

	assert.Equal(t, String, ds.Value(0, "Account").Kind())
	assert.Equal(t, "00123", ds.Value(0, "Account").String())
	assert.Equal(t, String, ds.Value(1, "Account").Kind(), "one code keeps the column as text")

	got, err := ApplyFilters(ds, []Filter{{Column: "Account", Operator: Equals, Value: "00123"}})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())

	sum, err := Aggregate(ds, "Balance", Sum)
	require.NoError(t, err)
	assert.InDelta(t, 112.5, sum, 1e-9)
}

func TestAggregateOperations(t *testing.T) {
	ds := cases()
	tests := []struct {
		column string
		op     Operation
		want   float64
	}{
		{"Amount", Sum, 70},
		{"Amount", Average, 70.0 / 3},
		{"Amount", Min, 10},
		{"Amount", Max, 40},
		{"Amount", StdDev, math.Sqrt(((10-70.0/3)*(10-70.0/3) + (20-70.0/3)*(20-70.0/3) + (40-70.0/3)*(40-70.0/3)) / 2)},
		{"Analyst", Count, 3},
		{"Analyst", DistinctCount, 2},
		{"Chapter", DistinctCount, 2},
		{"Amount", "mean", 70.0 / 3},
	}
	for _, tt := range tests {
		t.Run(string(tt.op)+"_"+tt.column, func(t *testing.T) {
			got, err := Aggregate(ds, tt.column, tt.op)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestAggregateEmptyNumeric(t *testing.T) {
	ds := FromRecords("s", []string{"Name"}, []map[string]any{{"Name": "x"}, {"Name": nil}})

	sum, err := Aggregate(ds, "Name", Sum)
	require.NoError(t, err)
	assert.Zero(t, sum)

	for _, op := range []Operation{Average, Min, Max, StdDev} {
		v, err := Aggregate(ds, "Name", op)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(v), "%s should be NaN", op)
	}
}

func TestAggregateErrors(t *testing.T) {
	ds := cases()
	_, err := Aggregate(ds, "Missing", Sum)
	assert.True(t, clierr.HasCode(err, clierr.InvalidAggregation))
	_, err = Aggregate(ds, "Amount", "median")
	assert.True(t, clierr.HasCode(err, clierr.InvalidAggregation))
	_, err = GroupAggregate(ds, "Missing", "Amount", Sum)
	assert.True(t, clierr.HasCode(err, clierr.InvalidGroupBy))
}

func TestCountBoundsDistinctCount(t *testing.T) {
	ds := cases()
	for _, col := range ds.Columns {
		count, err := Aggregate(ds, col, Count)
		require.NoError(t, err)
		distinct, err := Aggregate(ds, col, DistinctCount)
		require.NoError(t, err)
		assert.LessOrEqual(t, distinct, count, col)

		vals, _ := ds.Column(col)
		nonNull := 0
		for _, v := range vals {
			if !v.IsNull() {
				nonNull++
			}
		}
		assert.Equal(t, float64(nonNull), count, col)
	}
}

func TestGroupAggregateOrder(t *testing.T) {
	groups, err := GroupAggregate(cases(), "Analyst", "Amount", Sum)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, Group{Key: "Jane", Value: 10, Rows: 2}, groups[0])
	assert.Equal(t, Group{Key: "Omar", Value: 20, Rows: 1}, groups[1])
	assert.Equal(t, Group{Key: BlankGroup, Value: 40, Rows: 1}, groups[2])
}

func TestApplyFilters(t *testing.T) {
	ds := cases()
	tests := []struct {
		name    string
		filters []Filter
		want    int
	}{
		{"none", nil, 4},
		{"equals", []Filter{{Column: "Chapter", Operator: Equals, Value: "Chapter 11"}}, 2},
		{"equals is case sensitive", []Filter{{Column: "Chapter", Operator: Equals, Value: "chapter 11"}}, 0},
		{"contains", []Filter{{Column: "Chapter", Operator: Contains, Value: "7"}}, 2},
		{"greater than drops non-numeric", []Filter{{Column: "Amount", Operator: GreaterThan, Value: "5"}}, 3},
		{"less than", []Filter{{Column: "Amount", Operator: LessThan, Value: "20"}}, 1},
		{"date range inclusive", []Filter{{Column: "Filing Date", Operator: DateRange, Start: "2024-01-05", End: "2024-01-20"}}, 2},
		{"date range open end", []Filter{{Column: "Filing Date", Operator: DateRange, Start: "2024-01-06"}}, 2},
		{"date range same day with time", []Filter{{Column: "Filing Date", Operator: DateRange, Start: "2024-02-01", End: "2024-02-01"}}, 1},
		{"and", []Filter{
			{Column: "Analyst", Operator: Equals, Value: "Jane"},
			{Column: "Amount", Operator: GreaterThan, Value: "0"},
		}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyFilters(ds, tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Len())
		})
	}
	assert.Equal(t, 4, ds.Len(), "input must not change")
}

func TestApplyFiltersIdempotent(t *testing.T) {
	f := Filter{Column: "Analyst", Operator: Equals, Value: "Jane"}
	once, err := ApplyFilters(cases(), []Filter{f})
	require.NoError(t, err)
	twice, err := ApplyFilters(once, []Filter{f})
	require.NoError(t, err)
	assert.Equal(t, once.Rows, twice.Rows)
}

func TestApplyFiltersAbortsOnBadFilter(t *testing.T) {
	ds := cases()
	bad := [][]Filter{
		{{Column: "Analyst", Operator: Equals, Value: "Jane"}, {Column: "Nope", Operator: Equals, Value: "x"}},
		{{Column: "Analyst", Operator: "regex", Value: ".*"}},
		{{Column: "Amount", Operator: GreaterThan, Value: "ten"}},
		{{Column: "Filing Date", Operator: DateRange, Start: "whenever"}},
	}
	for _, filters := range bad {
		got, err := ApplyFilters(ds, filters)
		assert.Nil(t, got)
		assert.True(t, clierr.HasCode(err, clierr.InvalidFilter), "%v", filters)
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in   string
		want Filter
	}{
		{"Status:equals:Open", Filter{Column: "Status", Operator: Equals, Value: "Open"}},
		{"Amount:greater_than:100", Filter{Column: "Amount", Operator: GreaterThan, Value: "100"}},
		{"Note:contains:a:b", Filter{Column: "Note", Operator: Contains, Value: "a:b"}},
		{"Filing Date:date_range:2024-01-01..2024-03-31", Filter{Column: "Filing Date", Operator: DateRange, Start: "2024-01-01", End: "2024-03-31"}},
		{"Filing Date:date_range:..2024-03-31", Filter{Column: "Filing Date", Operator: DateRange, End: "2024-03-31"}},
		{"Status:EQUALS:", Filter{Column: "Status", Operator: Equals}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFilter(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, in := range []string{"", "Status", "Status:like:x", ":equals:x"} {
		_, err := ParseFilter(in)
		assert.True(t, clierr.HasCode(err, clierr.InvalidFilter), in)
	}
}

func TestParseOperation(t *testing.T) {
	for in, want := range map[string]Operation{
		"sum": Sum, "Average": Average, "mean": Average, "Distinct Count": DistinctCount,
		"distinct_count": DistinctCount, "STD": StdDev, "std_dev": StdDev, "max": Max,
	} {
		got, err := ParseOperation(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestInferTypes(t *testing.T) {
	ds := New("raw", []string{"Amount", "Code", "Received Date", "Amount"})
	require.NoError(t, ds.Append(StringValue("12.5"), StringValue("A1"), StringValue("03/04/2024"), StringValue("1")))
	require.NoError(t, ds.Append(StringValue(" 7 "), StringValue("9"), StringValue("n/a")))
	assert.Error(t, ds.Append(make([]Value, 5)...))

	ds.InferTypes()
	assert.Equal(t, []string{"Amount", "Code", "Received Date", "Amount (2)"}, ds.Columns)
	assert.Equal(t, Number, ds.Value(0, "Amount").Kind())
	assert.Equal(t, Number, ds.Value(1, "Amount").Kind())
	assert.Equal(t, String, ds.Value(1, "Code").Kind(), "mixed column stays text")
	assert.Equal(t, Date, ds.Value(0, "Received Date").Kind())
	assert.Equal(t, String, ds.Value(1, "Received Date").Kind())
	assert.Equal(t, "2024-03-04", ds.Value(0, "Received Date").String())
	assert.True(t, ds.Value(1, "Amount (2)").IsNull())
	assert.Equal(t, String, ds.ColumnKind("Code"))
}

func TestMeasureEvaluate(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	m := &Measure{
		Name:      "Jane total",
		Column:    "Amount",
		Operation: "Sum",
		Filters:   []Filter{{Column: "Analyst", Operator: Equals, Value: "Jane"}},
	}
	v, err := m.Evaluate(cases(), now)
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)
	assert.Equal(t, Sum, m.Operation)
	require.NotNil(t, m.LastValue)
	assert.Equal(t, 10.0, *m.LastValue)
	assert.Equal(t, now, *m.EvaluatedAt)

	assert.Error(t, (&Measure{Column: "Amount", Operation: Sum}).Validate())
}
