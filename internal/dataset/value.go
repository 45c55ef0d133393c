package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/armsboard/internal/date"
)

// Kind is the scalar type held by a Value.
type Kind int

// Scalar kinds.
const (
	Null Kind = iota
	String
	Number
	Date
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Date:
		return "date"
	default:
		return "null"
	}
}

// Value is one typed cell.
type Value struct {
	kind Kind
	s    string
	n    float64
	t    time.Time
}

// NullValue returns the empty cell.
func NullValue() Value { return Value{} }

// StringValue wraps s.
func StringValue(s string) Value { return Value{kind: String, s: s} }

// NumberValue wraps n.
func NumberValue(n float64) Value { return Value{kind: Number, n: n} }

// DateValue wraps t.
func DateValue(t time.Time) Value { return Value{kind: Date, t: t} }

// FromAny converts a Go value into a Value. Empty strings become null.
func FromAny(v any) Value {
	switch x := v.(type) {
	case nil:
		return NullValue()
	case Value:
		return x
	case string:
		if strings.TrimSpace(x) == "" {
			return NullValue()
		}
		return StringValue(x)
	case float64:
		return NumberValue(x)
	case float32:
		return NumberValue(float64(x))
	case int:
		return NumberValue(float64(x))
	case int64:
		return NumberValue(float64(x))
	case time.Time:
		if x.IsZero() {
			return NullValue()
		}
		return DateValue(x)
	case date.Date:
		if x.IsZero() {
			return NullValue()
		}
		return DateValue(x.Time)
	case *time.Time:
		if x == nil {
			return NullValue()
		}
		return DateValue(*x)
	default:
		return StringValue(fmt.Sprint(x))
	}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the cell is empty.
func (v Value) IsNull() bool { return v.kind == Null }

// Float coerces the value to a finite number. Strings are parsed after
// trimming; dates, nulls, NaN and infinities do not coerce.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case Number:
		return v.n, finite(v.n)
	case String:
		return ParseNumber(v.s)
	default:
		return 0, false
	}
}

// ParseNumber parses s as a finite decimal number. "NaN" and "Inf" spellings
// are rejected.
func ParseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !finite(f) {
		return 0, false
	}
	return f, true
}

// NumberText parses s only when the number prints back as the same text.
// Codes such as "00123", "1e3" or "12.50" stay strings.
func NumberText(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	f, ok := ParseNumber(s)
	if !ok || strconv.FormatFloat(f, 'f', -1, 64) != s {
		return 0, false
	}
	return f, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Time coerces the value to a timestamp. Strings go through the lenient
// date parser.
func (v Value) Time() (time.Time, bool) {
	switch v.kind {
	case Date:
		return v.t, true
	case String:
		t, err := date.ParseTime(v.s)
		return t, err == nil
	default:
		return time.Time{}, false
	}
}

// String is the value's string cast, used by equals, contains and grouping.
// Whole-day dates print as YYYY-MM-DD.
func (v Value) String() string {
	switch v.kind {
	case String:
		return v.s
	case Number:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case Date:
		if v.t.Hour() == 0 && v.t.Minute() == 0 && v.t.Second() == 0 && v.t.Nanosecond() == 0 {
			return v.t.Format("2006-01-02")
		}
		return v.t.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Interface returns the plain Go value (string, float64, time.Time or nil).
func (v Value) Interface() any {
	switch v.kind {
	case String:
		return v.s
	case Number:
		return v.n
	case Date:
		return v.t
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Null:
		return []byte("null"), nil
	case Date:
		return json.Marshal(v.String())
	default:
		return json.Marshal(v.Interface())
	}
}

// key identifies a value for distinct counting: same kind and same cast.
func (v Value) key() string {
	return strconv.Itoa(int(v.kind)) + "\x00" + v.String()
}
