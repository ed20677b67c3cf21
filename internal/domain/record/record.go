package record

import (
	"fmt"
	"strconv"
	"strings"
)

// Well-known field names. Records otherwise carry arbitrary fields that
// pass through storage unchanged, so the record itself is a loose map.
const (
	FieldName  = "student_name"
	FieldRoll  = "roll_number"
	FieldLevel = "level"
)

// trackedMarks are the three subjects that enter the grade average. The
// divisor is the fixed count of tracked subjects, not the count of marks
// actually present.
var trackedMarks = []string{"SWE210_mark", "MAE101_mark", "SWE200_mark"}

// Record is one student record. Beyond the well-known fields it is an
// open bag of values preserved as-is across read/write cycles.
type Record map[string]any

// Name returns the student name field, or "" when absent.
func (r Record) Name() string {
	s, _ := r[FieldName].(string)
	return s
}

// RollString returns the trimmed string form of the roll-number field.
// An absent field yields "".
func (r Record) RollString() string {
	v, ok := r[FieldRoll]
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		// JSON numbers decode as float64; render integral values plainly.
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", x))
	}
}

// RollEquals reports whether the record's roll number numerically equals
// roll. Records whose roll field fails numeric coercion never match.
func (r Record) RollEquals(roll int) bool {
	n, ok := coerceInt(r[FieldRoll])
	return ok && n == roll
}

// NameEqualsFold reports whether the record's student name matches name
// under trimming and case folding.
func (r Record) NameEqualsFold(name string) bool {
	own := strings.TrimSpace(r.Name())
	return own != "" && strings.EqualFold(own, strings.TrimSpace(name))
}

// Average computes the arithmetic mean of the three tracked marks.
// Missing or non-numeric marks coerce to zero; the divisor is always the
// fixed subject count.
func (r Record) Average() float64 {
	var sum float64
	for _, field := range trackedMarks {
		sum += coerceFloat(r[field])
	}
	return sum / float64(len(trackedMarks))
}

// coerceFloat converts a loosely typed mark to a float, coercing
// anything missing or non-numeric to zero.
func coerceFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
