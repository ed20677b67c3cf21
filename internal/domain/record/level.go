// Package record contains the student-record domain model: academic
// levels, roll-number validation, partitioned rosters, and the identity
// cross-check. This is the core of the business logic - no external
// dependencies here.
package record

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/landmark-lsms/lsms-backend/internal/domain/shared"
)

// Level identifies an academic level. Each level owns one partition of
// student records and a bounded roll-number range.
type Level string

const (
	Level200 Level = "200"
	Level300 Level = "300"
	Level400 Level = "400"
)

// Levels returns all levels in canonical scan order. The cross-check and
// every whole-roster operation walk partitions in exactly this order.
func Levels() []Level {
	return []Level{Level200, Level300, Level400}
}

// RollRange is the inclusive roll-number range owned by a level.
type RollRange struct {
	Min int
	Max int
}

// Ranges are disjoint between levels, so a roll number can belong to at
// most one partition by construction.
var rollRanges = map[Level]RollRange{
	Level200: {Min: 1, Max: 199},
	Level300: {Min: 200, Max: 299},
	Level400: {Min: 300, Max: 400},
}

// ErrInvalidLevel is returned when a level is missing or not one of
// 200, 300, 400.
var ErrInvalidLevel = shared.NewDomainError("record", "ParseLevel",
	shared.ErrInvalidInput, "Invalid or missing level.")

// ParseLevel validates a raw level string.
func ParseLevel(raw string) (Level, error) {
	l := Level(strings.TrimSpace(raw))
	if _, ok := rollRanges[l]; !ok {
		return "", ErrInvalidLevel
	}
	return l, nil
}

// RollRange returns the roll-number range owned by the level.
func (l Level) RollRange() RollRange {
	return rollRanges[l]
}

// PartitionLabel returns the addressable name of the level's partition.
// The label doubles as the storage blob name and as the identifier the
// cross-check reports on a successful match.
func (l Level) PartitionLabel() string {
	return fmt.Sprintf("students lv %s.json", string(l))
}

// RangeError reports a roll number that failed to parse or fell outside
// the level's configured range.
type RangeError struct {
	Level Level
	Min   int
	Max   int
}

// Error returns the caller-facing message naming the valid range.
func (e *RangeError) Error() string {
	return fmt.Sprintf("Roll number for level %s must be between %d and %d.",
		e.Level, e.Min, e.Max)
}

// Is maps RangeError onto the shared validation taxonomy.
func (e *RangeError) Is(target error) bool {
	return target == shared.ErrValueOutOfRange || target == shared.ErrValidation
}

// ParseRoll parses a raw roll-number value and range-checks it against
// the level. The raw value may be a JSON number, a numeric string, or an
// integer; anything unparseable fails the same way an out-of-range value
// does.
func (l Level) ParseRoll(raw any) (int, error) {
	rng := l.RollRange()
	roll, ok := coerceInt(raw)
	if !ok || roll < rng.Min || roll > rng.Max {
		return 0, &RangeError{Level: l, Min: rng.Min, Max: rng.Max}
	}
	return roll, nil
}

// coerceInt converts a loosely typed JSON value to an integer.
func coerceInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		return int(x), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
