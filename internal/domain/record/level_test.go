package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landmark-lsms/lsms-backend/internal/domain/shared"
)

func TestParseLevel(t *testing.T) {
	for _, raw := range []string{"200", "300", "400", " 200 "} {
		level, err := ParseLevel(raw)
		require.NoError(t, err, "level %q", raw)
		assert.NotEmpty(t, level)
	}

	for _, raw := range []string{"", "100", "500", "2OO", "abc"} {
		_, err := ParseLevel(raw)
		require.Error(t, err, "level %q", raw)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "Invalid or missing level.", de.Message)
	}
}

func TestLevelsScanOrder(t *testing.T) {
	assert.Equal(t, []Level{Level200, Level300, Level400}, Levels())
}

func TestPartitionLabel(t *testing.T) {
	assert.Equal(t, "students lv 200.json", Level200.PartitionLabel())
	assert.Equal(t, "students lv 300.json", Level300.PartitionLabel())
	assert.Equal(t, "students lv 400.json", Level400.PartitionLabel())
}

func TestParseRoll_RangesAreDisjoint(t *testing.T) {
	cases := []struct {
		level Level
		roll  any
		ok    bool
	}{
		{Level200, 1, true},
		{Level200, 50, true},
		{Level200, 199, true},
		{Level200, 0, false},
		{Level200, 200, false},
		{Level200, 250, false},
		{Level300, 200, true},
		{Level300, 299, true},
		{Level300, 199, false},
		{Level300, 300, false},
		{Level400, 300, true},
		{Level400, 400, true},
		{Level400, 401, false},
		{Level400, 299, false},
	}

	for _, tc := range cases {
		got, err := tc.level.ParseRoll(tc.roll)
		if tc.ok {
			require.NoError(t, err, "level %s roll %v", tc.level, tc.roll)
			assert.Equal(t, tc.roll, got)
		} else {
			require.Error(t, err, "level %s roll %v", tc.level, tc.roll)
		}
	}
}

func TestParseRoll_Coercion(t *testing.T) {
	// Numeric strings and JSON float64 values parse the same as ints.
	roll, err := Level200.ParseRoll("42")
	require.NoError(t, err)
	assert.Equal(t, 42, roll)

	roll, err = Level200.ParseRoll(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, 42, roll)

	roll, err = Level300.ParseRoll(float64(250))
	require.NoError(t, err)
	assert.Equal(t, 250, roll)

	_, err = Level200.ParseRoll("abc")
	require.Error(t, err)

	_, err = Level200.ParseRoll(nil)
	require.Error(t, err)
}

func TestParseRoll_RangeErrorMessage(t *testing.T) {
	_, err := Level200.ParseRoll(250)
	require.Error(t, err)
	assert.Equal(t, "Roll number for level 200 must be between 1 and 199.", err.Error())
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)
	assert.ErrorIs(t, err, shared.ErrValidation)

	var re *RangeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, Level200, re.Level)
	assert.Equal(t, 1, re.Min)
	assert.Equal(t, 199, re.Max)
}
