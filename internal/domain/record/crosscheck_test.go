package record

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossCheck_Success(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	require.NoError(t, repo.WritePartition(ctx, Level300, []Record{
		{"student_name": "Jane Doe", "roll_number": 250.0},
	}))

	check := NewCrossCheck(repo)

	v, err := check.Verify(ctx, "jane doe", " 250 ")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, v.Status)
	assert.Equal(t, "students lv 300.json", v.Partition)
}

func TestCrossCheck_FirstPartitionInScanOrderWins(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	require.NoError(t, repo.WritePartition(ctx, Level400, []Record{
		{"student_name": "Jane Doe", "roll_number": 42.0},
	}))
	require.NoError(t, repo.WritePartition(ctx, Level200, []Record{
		{"student_name": "Jane Doe", "roll_number": 42.0},
	}))

	check := NewCrossCheck(repo)

	v, err := check.Verify(ctx, "Jane Doe", "42")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, v.Status)
	assert.Equal(t, "students lv 200.json", v.Partition)
}

func TestCrossCheck_RollMismatch(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	require.NoError(t, repo.WritePartition(ctx, Level200, []Record{
		{"student_name": "Jane Doe", "roll_number": 42.0},
	}))

	check := NewCrossCheck(repo)

	v, err := check.Verify(ctx, "Jane Doe", "43")
	require.NoError(t, err)
	assert.Equal(t, StatusRollMismatch, v.Status)
	assert.Empty(t, v.Partition)
}

func TestCrossCheck_NotFound(t *testing.T) {
	ctx := context.Background()
	check := NewCrossCheck(newMemRepo())

	v, err := check.Verify(ctx, "Nobody", "1")
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, v.Status)
}

func TestCrossCheck_Invalid(t *testing.T) {
	ctx := context.Background()
	check := NewCrossCheck(newMemRepo())

	for _, pair := range [][2]string{{"", "42"}, {"Jane", ""}, {"  ", "  "}} {
		v, err := check.Verify(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.Equal(t, StatusInvalid, v.Status)
	}
}

func TestCrossCheck_StringRollComparison(t *testing.T) {
	// Roll numbers compare as trimmed strings: a stored 42 matches "42"
	// but a stored "042" does not.
	ctx := context.Background()
	repo := newMemRepo()
	require.NoError(t, repo.WritePartition(ctx, Level200, []Record{
		{"student_name": "Padded", "roll_number": "042"},
	}))

	check := NewCrossCheck(repo)

	v, err := check.Verify(ctx, "Padded", "42")
	require.NoError(t, err)
	assert.Equal(t, StatusRollMismatch, v.Status)

	v, err = check.Verify(ctx, "Padded", "042")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, v.Status)
}
