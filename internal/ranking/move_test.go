package ranking

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/teachteam/internal/terrors"
)

func TestMoveToPosition(t *testing.T) {
	testCases := []struct {
		name     string
		list     []string
		tutor    string
		target   int
		expected []string
	}{
		{
			name:     "Move last to second shifts the middle down",
			list:     []string{"a", "b", "c", "d"},
			tutor:    "d",
			target:   1,
			expected: []string{"a", "d", "b", "c"},
		},
		{
			name:     "Move first to last shifts everything up",
			list:     []string{"a", "b", "c", "d"},
			tutor:    "a",
			target:   3,
			expected: []string{"b", "c", "d", "a"},
		},
		{
			name:     "Move to own position is a no-op",
			list:     []string{"a", "b", "c"},
			tutor:    "b",
			target:   1,
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "Move to top",
			list:     []string{"a", "b", "c"},
			tutor:    "b",
			target:   0,
			expected: []string{"b", "a", "c"},
		},
		{
			name:     "Single element list",
			list:     []string{"a"},
			tutor:    "a",
			target:   0,
			expected: []string{"a"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			original := append([]string(nil), tc.list...)
			got, err := MoveToPosition(tc.list, tc.tutor, tc.target)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, original, tc.list, "input must stay untouched")
			assert.Equal(t, tc.target, IndexOf(got, tc.tutor))
		})
	}
}

func TestMoveToPosition_Errors(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		_, err := MoveToPosition(nil, "a", 0)
		assert.ErrorIs(t, err, terrors.ErrInvalidPosition)
	})

	t.Run("negative target", func(t *testing.T) {
		_, err := MoveToPosition([]string{"a", "b"}, "a", -1)
		assert.ErrorIs(t, err, terrors.ErrInvalidPosition)
	})

	t.Run("target past the end", func(t *testing.T) {
		_, err := MoveToPosition([]string{"a", "b"}, "a", 2)
		assert.ErrorIs(t, err, terrors.ErrInvalidPosition)
	})

	t.Run("tutor not in list", func(t *testing.T) {
		_, err := MoveToPosition([]string{"a", "b"}, "z", 0)
		assert.ErrorIs(t, err, terrors.ErrNotFound)
	})

	t.Run("position is checked before membership", func(t *testing.T) {
		_, err := MoveToPosition([]string{"a", "b"}, "z", 5)
		assert.ErrorIs(t, err, terrors.ErrInvalidPosition)
	})
}

func TestTarget(t *testing.T) {
	list := []string{"a", "b", "c", "d"}

	testCases := []struct {
		name     string
		tutor    string
		move     Move
		position int
		expected int
	}{
		{"top", "c", MoveTop, 0, 0},
		{"bottom", "a", MoveBottom, 0, 3},
		{"up", "c", MoveUp, 0, 1},
		{"up at the top stays", "a", MoveUp, 0, 0},
		{"down", "b", MoveDown, 0, 2},
		{"down at the bottom stays", "d", MoveDown, 0, 3},
		{"explicit position", "a", MovePosition, 2, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Target(list, tc.tutor, tc.move, tc.position)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	t.Run("empty list", func(t *testing.T) {
		_, err := Target(nil, "a", MoveTop, 0)
		assert.ErrorIs(t, err, terrors.ErrInvalidPosition)
	})

	t.Run("unranked tutor", func(t *testing.T) {
		_, err := Target(list, "z", MoveUp, 0)
		assert.ErrorIs(t, err, terrors.ErrNotFound)
	})
}

func TestParseMove(t *testing.T) {
	m, err := ParseMove("top")
	require.NoError(t, err)
	assert.Equal(t, MoveTop, m)

	_, err = ParseMove("sideways")
	assert.Error(t, err)
}

func TestPrune(t *testing.T) {
	assert.Equal(t, []string{"a", "c"}, Prune([]string{"a", "b", "c"}, "b"))
	assert.Equal(t, []string{"a", "b"}, Prune([]string{"a", "b"}, "z"))
	assert.Empty(t, Prune([]string{"a"}, "a"))
}

func TestDense(t *testing.T) {
	assert.True(t, Dense([]int{}))
	assert.True(t, Dense([]int{2, 0, 1}))
	assert.False(t, Dense([]int{0, 2}))
	assert.False(t, Dense([]int{0, 0}))
	assert.False(t, Dense([]int{-1, 0}))
}

func TestMoveToPosition_RandomSequenceKeepsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	list := []string{"a", "b", "c", "d", "e", "f"}

	for i := 0; i < 500; i++ {
		tutor := list[rng.Intn(len(list))]
		target := rng.Intn(len(list))

		next, err := MoveToPosition(list, tutor, target)
		require.NoError(t, err)
		require.Equal(t, target, IndexOf(next, tutor))
		require.ElementsMatch(t, list, next)
		list = next
	}
}
