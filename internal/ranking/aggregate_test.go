package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func candidates(tutors ...string) []Candidate {
	out := make([]Candidate, 0, len(tutors))
	for _, t := range tutors {
		out = append(out, Candidate{Tutor: t, Name: "Name " + t})
	}
	return out
}

func TestContribution(t *testing.T) {
	assert.Equal(t, 6, Contribution(5, 0))
	assert.Equal(t, 2, Contribution(5, 4))
	assert.Equal(t, 3, Contribution(2, 0))
}

func TestAggregate(t *testing.T) {
	t.Run("two lecturers with opposite preferences tie", func(t *testing.T) {
		scores := Aggregate(
			candidates("a", "b"),
			[][]string{{"a", "b"}, {"b", "a"}},
			Options{},
		)
		assert.Equal(t, []Score{
			{Tutor: "a", Name: "Name a", Score: 5},
			{Tutor: "b", Name: "Name b", Score: 5},
		}, scores)
	})

	t.Run("ties are broken by tutor email", func(t *testing.T) {
		scores := Aggregate(
			candidates("zed", "amy"),
			[][]string{{"zed", "amy"}, {"amy", "zed"}},
			Options{},
		)
		assert.Equal(t, "amy", scores[0].Tutor)
		assert.Equal(t, "zed", scores[1].Tutor)
	})

	t.Run("sorted descending", func(t *testing.T) {
		scores := Aggregate(
			candidates("a", "b", "c"),
			[][]string{{"c", "b", "a"}, {"c", "a", "b"}},
			Options{},
		)
		assert.Equal(t, []Score{
			{Tutor: "c", Name: "Name c", Score: 8},
			{Tutor: "a", Name: "Name a", Score: 5},
			{Tutor: "b", Name: "Name b", Score: 5},
		}, scores)
	})

	t.Run("reverse and limit", func(t *testing.T) {
		scores := Aggregate(
			candidates("a", "b", "c"),
			[][]string{{"a", "b", "c"}},
			Options{Reverse: true, Limit: 2},
		)
		assert.Equal(t, []Score{
			{Tutor: "c", Name: "Name c", Score: 2},
			{Tutor: "b", Name: "Name b", Score: 3},
		}, scores)
	})

	t.Run("limit is applied after scoring the full set", func(t *testing.T) {
		scores := Aggregate(
			candidates("a", "b", "c"),
			[][]string{{"c", "b", "a"}},
			Options{Limit: 1},
		)
		assert.Equal(t, []Score{{Tutor: "c", Name: "Name c", Score: 4}}, scores)
	})

	t.Run("unranked candidates score zero", func(t *testing.T) {
		scores := Aggregate(candidates("a", "b"), [][]string{{"a"}}, Options{})
		assert.Equal(t, 2, scores[0].Score)
		assert.Equal(t, 0, scores[1].Score)
	})

	t.Run("ranked tutors that are no longer candidates are ignored", func(t *testing.T) {
		scores := Aggregate(candidates("a"), [][]string{{"gone", "a"}}, Options{})
		assert.Equal(t, []Score{{Tutor: "a", Name: "Name a", Score: 2}}, scores)
	})

	t.Run("empty shortlist gives empty chart", func(t *testing.T) {
		scores := Aggregate(nil, [][]string{{"a"}}, Options{})
		assert.NotNil(t, scores)
		assert.Empty(t, scores)
	})
}

func TestAggregate_BetterPositionNeverScoresLess(t *testing.T) {
	others := [][]string{{"b", "a", "c", "d"}, {"d", "c", "b", "a"}}
	base := []string{"b", "c", "d"}

	previous := -1
	for pos := len(base); pos >= 0; pos-- {
		list := append([]string{}, base[:pos]...)
		list = append(list, "a")
		list = append(list, base[pos:]...)

		scores := Aggregate(candidates("a", "b", "c", "d"), append([][]string{list}, others...), Options{})
		var got int
		for _, s := range scores {
			if s.Tutor == "a" {
				got = s.Score
			}
		}
		assert.GreaterOrEqual(t, got, previous)
		previous = got
	}
}
