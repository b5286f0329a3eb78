package ranking

import (
	"sort"
)

type Candidate struct {
	Tutor string
	Name  string
}

type Score struct {
	Tutor string `json:"tutor"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type Options struct {
	// Reverse puts the least preferred tutors first.
	Reverse bool
	// Limit caps the returned chart. Zero or negative means no cap.
	Limit int
}

// Contribution is what a single lecturer's list of length L gives the tutor at
// index i.
func Contribution(length, index int) int {
	return length - index + 1
}

// Aggregate scores every candidate by summing contributions from each ranked
// list. Candidates absent from a list get nothing from it, and list entries
// that are not candidates are ignored. Ties are broken by tutor email.
func Aggregate(candidates []Candidate, lists [][]string, opts Options) []Score {
	if len(candidates) == 0 {
		return []Score{}
	}

	totals := make(map[string]int, len(candidates))
	for _, c := range candidates {
		totals[c.Tutor] = 0
	}
	for _, list := range lists {
		for i, tutor := range list {
			if _, ok := totals[tutor]; ok {
				totals[tutor] += Contribution(len(list), i)
			}
		}
	}

	scores := make([]Score, 0, len(candidates))
	for _, c := range candidates {
		scores = append(scores, Score{Tutor: c.Tutor, Name: c.Name, Score: totals[c.Tutor]})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Tutor < scores[j].Tutor
	})

	if opts.Reverse {
		for i, j := 0, len(scores)-1; i < j; i, j = i+1, j-1 {
			scores[i], scores[j] = scores[j], scores[i]
		}
	}
	if opts.Limit > 0 && len(scores) > opts.Limit {
		scores = scores[:opts.Limit]
	}
	return scores
}
