package models

import "time"

type RankingState string

const (
	Uninitialized RankingState = "uninitialized"
	Initialized   RankingState = "initialized"
)

type RankingEntry struct {
	Course   string `db:"course_code" json:"course"`
	Lecturer string `db:"lecturer_email" json:"lecturer"`
	Tutor    string `db:"tutor_email" json:"tutor"`
	Rank     int    `db:"rank_index" json:"rank"`
}

// RankingList is one lecturer's ordered preference over a course shortlist.
// Entries are sorted by rank, most preferred first.
type RankingList struct {
	Course        string         `json:"course"`
	Lecturer      string         `json:"lecturer"`
	State         RankingState   `json:"state"`
	InitializedAt *time.Time     `json:"initialized_at,omitempty"`
	Entries       []RankingEntry `json:"entries"`
}

func (l *RankingList) Tutors() []string {
	out := make([]string, 0, len(l.Entries))
	for _, e := range l.Entries {
		out = append(out, e.Tutor)
	}
	return out
}
