package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type ShortlistedTutor struct {
	Course        string    `db:"course_code" json:"course"`
	Tutor         string    `db:"tutor_email" json:"tutor"`
	Name          string    `db:"name" json:"name"`
	Seq           int       `db:"seq" json:"-"`
	ShortlistedAt time.Time `db:"shortlisted_at" json:"shortlisted_at"`
}

// ShortlistNote is visible to every lecturer of the course.
type ShortlistNote struct {
	ID        string    `db:"id" json:"id"`
	Course    string    `db:"course_code" json:"course"`
	Tutor     string    `db:"tutor_email" json:"tutor"`
	Lecturer  string    `db:"lecturer_email" json:"lecturer"`
	Message   string    `db:"message" json:"message" validate:"required,max=2000"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (n *ShortlistNote) Validate() error {
	validate := validator.New()
	return validate.Struct(n)
}

// Tutors returns shortlist emails in shortlist order.
func Tutors(shortlist []ShortlistedTutor) []string {
	out := make([]string, 0, len(shortlist))
	for _, s := range shortlist {
		out = append(out, s.Tutor)
	}
	return out
}
