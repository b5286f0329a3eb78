package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type TutorApplication struct {
	Course       string    `db:"course_code" json:"course"`
	Tutor        string    `db:"tutor_email" json:"tutor" validate:"required,email"`
	LabAssistant bool      `db:"lab_assistant" json:"lab_assistant"`
	AppliedAt    time.Time `db:"applied_at" json:"applied_at"`
}

type ConfirmedTutor struct {
	Course       string    `db:"course_code" json:"course"`
	Tutor        string    `db:"tutor_email" json:"tutor"`
	LabAssistant bool      `db:"lab_assistant" json:"lab_assistant"`
	ConfirmedAt  time.Time `db:"confirmed_at" json:"confirmed_at"`
}

func (a *TutorApplication) Validate() error {
	validate := validator.New()
	return validate.Struct(a)
}
