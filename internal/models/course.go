package models

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var courseCodeRegex = regexp.MustCompile(`^[A-Z]{4}\d{4}$`)

// Course is identified by its RMIT style code, e.g. COSC1111.
type Course struct {
	Code             string `db:"code" json:"code" validate:"required,coursecode"`
	Title            string `db:"title" json:"title" validate:"required,max=200"`
	FullTimeFriendly bool   `db:"full_time_friendly" json:"full_time_friendly"`
	PartTimeFriendly bool   `db:"part_time_friendly" json:"part_time_friendly"`
}

type CourseLecturer struct {
	Course   string `db:"course_code" json:"course"`
	Lecturer string `db:"lecturer_email" json:"lecturer" validate:"required,email"`
}

func (c *Course) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("coursecode", func(fl validator.FieldLevel) bool {
		return courseCodeRegex.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	return validate.Struct(c)
}
