package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type Role string

const (
	RoleTutor    Role = "tutor"
	RoleLecturer Role = "lecturer"
)

type User struct {
	Email     string    `db:"email" json:"email" validate:"required,email"`
	Name      string    `db:"name" json:"name" validate:"required,max=120"`
	Role      Role      `db:"role" json:"role" validate:"required,oneof=tutor lecturer"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (u *User) Validate() error {
	validate := validator.New()
	return validate.Struct(u)
}
