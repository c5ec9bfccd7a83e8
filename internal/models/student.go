package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Student struct {
	ID         string `json:"id" validate:"required"`
	Name       string `json:"name"`
	RollNumber string `json:"rollNumber"`
}

func (s *Student) Validate() error {
	return validate.Struct(s)
}

// Section is a cohort as listed by the remote directory.
type Section struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Branch string `json:"branch"`
	Year   string `json:"year"`
}

func (s Section) DisplayName() string {
	return fmt.Sprintf("%s (%s %s)", s.Name, s.Branch, s.Year)
}

// SectionRef maps a display name to the backend id. Kept as a slice so the
// order of the last directory load survives serialization.
type SectionRef struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}
