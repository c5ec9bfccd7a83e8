package models

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	return validate.Struct(r)
}

type MarkRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=present absent Present Absent"`
}

func (r *MarkRequest) Validate() error {
	return validate.Struct(r)
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=present absent Present Absent"`
}

func (r *StatusRequest) Validate() error {
	return validate.Struct(r)
}

type SelectSectionRequest struct {
	Name string `json:"name" validate:"required"`
}

func (r *SelectSectionRequest) Validate() error {
	return validate.Struct(r)
}
