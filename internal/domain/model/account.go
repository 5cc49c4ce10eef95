package model

import "strings"

// RegisterRequest is the local sign-up form.
type RegisterRequest struct {
	Email           string `json:"email"            schema:"email"            validate:"required,email,max=255"`
	Password        string `json:"password"         schema:"password"         validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" schema:"confirm_password" validate:"eqfield=Password"`
	FirstName       string `json:"first_name"       schema:"first_name"       validate:"max=100"`
	LastName        string `json:"last_name"        schema:"last_name"        validate:"max=100"`
}

// Validate trims names and email, then checks the form. Passwords are not trimmed.
func (r *RegisterRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	verr, err := validateStruct(r)
	if err != nil {
		return err
	}
	return verr.orNil()
}

// LoginRequest is the local sign-in form. Next is an optional same-site path to return to.
type LoginRequest struct {
	Email    string `json:"email"    schema:"email"    validate:"required,email"`
	Password string `json:"password" schema:"password" validate:"required"`
	Next     string `json:"next"     schema:"next"`
}

// Validate normalizes the email and checks both credentials are present.
func (r *LoginRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	verr, err := validateStruct(r)
	if err != nil {
		return err
	}
	return verr.orNil()
}
