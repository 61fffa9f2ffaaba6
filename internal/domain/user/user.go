package user

import (
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/geocoder89/taskhub/internal/domain"
)

const (
	MinNameLen     = 2
	MinPasswordLen = 6
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile is the only representation of a user that leaves the service.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email}
}

type SignUpRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required,min=2"`
}

// NormalizeEmail is applied on both signup and login so lookups match.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *SignUpRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)

	fields := map[string]string{}

	if utf8.RuneCountInString(r.Name) < MinNameLen {
		fields["name"] = "must be at least 2 characters"
	}
	if !validEmail(r.Email) {
		fields["email"] = "must be a valid email address"
	}
	if utf8.RuneCountInString(r.Password) < MinPasswordLen {
		fields["password"] = "must be at least 6 characters"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func (r *LoginRequest) Validate() error {
	r.Email = NormalizeEmail(r.Email)

	fields := map[string]string{}

	if !validEmail(r.Email) {
		fields["email"] = "must be a valid email address"
	}
	if utf8.RuneCountInString(r.Password) < MinPasswordLen {
		fields["password"] = "must be at least 6 characters"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func (r *UpdateProfileRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)

	if utf8.RuneCountInString(r.Name) < MinNameLen {
		return domain.NewValidationError("name", "must be at least 2 characters")
	}
	return nil
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	// reject "Name <addr>" forms, only a bare address is accepted
	return err == nil && addr.Address == email
}
