package auth

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a credential bound to exactly one institution.
type User struct {
	ID              int64  `json:"id"`
	Email           string `json:"email"`
	PasswordHash    []byte `json:"-"`
	InstitutionID   int64  `json:"institucion_id"`
	InstitutionName string `json:"institucion"` // resolved on read
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// CheckPassword re-hashes `pwd` with the salt embedded in the stored hash and compares in constant time.
func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// Session is the ephemeral authenticated context of one actor.
// The institution name is captured at login and never re-resolved.
type Session struct {
	UserID          int64     `json:"usuario_id"`
	Email           string    `json:"email"`
	InstitutionID   int64     `json:"institucion_id"`
	InstitutionName string    `json:"institucion"`
	StartedAt       time.Time `json:"inicio"` // UTC
}

// NewUser contains information needed to create a new credential.
type NewUser struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required"`
	InstitutionID int64  `json:"institucion_id" validate:"required,gt=0"`
}

// ResetUserPassword contains information needed to replace a credential's password.
type ResetUserPassword struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
