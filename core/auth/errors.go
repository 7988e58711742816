package auth

import (
	"net/url"

	"github.com/pkg/errors"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("a user with this email already exists")

	ErrUnknownEmail  = &AuthError{Code: "unknown_email", Message: "el email ingresado no está registrado"}
	ErrWrongPassword = &AuthError{Code: "wrong_password", Message: "la contraseña es incorrecta"}
)

// AuthError is a login failure; Message is meant to be shown verbatim on the login form.
type AuthError struct {
	Code    string
	Message string
}

func (err *AuthError) Error() string {
	return err.Message
}

func IsAuthError(err error) bool {
	_, ok := errors.Cause(err).(*AuthError)
	return ok
}

// Redirect is returned by Guard.Authorize when there is no authenticated session.
// Next is the originally requested path, to return to after a successful login.
type Redirect struct {
	Target string
	Next   string
}

func (r *Redirect) Error() string {
	return "authentication required"
}

// Location is the full redirect URL, eg. /login?next=%2Fadmin.
func (r *Redirect) Location() string {
	if r.Next == "" {
		return r.Target
	}
	return r.Target + "?" + url.Values{"next": []string{r.Next}}.Encode()
}

func IsRedirect(err error) bool {
	_, ok := errors.Cause(err).(*Redirect)
	return ok
}
