package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

// AdminName is the principal stored in admin sessions.
const AdminName = "admin"

// ErrInvalidCredentials is returned when a login password does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// PasswordChecker verifies the shared admin password. Only the bcrypt hash
// is kept in memory.
type PasswordChecker struct {
	hash []byte
}

// NewPasswordChecker hashes password with bcrypt.DefaultCost.
func NewPasswordChecker(password string) (*PasswordChecker, error) {
	if password == "" {
		return nil, errors.New("auth: admin password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash admin password: %w", err)
	}
	return &PasswordChecker{hash: hash}, nil
}

// Check returns ErrInvalidCredentials unless password matches.
func (c *PasswordChecker) Check(password string) error {
	if err := bcrypt.CompareHashAndPassword(c.hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Login starts an admin session and writes its cookie.
func Login(w http.ResponseWriter, r *http.Request, store sessions.Store) error {
	session, err := store.Get(r, sessionName)
	if err != nil && session == nil {
		return fmt.Errorf("auth: get session: %w", err)
	}
	session.Values[sessionAdminKey] = AdminName
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("auth: save session: %w", err)
	}
	return nil
}

// Logout expires the admin session and clears its cookie.
func Logout(w http.ResponseWriter, r *http.Request, store sessions.Store) error {
	session, err := store.Get(r, sessionName)
	if err != nil && session == nil {
		return fmt.Errorf("auth: get session: %w", err)
	}
	delete(session.Values, sessionAdminKey)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("auth: clear session: %w", err)
	}
	return nil
}
