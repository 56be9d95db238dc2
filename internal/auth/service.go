package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"github.com/verandameister/quotedesk/internal/shared"
)

// Credentials is the single account allowed to sign in. When PasswordHash is
// set it is a bcrypt hash and Password is ignored.
type Credentials struct {
	Username     string
	Password     string
	PasswordHash string
}

// Service checks sign-in attempts against the configured credentials.
type Service struct {
	creds Credentials
}

// NewService constructs a new Service.
func NewService(creds Credentials) *Service {
	return &Service{creds: creds}
}

// Authenticate returns the user name on success and
// shared.ErrInvalidCredentials otherwise.
func (s *Service) Authenticate(username, password string) (string, error) {
	if s.creds.Username == "" {
		return "", shared.ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.creds.Username)) == 1

	var passOK bool
	if s.creds.PasswordHash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(s.creds.PasswordHash), []byte(password)) == nil
	} else {
		passOK = s.creds.Password != "" && subtle.ConstantTimeCompare([]byte(password), []byte(s.creds.Password)) == 1
	}
	if !userOK || !passOK {
		return "", shared.ErrInvalidCredentials
	}
	return s.creds.Username, nil
}
