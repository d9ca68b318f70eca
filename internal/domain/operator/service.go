package operator

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const RoleAdmin = "admin"

var ErrInvalidCredentials = errors.New("invalid credentials")

// Operator is the administrator account configured for this deployment.
type Operator struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type Service struct {
	username     string
	passwordHash []byte
}

// NewService takes the bcrypt hash of the administrator password.
func NewService(username, passwordHash string) *Service {
	return &Service{username: strings.TrimSpace(username), passwordHash: []byte(passwordHash)}
}

func (s *Service) Login(username, password string) (*Operator, error) {
	if s.username == "" || len(s.passwordHash) == 0 {
		return nil, ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(s.username)) == 1
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil || !userOK {
		return nil, ErrInvalidCredentials
	}
	return &Operator{Username: s.username, Role: RoleAdmin}, nil
}
