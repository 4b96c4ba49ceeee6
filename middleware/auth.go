package middleware

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Authenticator checks dashboard credentials.
type Authenticator interface {
	Authenticate(username, password string) bool
}

// StaticCredentials accepts a single configured user.
type StaticCredentials struct {
	Username     string
	PasswordHash []byte
}

// NewStaticCredentials uses passwordHash when set, otherwise hashes password with the given cost.
func NewStaticCredentials(username, password, passwordHash string, cost int) (*StaticCredentials, error) {
	if username == "" {
		return nil, errors.New("admin username is required")
	}
	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, err
		}
		return &StaticCredentials{Username: username, PasswordHash: []byte(passwordHash)}, nil
	}
	if password == "" {
		return nil, errors.New("admin password is required")
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}
	return &StaticCredentials{Username: username, PasswordHash: hash}, nil
}

func (s *StaticCredentials) Authenticate(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.Username)) == 1
	passOK := bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(password)) == nil
	return userOK && passOK
}
