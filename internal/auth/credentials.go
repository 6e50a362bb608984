package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrUnknownUser = errors.New("unknown user")

// CredentialStore resolves a username to its bcrypt password hash.
type CredentialStore interface {
	PasswordHashFor(username string) (string, error)
}

// StaticCredentials is the single configured login. The plaintext password is hashed on
// construction and not retained.
type StaticCredentials struct {
	username     string
	passwordHash string
}

func NewStaticCredentials(username, password string, cost int) (*StaticCredentials, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}
	return &StaticCredentials{username: username, passwordHash: string(hash)}, nil
}

func (c *StaticCredentials) PasswordHashFor(username string) (string, error) {
	if username != c.username {
		return "", ErrUnknownUser
	}
	return c.passwordHash, nil
}
