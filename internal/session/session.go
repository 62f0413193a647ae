// Package session carries the identity every query is scoped to. It is passed
// explicitly; nothing reads the current user from global state.
package session

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Header set by the identity provider in front of the API.
const Header = "X-User-ID"

var ErrNoUser = errors.New("missing or invalid user id")

type Session struct {
	UserID uuid.UUID
}

func New(userID uuid.UUID) Session {
	return Session{UserID: userID}
}

// Parse builds a Session from the raw header value.
func Parse(raw string) (Session, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Session{}, ErrNoUser
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return Session{}, ErrNoUser
	}
	return Session{UserID: id}, nil
}
