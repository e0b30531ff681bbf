package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/farmchainx/dashboard/internal/domain/user"
)

var ErrNotLoggedIn = errors.New("not logged in")

// Session is the explicit application context handed to handlers: who is
// logged in and the backend token issued to them.
type Session struct {
	ID    string
	User  user.User
	Token string
}

// Store persists exactly two entries per session: the backend token and the
// serialized user record.
type Store interface {
	Login(ctx context.Context, sid string, u user.User, token string) error
	Logout(ctx context.Context, sid string) error
	Current(ctx context.Context, sid string) (Session, error)
}

// Backing is a Store whose storage can be health checked.
type Backing interface {
	Store
	Ping(ctx context.Context) error
}

var (
	_ Backing = (*MemoryStore)(nil)
	_ Backing = (*RedisStore)(nil)
)

func tokenKey(prefix, sid string) string { return prefix + ":" + sid + ":token" }
func userKey(prefix, sid string) string  { return prefix + ":" + sid + ":user" }

func encodeUser(u user.User) (string, error) {
	b, err := json.Marshal(u)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeUser fails on unparsable or incomplete records; callers treat that
// as corruption.
func decodeUser(raw string) (user.User, error) {
	var u user.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return user.User{}, err
	}
	if !u.Valid() {
		return user.User{}, errors.New("incomplete user record")
	}
	return u, nil
}

// resolve applies the both-or-nothing rule shared by every backend.
// clear reports whether the stored entries must be wiped.
func resolve(sid, token, rawUser string) (s Session, clear bool, err error) {
	if token == "" && rawUser == "" {
		return Session{}, false, ErrNotLoggedIn
	}

	if token == "" || rawUser == "" {
		return Session{}, true, ErrNotLoggedIn
	}

	u, decodeErr := decodeUser(rawUser)
	if decodeErr != nil {
		return Session{}, true, ErrNotLoggedIn
	}

	return Session{ID: sid, User: u, Token: token}, false, nil
}
