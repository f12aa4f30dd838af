// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package store

import (
	"context"
	"strings"
	"time"

	"github.com/taibuivan/orvia/internal/platform/apperr"
	"github.com/taibuivan/orvia/internal/users/auth"
)

// # User Repository

// UserStore implements auth.UserRepository on top of the file store.
type UserStore struct {
	fs *FileStore
}

// NewUserStore creates a file-backed user repository.
func NewUserStore(fs *FileStore) *UserStore {
	return &UserStore{fs: fs}
}

func (r *UserStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var found *auth.User
	err := r.fs.View(func(doc *Document) error {
		for _, u := range doc.Users {
			if u.Email == email {
				cp := *u
				found = &cp
				return nil
			}
		}
		return apperr.NotFound("user")
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *UserStore) FindByID(_ context.Context, id string) (*auth.User, error) {
	var found *auth.User
	err := r.fs.View(func(doc *Document) error {
		u, ok := doc.Users[id]
		if !ok {
			return apperr.NotFound("user")
		}
		cp := *u
		found = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *UserStore) Create(_ context.Context, user *auth.User) error {
	return r.fs.Mutate(func(doc *Document) error {
		for _, existing := range doc.Users {
			if existing.Email == user.Email {
				return apperr.Conflict("An account with this email already exists")
			}
		}
		cp := *user
		doc.Users[user.ID] = &cp
		return nil
	})
}

func (r *UserStore) Update(_ context.Context, user *auth.User) error {
	return r.fs.Mutate(func(doc *Document) error {
		if _, ok := doc.Users[user.ID]; !ok {
			return apperr.NotFound("user")
		}
		cp := *user
		doc.Users[user.ID] = &cp
		return nil
	})
}

// # Challenge Repository

// ChallengeStore implements auth.ChallengeRepository on top of the file store.
//
// Challenges are keyed by normalized email, so storing a new one structurally
// replaces any prior challenge for the same address.
type ChallengeStore struct {
	fs *FileStore
}

// NewChallengeStore creates a file-backed challenge repository.
func NewChallengeStore(fs *FileStore) *ChallengeStore {
	return &ChallengeStore{fs: fs}
}

func (r *ChallengeStore) Upsert(_ context.Context, challenge *auth.OTPChallenge) error {
	return r.fs.Mutate(func(doc *Document) error {
		cp := *challenge
		doc.OTPChallenges[challenge.Email] = &cp
		return nil
	})
}

func (r *ChallengeStore) Replace(_ context.Context, challenge *auth.OTPChallenge, cooldown time.Duration) error {
	return r.fs.Mutate(func(doc *Document) error {
		if existing, ok := doc.OTPChallenges[challenge.Email]; ok {
			elapsed := challenge.CreatedAt.Sub(existing.CreatedAt)
			if elapsed < cooldown {
				remaining := int((cooldown - elapsed).Seconds()) + 1
				return apperr.RateLimited(remaining)
			}
		}
		cp := *challenge
		doc.OTPChallenges[challenge.Email] = &cp
		return nil
	})
}

func (r *ChallengeStore) Charge(_ context.Context, email string, now time.Time, maxAttempts int, verify func(challenge *auth.OTPChallenge) bool) (*auth.OTPChallenge, auth.ChargeOutcome, error) {
	var (
		consumed *auth.OTPChallenge
		outcome  auth.ChargeOutcome
	)
	// The verify callback runs a slow hash comparison under the write lock.
	// That serializes submissions per document, which is exactly what keeps
	// every wrong code paying for its own attempt.
	err := r.fs.Mutate(func(doc *Document) error {
		challenge, ok := doc.OTPChallenges[email]
		if !ok {
			return apperr.NotFound("verification code")
		}
		if challenge.Expired(now) {
			delete(doc.OTPChallenges, email)
			outcome = auth.ChargeExpired
			return nil
		}

		challenge.Attempts++
		switch {
		case verify(challenge):
			cp := *challenge
			consumed = &cp
			delete(doc.OTPChallenges, email)
			outcome = auth.ChargeMatched
		case challenge.Attempts >= maxAttempts:
			delete(doc.OTPChallenges, email)
			outcome = auth.ChargeLocked
		default:
			outcome = auth.ChargeMismatch
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return consumed, outcome, nil
}

func (r *ChallengeStore) FindByEmail(_ context.Context, email string) (*auth.OTPChallenge, error) {
	var found *auth.OTPChallenge
	err := r.fs.View(func(doc *Document) error {
		c, ok := doc.OTPChallenges[email]
		if !ok {
			return apperr.NotFound("verification code")
		}
		cp := *c
		found = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *ChallengeStore) Delete(_ context.Context, email string) error {
	return r.fs.Mutate(func(doc *Document) error {
		delete(doc.OTPChallenges, email)
		return nil
	})
}

// # Session Repository

// SessionStore implements auth.SessionRepository on top of the file store.
type SessionStore struct {
	fs *FileStore
}

// NewSessionStore creates a file-backed session repository.
func NewSessionStore(fs *FileStore) *SessionStore {
	return &SessionStore{fs: fs}
}

func (r *SessionStore) Create(_ context.Context, session *auth.Session) error {
	return r.fs.Mutate(func(doc *Document) error {
		cp := *session
		doc.Sessions[session.TokenHash] = &cp
		return nil
	})
}

func (r *SessionStore) FindByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	var found *auth.Session
	err := r.fs.View(func(doc *Document) error {
		s, ok := doc.Sessions[tokenHash]
		if !ok {
			return apperr.NotFound("session")
		}
		cp := *s
		found = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *SessionStore) Delete(_ context.Context, tokenHash string) error {
	return r.fs.Mutate(func(doc *Document) error {
		delete(doc.Sessions, tokenHash)
		return nil
	})
}
