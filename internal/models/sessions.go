package models

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionData is stored as the opaque sess blob.
type SessionData struct {
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	UserAgent string    `json:"userAgent,omitempty"`
	IP        string    `json:"ip,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Session struct {
	SID    string      `db:"sid" json:"sid"`
	Data   SessionData `db:"sess" json:"sess"`
	Expire time.Time   `db:"expire" json:"expire"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.Expire)
}

type SessionRepo interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, sid string) (*Session, error)
	DeleteSession(ctx context.Context, sid string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// SessionCache sits in front of SessionRepo. Get returns (nil, nil) on a miss.
type SessionCache interface {
	Get(ctx context.Context, sid string) (*Session, error)
	Set(ctx context.Context, session *Session) error
	Delete(ctx context.Context, sid string) error
}

// NoopSessionCache is used when no cache backend is configured.
type NoopSessionCache struct{}

func (NoopSessionCache) Get(context.Context, string) (*Session, error) { return nil, nil }
func (NoopSessionCache) Set(context.Context, *Session) error           { return nil }
func (NoopSessionCache) Delete(context.Context, string) error          { return nil }
