package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

var _ SessionRepo = (*PostgresRepo)(nil)

func (r *PostgresRepo) CreateSession(ctx context.Context, session *Session) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (sid, sess, expire) VALUES ($1, $2, $3)`,
		session.SID, session.Data, session.Expire)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession returns ErrSessionNotFound for unknown and expired sessions alike.
func (r *PostgresRepo) GetSession(ctx context.Context, sid string) (*Session, error) {
	var s Session
	err := r.pool.QueryRow(ctx,
		`SELECT sid, sess, expire FROM sessions WHERE sid = $1 AND expire > now()`, sid,
	).Scan(&s.SID, &s.Data, &s.Expire)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepo) DeleteSession(ctx context.Context, sid string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE sid = $1`, sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *PostgresRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expire <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
