package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ UserRepo = (*PostgresRepo)(nil)

const userColumns = `u.id, u.email, u.password_hash, u.first_name, u.last_name, u.bio, u.city,
	u.profile_image_url, u.created_at, u.updated_at`

// excludeSelfAndFriends is shared by the discovery queries; $1 is the caller.
const excludeSelfAndFriends = `u.id <> $1 AND NOT EXISTS (
	SELECT 1 FROM friends f WHERE f.user_id = $1 AND f.friend_id = u.id)`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Bio, &u.City,
		&u.ProfileImageURL, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func collectUsers(rows pgx.Rows) ([]*User, error) {
	defer rows.Close()
	users := []*User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (r *PostgresRepo) CreateUser(ctx context.Context, user *User) (*User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
		INSERT INTO users AS u (email, password_hash, first_name, last_name, bio, city, profile_image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+userColumns,
		strings.ToLower(strings.TrimSpace(user.Email)), user.PasswordHash, user.FirstName,
		user.LastName, user.Bio, user.City, user.ProfileImageURL,
	))
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *PostgresRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (r *PostgresRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.email = $1`, strings.ToLower(strings.TrimSpace(email))))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *PostgresRepo) UpdateUser(ctx context.Context, id uuid.UUID, update *ProfileUpdate) (*User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
		UPDATE users AS u SET
			first_name        = COALESCE($2, u.first_name),
			last_name         = COALESCE($3, u.last_name),
			bio               = COALESCE($4, u.bio),
			city              = COALESCE($5, u.city),
			profile_image_url = COALESCE($6, u.profile_image_url),
			updated_at        = now()
		WHERE u.id = $1
		RETURNING `+userColumns,
		id, update.FirstName, update.LastName, update.Bio, update.City, update.ProfileImageURL,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (r *PostgresRepo) DiscoverUsers(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM users u WHERE `+excludeSelfAndFriends, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count discoverable users: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users u
		WHERE `+excludeSelfAndFriends+`
		ORDER BY u.created_at DESC, u.id
		OFFSET $2 LIMIT $3`, userID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("discover users: %w", err)
	}
	users, err := collectUsers(rows)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *PostgresRepo) SearchUsers(ctx context.Context, userID uuid.UUID, term string, limit int) ([]*User, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(term)) + "%"
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users u
		WHERE `+excludeSelfAndFriends+`
		  AND (u.first_name ILIKE $2 OR u.last_name ILIKE $2
		       OR (u.first_name || ' ' || u.last_name) ILIKE $2 OR u.email ILIKE $2)
		ORDER BY u.first_name, u.last_name, u.id
		LIMIT $3`, userID, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return collectUsers(rows)
}
