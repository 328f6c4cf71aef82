package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ FriendRepo = (*PostgresRepo)(nil)

const friendRequestColumns = `fr.id, fr.sender_id, fr.receiver_id, fr.status, fr.created_at, fr.updated_at`

func scanFriendRequest(row pgx.Row) (*FriendRequest, error) {
	var fr FriendRequest
	if err := row.Scan(&fr.ID, &fr.SenderID, &fr.ReceiverID, &fr.Status, &fr.CreatedAt, &fr.UpdatedAt); err != nil {
		return nil, err
	}
	return &fr, nil
}

func (r *PostgresRepo) CreateFriendRequest(ctx context.Context, senderID, receiverID uuid.UUID) (*FriendRequest, error) {
	if senderID == receiverID {
		return nil, ErrSelfFriendRequest
	}
	friends, err := r.AreFriends(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, ErrAlreadyFriends
	}

	fr, err := scanFriendRequest(r.pool.QueryRow(ctx, `
		INSERT INTO friend_requests AS fr (sender_id, receiver_id, status)
		VALUES ($1, $2, 'pending')
		RETURNING `+friendRequestColumns, senderID, receiverID))
	if err != nil {
		switch pgErrorCode(err) {
		case pgUniqueViolation:
			return nil, ErrFriendRequestExists
		case pgForeignKeyViolation:
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("create friend request: %w", err)
	}
	return fr, nil
}

func (r *PostgresRepo) GetFriendRequest(ctx context.Context, id uuid.UUID) (*FriendRequest, error) {
	fr, err := scanFriendRequest(r.pool.QueryRow(ctx,
		`SELECT `+friendRequestColumns+` FROM friend_requests fr WHERE fr.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFriendRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get friend request: %w", err)
	}
	return fr, nil
}

func (r *PostgresRepo) RespondToFriendRequest(ctx context.Context, id, receiverID uuid.UUID, status FriendRequestStatus) (*FriendRequest, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin respond: %w", err)
	}
	defer tx.Rollback(ctx)

	fr, err := scanFriendRequest(tx.QueryRow(ctx, `
		UPDATE friend_requests AS fr SET status = $3, updated_at = now()
		WHERE fr.id = $1 AND fr.receiver_id = $2 AND fr.status = 'pending'
		RETURNING `+friendRequestColumns, id, receiverID, status))
	if errors.Is(err, pgx.ErrNoRows) {
		existing, getErr := r.GetFriendRequest(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		if existing.ReceiverID != receiverID {
			return nil, ErrNotRequestRecipient
		}
		return nil, ErrRequestNotPending
	}
	if err != nil {
		return nil, fmt.Errorf("update friend request: %w", err)
	}

	if status == FriendRequestAccepted {
		_, err := tx.Exec(ctx, `
			INSERT INTO friends (user_id, friend_id) VALUES ($1, $2), ($2, $1)
			ON CONFLICT (user_id, friend_id) DO NOTHING`, fr.SenderID, fr.ReceiverID)
		if err != nil {
			return nil, fmt.Errorf("insert friends: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit respond: %w", err)
	}
	return fr, nil
}

func (r *PostgresRepo) ListFriends(ctx context.Context, userID uuid.UUID) ([]*User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM friends f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = $1
		ORDER BY u.first_name, u.last_name, u.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return collectUsers(rows)
}

// listRequests loads pending requests together with the user on the other end.
// column names the side filtered by userID.
func (r *PostgresRepo) listRequests(ctx context.Context, userID uuid.UUID, column, joinColumn string) ([]*FriendRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+friendRequestColumns+`, `+userColumns+`
		FROM friend_requests fr
		JOIN users u ON u.id = fr.`+joinColumn+`
		WHERE fr.`+column+` = $1 AND fr.status = 'pending'
		ORDER BY fr.created_at DESC, fr.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []*FriendRequest{}
	for rows.Next() {
		var fr FriendRequest
		var u User
		err := rows.Scan(
			&fr.ID, &fr.SenderID, &fr.ReceiverID, &fr.Status, &fr.CreatedAt, &fr.UpdatedAt,
			&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Bio, &u.City,
			&u.ProfileImageURL, &u.CreatedAt, &u.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if joinColumn == "sender_id" {
			fr.Sender = &u
		} else {
			fr.Receiver = &u
		}
		requests = append(requests, &fr)
	}
	return requests, rows.Err()
}

func (r *PostgresRepo) ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]*FriendRequest, error) {
	requests, err := r.listRequests(ctx, userID, "receiver_id", "sender_id")
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return requests, nil
}

func (r *PostgresRepo) ListSentRequests(ctx context.Context, userID uuid.UUID) ([]*FriendRequest, error) {
	requests, err := r.listRequests(ctx, userID, "sender_id", "receiver_id")
	if err != nil {
		return nil, fmt.Errorf("list sent requests: %w", err)
	}
	return requests, nil
}

// RemoveFriend deletes both directions of the friendship.
func (r *PostgresRepo) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM friends
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)`, userID, friendID)
	if err != nil {
		return fmt.Errorf("remove friend: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFriends
	}
	return nil
}

func (r *PostgresRepo) AreFriends(ctx context.Context, userID, otherID uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM friends WHERE user_id = $1 AND friend_id = $2)`, userID, otherID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check friends: %w", err)
	}
	return ok, nil
}
