package models

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

type FriendRequest struct {
	ID         uuid.UUID           `db:"id" json:"id"`
	SenderID   uuid.UUID           `db:"sender_id" json:"senderId"`
	ReceiverID uuid.UUID           `db:"receiver_id" json:"receiverId"`
	Status     FriendRequestStatus `db:"status" json:"status"`
	CreatedAt  time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time           `db:"updated_at" json:"updatedAt"`

	// Populated by the listing queries only.
	Sender   *User `json:"sender,omitempty"`
	Receiver *User `json:"receiver,omitempty"`
}

type Friend struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"userId"`
	FriendID  uuid.UUID `db:"friend_id" json:"friendId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type FriendRepo interface {
	CreateFriendRequest(ctx context.Context, senderID, receiverID uuid.UUID) (*FriendRequest, error)
	GetFriendRequest(ctx context.Context, id uuid.UUID) (*FriendRequest, error)
	// RespondToFriendRequest moves a pending request addressed to receiverID to
	// status. Accepting writes both friend rows in the same transaction.
	RespondToFriendRequest(ctx context.Context, id, receiverID uuid.UUID, status FriendRequestStatus) (*FriendRequest, error)
	ListFriends(ctx context.Context, userID uuid.UUID) ([]*User, error)
	ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]*FriendRequest, error)
	ListSentRequests(ctx context.Context, userID uuid.UUID) ([]*FriendRequest, error)
	RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error
	AreFriends(ctx context.Context, userID, otherID uuid.UUID) (bool, error)
}
