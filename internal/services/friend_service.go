package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/joshua-takyi/connect/internal/models"
)

type FriendService struct {
	friendRepo models.FriendRepo
	userRepo   models.UserRepo
}

func NewFriendService(friendRepo models.FriendRepo, userRepo models.UserRepo) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

func (fs *FriendService) SendFriendRequest(ctx context.Context, senderID, receiverID uuid.UUID) (*models.FriendRequest, error) {
	if senderID == receiverID {
		return nil, models.ErrSelfFriendRequest
	}
	receiver, err := fs.userRepo.GetUserByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}

	fr, err := fs.friendRepo.CreateFriendRequest(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	fr.Receiver = receiver
	return fr, nil
}

func (fs *FriendService) AcceptFriendRequest(ctx context.Context, requestID, userID uuid.UUID) (*models.FriendRequest, error) {
	return fs.friendRepo.RespondToFriendRequest(ctx, requestID, userID, models.FriendRequestAccepted)
}

func (fs *FriendService) RejectFriendRequest(ctx context.Context, requestID, userID uuid.UUID) (*models.FriendRequest, error) {
	return fs.friendRepo.RespondToFriendRequest(ctx, requestID, userID, models.FriendRequestRejected)
}

func (fs *FriendService) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	return fs.friendRepo.RemoveFriend(ctx, userID, friendID)
}

func (fs *FriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]*models.User, error) {
	return fs.friendRepo.ListFriends(ctx, userID)
}

// ListPendingRequests returns requests waiting on userID, each with its sender.
func (fs *FriendService) ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]*models.FriendRequest, error) {
	return fs.friendRepo.ListPendingRequests(ctx, userID)
}

// ListSentRequests returns userID's open requests, each with its receiver.
func (fs *FriendService) ListSentRequests(ctx context.Context, userID uuid.UUID) ([]*models.FriendRequest, error) {
	return fs.friendRepo.ListSentRequests(ctx, userID)
}
