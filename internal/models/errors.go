package models

import "errors"

// Domain errors returned by repositories and services.
var (
	ErrInvalidInput = errors.New("invalid input")

	ErrEventNotFound  = errors.New("event not found")
	ErrEventFull      = errors.New("event is full")
	ErrAlreadyJoined  = errors.New("already joined this event")
	ErrNotJoined      = errors.New("not a participant of this event")
	ErrCapacityTooLow = errors.New("max attendees cannot be lower than the current attendee count")
	ErrNotOrganizer   = errors.New("only the organizer can modify this event")

	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found or expired")

	ErrFriendRequestNotFound = errors.New("friend request not found")
	ErrFriendRequestExists   = errors.New("a pending friend request already exists")
	ErrRequestNotPending     = errors.New("friend request has already been answered")
	ErrNotRequestRecipient   = errors.New("only the recipient can answer this friend request")
	ErrAlreadyFriends        = errors.New("already friends")
	ErrNotFriends            = errors.New("not friends")
	ErrSelfFriendRequest     = errors.New("cannot send a friend request to yourself")

	ErrUploadsDisabled = errors.New("image uploads are not configured")
)
