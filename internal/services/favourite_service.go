package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/joshua-takyi/connect/internal/models"
)

type FavouriteService struct {
	favouritesRepo models.FavouriteRepo
	eventRepo      models.EventRepo
}

func NewFavouriteService(favouritesRepo models.FavouriteRepo, eventRepo models.EventRepo) *FavouriteService {
	return &FavouriteService{
		favouritesRepo: favouritesRepo,
		eventRepo:      eventRepo,
	}
}

// AddToFavourites is idempotent; the event must exist.
func (fs *FavouriteService) AddToFavourites(ctx context.Context, userId uuid.UUID, eventID int64) error {
	if userId == uuid.Nil {
		return fmt.Errorf("invalid user ID")
	}
	if _, err := fs.eventRepo.GetEventByID(ctx, eventID); err != nil {
		return err
	}
	return fs.favouritesRepo.AddToFavourites(ctx, userId, eventID)
}

func (fs *FavouriteService) RemoveFromFavourites(ctx context.Context, userId uuid.UUID, eventID int64) error {
	if userId == uuid.Nil {
		return fmt.Errorf("invalid user ID")
	}
	return fs.favouritesRepo.RemoveFromFavourites(ctx, userId, eventID)
}

// GetFavourites returns the favourited events, most recently added first.
// Events deleted since are skipped.
func (fs *FavouriteService) GetFavourites(ctx context.Context, userId uuid.UUID) ([]*models.Event, error) {
	ids, err := fs.favouritesRepo.GetFavouriteEventIDs(ctx, userId)
	if err != nil {
		return nil, err
	}
	return fs.eventRepo.GetEventsByIDs(ctx, ids)
}

// IsFavourite is false for events deleted since they were favourited. Stores
// without a foreign key to events keep such entries, so they are dropped here.
func (fs *FavouriteService) IsFavourite(ctx context.Context, userId uuid.UUID, eventID int64) (bool, error) {
	ok, err := fs.favouritesRepo.IsFavourite(ctx, userId, eventID)
	if err != nil || !ok {
		return false, err
	}
	_, err = fs.eventRepo.GetEventByID(ctx, eventID)
	if errors.Is(err, models.ErrEventNotFound) {
		if err := fs.favouritesRepo.RemoveFromFavourites(ctx, userId, eventID); err != nil {
			return false, fmt.Errorf("drop stale favourite: %w", err)
		}
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
