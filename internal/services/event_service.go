package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/joshua-takyi/connect/internal/helpers"
	"github.com/joshua-takyi/connect/internal/models"
)

type EventService struct {
	eventRepo models.EventRepo
}

func NewEventService(eventRepo models.EventRepo) *EventService {
	return &EventService{
		eventRepo: eventRepo,
	}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
}

func (es *EventService) ListEvents(ctx context.Context) ([]*models.Event, error) {
	return es.eventRepo.ListEvents(ctx)
}

func (es *EventService) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	return es.eventRepo.GetEventByID(ctx, id)
}

// CreateEvent stores a new event owned by creatorID. Attendees always start at 0.
func (es *EventService) CreateEvent(ctx context.Context, creatorID uuid.UUID, input *models.EventInput) (*models.Event, error) {
	if creatorID == uuid.Nil {
		return nil, fmt.Errorf("invalid user ID")
	}
	for _, s := range []*string{
		&input.Title, &input.Category, &input.Description, &input.Date, &input.Location,
		&input.City, &input.Area, &input.Zipcode, &input.Icon,
	} {
		*s = strings.TrimSpace(*s)
	}
	if err := models.Validate.Struct(input); err != nil {
		return nil, invalid(err)
	}

	maxAttendees := models.DefaultMaxAttendees
	if input.MaxAttendees != nil {
		maxAttendees = *input.MaxAttendees
	}
	creator := creatorID

	return es.eventRepo.CreateEvent(ctx, &models.Event{
		Title:        input.Title,
		Category:     input.Category,
		Description:  input.Description,
		Date:         input.Date,
		Location:     input.Location,
		City:         input.City,
		Area:         input.Area,
		Zipcode:      input.Zipcode,
		Icon:         input.Icon,
		MaxAttendees: maxAttendees,
		CreatedBy:    &creator,
	})
}

// organizerOf loads the event and checks userID created it.
func (es *EventService) organizerOf(ctx context.Context, id int64, userID uuid.UUID) (*models.Event, error) {
	event, err := es.eventRepo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !event.IsOrganizer(userID) {
		return nil, models.ErrNotOrganizer
	}
	return event, nil
}

func (es *EventService) UpdateEvent(ctx context.Context, id int64, userID uuid.UUID, update *models.EventUpdate) (*models.Event, error) {
	for _, s := range []*string{
		update.Title, update.Category, update.Description, update.Date, update.Location,
		update.City, update.Area, update.Zipcode, update.Icon,
	} {
		helpers.TrimPtr(s)
	}
	if err := models.Validate.Struct(update); err != nil {
		return nil, invalid(err)
	}

	event, err := es.organizerOf(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return event, nil
	}
	return es.eventRepo.UpdateEvent(ctx, id, update)
}

func (es *EventService) DeleteEvent(ctx context.Context, id int64, userID uuid.UUID) error {
	if _, err := es.organizerOf(ctx, id, userID); err != nil {
		return err
	}
	return es.eventRepo.DeleteEvent(ctx, id)
}

func (es *EventService) JoinEvent(ctx context.Context, id int64, userID uuid.UUID) (*models.Event, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("invalid user ID")
	}
	return es.eventRepo.JoinEvent(ctx, id, userID)
}

func (es *EventService) LeaveEvent(ctx context.Context, id int64, userID uuid.UUID) (*models.Event, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("invalid user ID")
	}
	return es.eventRepo.LeaveEvent(ctx, id, userID)
}

// HasJoined reports whether userID holds a seat. Unknown events are an error.
func (es *EventService) HasJoined(ctx context.Context, id int64, userID uuid.UUID) (bool, error) {
	if _, err := es.eventRepo.GetEventByID(ctx, id); err != nil {
		return false, err
	}
	return es.eventRepo.HasJoined(ctx, id, userID)
}

func (es *EventService) SearchEvents(ctx context.Context, location, category string) ([]*models.Event, error) {
	return es.eventRepo.SearchEvents(ctx, models.EventFilter{
		Location: strings.TrimSpace(location),
		Category: strings.TrimSpace(category),
	})
}

func (es *EventService) ListCreatedEvents(ctx context.Context, userID uuid.UUID) ([]*models.Event, error) {
	return es.eventRepo.ListEventsByCreator(ctx, userID)
}

// ListJoinedEvents backs /events/my: the events userID holds a seat in.
func (es *EventService) ListJoinedEvents(ctx context.Context, userID uuid.UUID) ([]*models.Event, error) {
	return es.eventRepo.ListJoinedEvents(ctx, userID)
}

func (es *EventService) ListFriendsEvents(ctx context.Context, userID uuid.UUID) ([]*models.FriendsEvent, error) {
	return es.eventRepo.ListFriendsEvents(ctx, userID)
}
