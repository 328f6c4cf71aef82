// Package memstore keeps every repository in process memory. It backs the
// service and handler tests and mirrors the Postgres semantics, including the
// atomic seat accounting on join.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/connect/internal/models"
)

var (
	_ models.EventRepo     = (*Store)(nil)
	_ models.UserRepo      = (*Store)(nil)
	_ models.SessionRepo   = (*Store)(nil)
	_ models.FriendRepo    = (*Store)(nil)
	_ models.FavouriteRepo = (*Store)(nil)
)

type participant struct {
	userID  uuid.UUID
	eventID int64
}

type favourite struct {
	eventID int64
	addedAt time.Time
	seq     int
}

type Store struct {
	mu sync.Mutex

	nextEventID int64
	seq         int
	now         func() time.Time

	events       map[int64]*models.Event
	users        map[uuid.UUID]*models.User
	sessions     map[string]*models.Session
	requests     map[uuid.UUID]*models.FriendRequest
	friends      map[uuid.UUID]map[uuid.UUID]time.Time
	participants map[participant]time.Time
	favourites   map[uuid.UUID]map[int64]favourite
}

func New() *Store {
	return &Store{
		nextEventID:  1,
		now:          func() time.Time { return time.Now().UTC() },
		events:       map[int64]*models.Event{},
		users:        map[uuid.UUID]*models.User{},
		sessions:     map[string]*models.Session{},
		requests:     map[uuid.UUID]*models.FriendRequest{},
		friends:      map[uuid.UUID]map[uuid.UUID]time.Time{},
		participants: map[participant]time.Time{},
		favourites:   map[uuid.UUID]map[int64]favourite{},
	}
}

func copyEvent(e *models.Event) *models.Event {
	c := *e
	if e.CreatedBy != nil {
		id := *e.CreatedBy
		c.CreatedBy = &id
	}
	return &c
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func copyRequest(fr *models.FriendRequest) *models.FriendRequest {
	c := *fr
	c.Sender, c.Receiver = nil, nil
	return &c
}

func sortEvents(events []*models.Event) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].ID < events[j].ID
	})
}

func sortUsersByName(users []*models.User) {
	sort.Slice(users, func(i, j int) bool {
		a, b := users[i], users[j]
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.ID.String() < b.ID.String()
	})
}

// events

func (s *Store) ListEvents(ctx context.Context) ([]*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, copyEvent(e))
	}
	sortEvents(out)
	return out, nil
}

func (s *Store) GetEventByID(ctx context.Context, id int64) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	return copyEvent(e), nil
}

func (s *Store) GetEventsByIDs(ctx context.Context, ids []int64) ([]*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Event{}
	for _, id := range ids {
		if e, ok := s.events[id]; ok {
			out = append(out, copyEvent(e))
		}
	}
	return out, nil
}

func (s *Store) CreateEvent(ctx context.Context, event *models.Event) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.CreatedBy != nil {
		if _, ok := s.users[*event.CreatedBy]; !ok {
			return nil, models.ErrUserNotFound
		}
	}
	e := copyEvent(event)
	e.ID = s.nextEventID
	s.nextEventID++
	e.Attendees = 0
	if e.MaxAttendees == 0 {
		e.MaxAttendees = models.DefaultMaxAttendees
	}
	e.CreatedAt = s.now()
	s.events[e.ID] = e
	return copyEvent(e), nil
}

func (s *Store) UpdateEvent(ctx context.Context, id int64, u *models.EventUpdate) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	if u.MaxAttendees != nil && *u.MaxAttendees < e.Attendees {
		return nil, models.ErrCapacityTooLow
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&e.Title, u.Title)
	set(&e.Category, u.Category)
	set(&e.Description, u.Description)
	set(&e.Date, u.Date)
	set(&e.Location, u.Location)
	set(&e.City, u.City)
	set(&e.Area, u.Area)
	set(&e.Zipcode, u.Zipcode)
	set(&e.Icon, u.Icon)
	if u.MaxAttendees != nil {
		e.MaxAttendees = *u.MaxAttendees
	}
	return copyEvent(e), nil
}

func (s *Store) DeleteEvent(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return models.ErrEventNotFound
	}
	delete(s.events, id)
	for p := range s.participants {
		if p.eventID == id {
			delete(s.participants, p)
		}
	}
	for _, favs := range s.favourites {
		delete(favs, id)
	}
	return nil
}

func (s *Store) JoinEvent(ctx context.Context, eventID int64, userID uuid.UUID) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	key := participant{userID: userID, eventID: eventID}
	if _, joined := s.participants[key]; joined {
		return nil, models.ErrAlreadyJoined
	}
	if e.Attendees >= e.MaxAttendees {
		return nil, models.ErrEventFull
	}
	if _, ok := s.users[userID]; !ok {
		return nil, models.ErrUserNotFound
	}
	e.Attendees++
	s.participants[key] = s.now()
	return copyEvent(e), nil
}

func (s *Store) LeaveEvent(ctx context.Context, eventID int64, userID uuid.UUID) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	key := participant{userID: userID, eventID: eventID}
	if _, joined := s.participants[key]; !joined {
		return nil, models.ErrNotJoined
	}
	delete(s.participants, key)
	if e.Attendees > 0 {
		e.Attendees--
	}
	return copyEvent(e), nil
}

func (s *Store) HasJoined(ctx context.Context, eventID int64, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.participants[participant{userID: userID, eventID: eventID}]
	return ok, nil
}

func (s *Store) SearchEvents(ctx context.Context, filter models.EventFilter) ([]*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	term := strings.ToLower(strings.TrimSpace(filter.Location))
	category := strings.TrimSpace(filter.Category)
	out := []*models.Event{}
	for _, e := range s.events {
		if term != "" &&
			!strings.Contains(strings.ToLower(e.City), term) &&
			!strings.Contains(strings.ToLower(e.Area), term) &&
			!strings.Contains(strings.ToLower(e.Zipcode), term) {
			continue
		}
		if category != "" && e.Category != category {
			continue
		}
		out = append(out, copyEvent(e))
	}
	sortEvents(out)
	return out, nil
}

func (s *Store) ListEventsByCreator(ctx context.Context, userID uuid.UUID) ([]*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Event{}
	for _, e := range s.events {
		if e.IsOrganizer(userID) {
			out = append(out, copyEvent(e))
		}
	}
	sortEvents(out)
	return out, nil
}

func (s *Store) ListJoinedEvents(ctx context.Context, userID uuid.UUID) ([]*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Event{}
	for p := range s.participants {
		if p.userID == userID {
			if e, ok := s.events[p.eventID]; ok {
				out = append(out, copyEvent(e))
			}
		}
	}
	sortEvents(out)
	return out, nil
}

func (s *Store) ListFriendsEvents(ctx context.Context, userID uuid.UUID) ([]*models.FriendsEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byEvent := map[int64]*models.FriendsEvent{}
	for friendID := range s.friends[userID] {
		for p := range s.participants {
			if p.userID != friendID {
				continue
			}
			e, ok := s.events[p.eventID]
			if !ok {
				continue
			}
			fe, ok := byEvent[e.ID]
			if !ok {
				fe = &models.FriendsEvent{Event: copyEvent(e), FriendsAttending: []*models.User{}}
				byEvent[e.ID] = fe
			}
			if u, ok := s.users[friendID]; ok {
				fe.FriendsAttending = append(fe.FriendsAttending, copyUser(u))
			}
		}
	}
	events := make([]*models.Event, 0, len(byEvent))
	for _, fe := range byEvent {
		sortUsersByName(fe.FriendsAttending)
		events = append(events, fe.Event)
	}
	sortEvents(events)
	out := make([]*models.FriendsEvent, len(events))
	for i, e := range events {
		out[i] = byEvent[e.ID]
	}
	return out, nil
}

// users

func (s *Store) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range s.users {
		if u.Email == email {
			return nil, models.ErrEmailTaken
		}
	}
	u := copyUser(user)
	u.ID = uuid.New()
	u.Email = email
	u.CreatedAt = s.now()
	// Distinct timestamps keep discovery ordering deterministic.
	s.seq++
	u.CreatedAt = u.CreatedAt.Add(time.Duration(s.seq) * time.Microsecond)
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = u
	return copyUser(u), nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, p *models.ProfileUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	for dst, src := range map[*string]*string{
		&u.FirstName:       p.FirstName,
		&u.LastName:        p.LastName,
		&u.Bio:             p.Bio,
		&u.City:            p.City,
		&u.ProfileImageURL: p.ProfileImageURL,
	} {
		if src != nil {
			*dst = *src
		}
	}
	u.UpdatedAt = s.now()
	return copyUser(u), nil
}

// discoverable lists users other than userID who are not its friends,
// newest first. Callers hold the lock.
func (s *Store) discoverable(userID uuid.UUID) []*models.User {
	out := []*models.User{}
	for id, u := range s.users {
		if id == userID {
			continue
		}
		if _, friend := s.friends[userID][id]; friend {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (s *Store) DiscoverUsers(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.discoverable(userID)
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := make([]*models.User, 0, end-offset)
	for _, u := range all[offset:end] {
		out = append(out, copyUser(u))
	}
	return out, total, nil
}

func (s *Store) SearchUsers(ctx context.Context, userID uuid.UUID, term string, limit int) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	term = strings.ToLower(strings.TrimSpace(term))
	out := []*models.User{}
	for _, u := range s.discoverable(userID) {
		full := strings.ToLower(u.FirstName + " " + u.LastName)
		if strings.Contains(full, term) || strings.Contains(strings.ToLower(u.Email), term) {
			out = append(out, copyUser(u))
		}
	}
	sortUsersByName(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// sessions

func (s *Store) CreateSession(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *session
	s.sessions[session.SID] = &c
	return nil
}

func (s *Store) GetSession(ctx context.Context, sid string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sid]
	if !ok || sess.Expired(time.Now()) {
		return nil, models.ErrSessionNotFound
	}
	c := *sess
	return &c, nil
}

func (s *Store) DeleteSession(ctx context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	return nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for sid, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, sid)
			n++
		}
	}
	return n, nil
}

// friends

func (s *Store) areFriends(a, b uuid.UUID) bool {
	_, ok := s.friends[a][b]
	return ok
}

func (s *Store) CreateFriendRequest(ctx context.Context, senderID, receiverID uuid.UUID) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if senderID == receiverID {
		return nil, models.ErrSelfFriendRequest
	}
	if _, ok := s.users[senderID]; !ok {
		return nil, models.ErrUserNotFound
	}
	if _, ok := s.users[receiverID]; !ok {
		return nil, models.ErrUserNotFound
	}
	if s.areFriends(senderID, receiverID) {
		return nil, models.ErrAlreadyFriends
	}
	for _, fr := range s.requests {
		if fr.Status != models.FriendRequestPending {
			continue
		}
		if (fr.SenderID == senderID && fr.ReceiverID == receiverID) ||
			(fr.SenderID == receiverID && fr.ReceiverID == senderID) {
			return nil, models.ErrFriendRequestExists
		}
	}
	now := s.now()
	fr := &models.FriendRequest{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.FriendRequestPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.requests[fr.ID] = fr
	return copyRequest(fr), nil
}

func (s *Store) GetFriendRequest(ctx context.Context, id uuid.UUID) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fr, ok := s.requests[id]
	if !ok {
		return nil, models.ErrFriendRequestNotFound
	}
	return copyRequest(fr), nil
}

func (s *Store) RespondToFriendRequest(ctx context.Context, id, receiverID uuid.UUID, status models.FriendRequestStatus) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fr, ok := s.requests[id]
	if !ok {
		return nil, models.ErrFriendRequestNotFound
	}
	if fr.ReceiverID != receiverID {
		return nil, models.ErrNotRequestRecipient
	}
	if fr.Status != models.FriendRequestPending {
		return nil, models.ErrRequestNotPending
	}
	now := s.now()
	fr.Status = status
	fr.UpdatedAt = now
	if status == models.FriendRequestAccepted {
		s.addFriend(fr.SenderID, fr.ReceiverID, now)
		s.addFriend(fr.ReceiverID, fr.SenderID, now)
	}
	return copyRequest(fr), nil
}

func (s *Store) addFriend(userID, friendID uuid.UUID, at time.Time) {
	if s.friends[userID] == nil {
		s.friends[userID] = map[uuid.UUID]time.Time{}
	}
	if _, ok := s.friends[userID][friendID]; !ok {
		s.friends[userID][friendID] = at
	}
}

func (s *Store) ListFriends(ctx context.Context, userID uuid.UUID) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.User{}
	for id := range s.friends[userID] {
		if u, ok := s.users[id]; ok {
			out = append(out, copyUser(u))
		}
	}
	sortUsersByName(out)
	return out, nil
}

func (s *Store) listRequests(match func(*models.FriendRequest) bool, attach func(*models.FriendRequest)) []*models.FriendRequest {
	out := []*models.FriendRequest{}
	for _, fr := range s.requests {
		if fr.Status == models.FriendRequestPending && match(fr) {
			c := copyRequest(fr)
			attach(c)
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (s *Store) ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listRequests(
		func(fr *models.FriendRequest) bool { return fr.ReceiverID == userID },
		func(fr *models.FriendRequest) {
			if u, ok := s.users[fr.SenderID]; ok {
				fr.Sender = copyUser(u)
			}
		},
	), nil
}

func (s *Store) ListSentRequests(ctx context.Context, userID uuid.UUID) ([]*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listRequests(
		func(fr *models.FriendRequest) bool { return fr.SenderID == userID },
		func(fr *models.FriendRequest) {
			if u, ok := s.users[fr.ReceiverID]; ok {
				fr.Receiver = copyUser(u)
			}
		},
	), nil
}

func (s *Store) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.areFriends(userID, friendID) && !s.areFriends(friendID, userID) {
		return models.ErrNotFriends
	}
	delete(s.friends[userID], friendID)
	delete(s.friends[friendID], userID)
	return nil
}

func (s *Store) AreFriends(ctx context.Context, userID, otherID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.areFriends(userID, otherID), nil
}

// favourites

func (s *Store) AddToFavourites(ctx context.Context, userID uuid.UUID, eventID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[eventID]; !ok {
		return models.ErrEventNotFound
	}
	if s.favourites[userID] == nil {
		s.favourites[userID] = map[int64]favourite{}
	}
	if _, ok := s.favourites[userID][eventID]; ok {
		return nil
	}
	s.seq++
	s.favourites[userID][eventID] = favourite{eventID: eventID, addedAt: s.now(), seq: s.seq}
	return nil
}

func (s *Store) RemoveFromFavourites(ctx context.Context, userID uuid.UUID, eventID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.favourites[userID], eventID)
	return nil
}

func (s *Store) GetFavouriteEventIDs(ctx context.Context, userID uuid.UUID) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]favourite, 0, len(s.favourites[userID]))
	for _, f := range s.favourites[userID] {
		list = append(list, f)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].seq > list[j].seq })
	ids := make([]int64, len(list))
	for i, f := range list {
		ids[i] = f.eventID
	}
	return ids, nil
}

func (s *Store) IsFavourite(ctx context.Context, userID uuid.UUID, eventID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.favourites[userID][eventID]
	return ok, nil
}
