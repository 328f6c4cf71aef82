package models

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/connect/internal/connect"
)

// newTestRepo runs against a disposable database named by
// CONNECT_TEST_DATABASE_URL. Every table is truncated first.
func newTestRepo(t *testing.T) *PostgresRepo {
	t.Helper()
	dsn := os.Getenv("CONNECT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("CONNECT_TEST_DATABASE_URL not set")
	}
	if err := connect.RunMigrations(dsn, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	ctx := context.Background()
	pool, err := connect.NewPostgresPool(ctx, dsn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE favorites, friends, friend_requests, sessions,
		event_participants, events, users RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return PostgresNewRepo(pool)
}

func createTestUser(t *testing.T, r *PostgresRepo, email string) *User {
	t.Helper()
	u, err := r.CreateUser(context.Background(), &User{
		Email: email, PasswordHash: "x", FirstName: "Test", LastName: email,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return u
}

func createTestEvent(t *testing.T, r *PostgresRepo, owner *User, capacity int, city string) *Event {
	t.Helper()
	e, err := r.CreateEvent(context.Background(), &Event{
		Title: "Event", Category: "Social", Date: "Saturday", Location: "Main St",
		City: city, MaxAttendees: capacity, CreatedBy: &owner.ID,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	return e
}

func TestPostgresJoinCapacity(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	owner := createTestUser(t, r, "owner@example.com")
	guest := createTestUser(t, r, "guest@example.com")
	e := createTestEvent(t, r, owner, 1, "Austin")

	joined, err := r.JoinEvent(ctx, e.ID, owner.ID)
	if err != nil {
		t.Fatalf("JoinEvent: %v", err)
	}
	if joined.Attendees != 1 {
		t.Errorf("attendees = %d, want 1", joined.Attendees)
	}
	if _, err := r.JoinEvent(ctx, e.ID, owner.ID); !errors.Is(err, ErrAlreadyJoined) {
		t.Errorf("repeat join: %v", err)
	}
	if _, err := r.JoinEvent(ctx, e.ID, guest.ID); !errors.Is(err, ErrEventFull) {
		t.Errorf("full: %v", err)
	}
	if _, err := r.JoinEvent(ctx, 9999, guest.ID); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("missing event: %v", err)
	}

	if _, err := r.UpdateEvent(ctx, e.ID, &EventUpdate{MaxAttendees: new(int)}); err == nil {
		t.Error("maxAttendees 0 accepted")
	}
	if _, err := r.UpdateEvent(ctx, e.ID, &EventUpdate{}); err != nil {
		t.Errorf("no-op update: %v", err)
	}

	left, err := r.LeaveEvent(ctx, e.ID, owner.ID)
	if err != nil {
		t.Fatalf("LeaveEvent: %v", err)
	}
	if left.Attendees != 0 {
		t.Errorf("attendees after leave = %d", left.Attendees)
	}
	if _, err := r.LeaveEvent(ctx, e.ID, owner.ID); !errors.Is(err, ErrNotJoined) {
		t.Errorf("leave twice: %v", err)
	}
}

func TestPostgresCapacityTooLow(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	owner := createTestUser(t, r, "owner@example.com")
	guest := createTestUser(t, r, "guest@example.com")
	e := createTestEvent(t, r, owner, 5, "")
	for _, u := range []*User{owner, guest} {
		if _, err := r.JoinEvent(ctx, e.ID, u.ID); err != nil {
			t.Fatal(err)
		}
	}
	one := 1
	if _, err := r.UpdateEvent(ctx, e.ID, &EventUpdate{MaxAttendees: &one}); !errors.Is(err, ErrCapacityTooLow) {
		t.Errorf("shrink below attendees: %v", err)
	}
	two := 2
	title := "Renamed"
	got, err := r.UpdateEvent(ctx, e.ID, &EventUpdate{MaxAttendees: &two, Title: &title})
	if err != nil {
		t.Fatal(err)
	}
	if got.MaxAttendees != 2 || got.Title != "Renamed" || got.Category != "Social" {
		t.Errorf("partial update = %+v", got)
	}
}

func TestPostgresConcurrentJoins(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	owner := createTestUser(t, r, "owner@example.com")
	const seats, callers = 3, 12
	e := createTestEvent(t, r, owner, seats, "")

	users := make([]*User, callers)
	for i := range users {
		users[i] = createTestUser(t, r, uuid.NewString()+"@example.com")
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		full int
	)
	for _, u := range users {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := r.JoinEvent(ctx, e.ID, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrEventFull):
				full++
			default:
				t.Errorf("unexpected join error: %v", err)
			}
		}(u.ID)
	}
	wg.Wait()

	if ok != seats || full != callers-seats {
		t.Errorf("ok=%d full=%d, want %d/%d", ok, full, seats, callers-seats)
	}
	got, err := r.GetEventByID(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Attendees != seats {
		t.Errorf("attendees = %d, want %d", got.Attendees, seats)
	}
}

func TestPostgresSearchEscapesPatterns(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	owner := createTestUser(t, r, "owner@example.com")
	createTestEvent(t, r, owner, 5, "Austin")
	createTestEvent(t, r, owner, 5, "100% City")

	found, err := r.SearchEvents(ctx, EventFilter{Location: "%"})
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].City != "100% City" {
		t.Errorf("search %% = %+v", found)
	}
	found, _ = r.SearchEvents(ctx, EventFilter{Location: "AUS"})
	if len(found) != 1 || found[0].City != "Austin" {
		t.Errorf("search AUS = %+v", found)
	}
	found, _ = r.SearchEvents(ctx, EventFilter{Category: "Music"})
	if len(found) != 0 {
		t.Errorf("category filter = %+v", found)
	}
}

func TestPostgresFriendRequests(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	alice := createTestUser(t, r, "alice@example.com")
	bob := createTestUser(t, r, "bob@example.com")

	fr, err := r.CreateFriendRequest(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.CreateFriendRequest(ctx, bob.ID, alice.ID); !errors.Is(err, ErrFriendRequestExists) {
		t.Errorf("reverse pending request: %v", err)
	}
	if _, err := r.CreateFriendRequest(ctx, alice.ID, uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown receiver: %v", err)
	}

	if _, err := r.RespondToFriendRequest(ctx, fr.ID, alice.ID, FriendRequestAccepted); !errors.Is(err, ErrNotRequestRecipient) {
		t.Errorf("sender responding: %v", err)
	}
	accepted, err := r.RespondToFriendRequest(ctx, fr.ID, bob.ID, FriendRequestAccepted)
	if err != nil {
		t.Fatal(err)
	}
	if accepted.Status != FriendRequestAccepted {
		t.Errorf("status = %q", accepted.Status)
	}
	if _, err := r.RespondToFriendRequest(ctx, fr.ID, bob.ID, FriendRequestRejected); !errors.Is(err, ErrRequestNotPending) {
		t.Errorf("second response: %v", err)
	}

	if friends, _ := r.AreFriends(ctx, bob.ID, alice.ID); !friends {
		t.Error("AreFriends = false after accept")
	}
	if err := r.RemoveFriend(ctx, alice.ID, bob.ID); err != nil {
		t.Fatal(err)
	}
	if err := r.RemoveFriend(ctx, alice.ID, bob.ID); !errors.Is(err, ErrNotFriends) {
		t.Errorf("remove twice: %v", err)
	}
}

func TestPostgresFavouritesAndSessions(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := createTestUser(t, r, "fav@example.com")
	first := createTestEvent(t, r, u, 5, "")
	second := createTestEvent(t, r, u, 5, "")

	for _, e := range []*Event{first, second, first} {
		if err := r.AddToFavourites(ctx, u.ID, e.ID); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.AddToFavourites(ctx, u.ID, 9999); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("unknown event: %v", err)
	}
	ids, err := r.GetFavouriteEventIDs(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Errorf("favourite ids = %v", ids)
	}

	now := time.Now()
	if err := r.CreateSession(ctx, &Session{SID: "gone", Expire: now.Add(-time.Minute), Data: SessionData{UserID: u.ID}}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.GetSession(ctx, "gone"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expired session: %v", err)
	}
	if n, err := r.DeleteExpiredSessions(ctx, now); err != nil || n != 1 {
		t.Errorf("DeleteExpiredSessions = %d, %v", n, err)
	}
}
