package models

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"austin": "austin",
		"100%":   `100\%`,
		"a_b":    `a\_b`,
		`c:\dir`: `c:\\dir`,
		`%_\`:   `\%\_\\`,
		"":       "",
	}
	for in, want := range tests {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSortedFavouriteIDs(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	items := map[string]FavouriteItem{
		"1": {EventID: 1, AddedAt: base},
		"2": {EventID: 2, AddedAt: base.Add(time.Hour)},
		"3": {EventID: 3, AddedAt: base},
		"4": {EventID: 4, AddedAt: base.Add(-time.Hour)},
	}
	want := []int64{2, 3, 1, 4}
	if got := sortedFavouriteIDs(items); !reflect.DeepEqual(got, want) {
		t.Errorf("sortedFavouriteIDs = %v, want %v", got, want)
	}
	if got := sortedFavouriteIDs(nil); len(got) != 0 {
		t.Errorf("empty map gave %v", got)
	}
}

func TestEventHelpers(t *testing.T) {
	owner := uuid.New()
	e := &Event{Attendees: 2, MaxAttendees: 2, CreatedBy: &owner}
	if !e.IsFull() {
		t.Error("IsFull = false at capacity")
	}
	if !e.IsOrganizer(owner) || e.IsOrganizer(uuid.New()) {
		t.Error("IsOrganizer mismatch")
	}
	if (&Event{}).IsOrganizer(owner) {
		t.Error("event without creator has an organizer")
	}

	var u EventUpdate
	if !u.IsEmpty() {
		t.Error("zero EventUpdate not empty")
	}
	zero := 0
	u.MaxAttendees = &zero
	if u.IsEmpty() {
		t.Error("EventUpdate with maxAttendees reported empty")
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	s := &Session{Expire: now}
	if !s.Expired(now) {
		t.Error("session expiring now should be expired")
	}
	if s.Expired(now.Add(-time.Second)) {
		t.Error("session expired early")
	}
}

func TestErrorResponse(t *testing.T) {
	r := ErrorResponse("event is full")
	if r.Success || r.Message != "event is full" || r.Error != "event is full" {
		t.Errorf("ErrorResponse = %+v", r)
	}
	p := PaginatedResponse([]int{1}, 2, 10, 31)
	if !p.Success || p.Page != 2 || p.Size != 10 || p.Total != 31 {
		t.Errorf("PaginatedResponse = %+v", p)
	}
}
