package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/connect/internal/helpers"
	"github.com/joshua-takyi/connect/internal/models"
	"github.com/joshua-takyi/connect/internal/models/memstore"
)

type mapCache struct {
	entries   map[string]*models.Session
	gets      int
	hits      int
	deleteErr error
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]*models.Session{}}
}

func (c *mapCache) Get(_ context.Context, sid string) (*models.Session, error) {
	c.gets++
	s, ok := c.entries[sid]
	if !ok {
		return nil, nil
	}
	c.hits++
	return s, nil
}

func (c *mapCache) Set(_ context.Context, s *models.Session) error {
	c.entries[s.SID] = s
	return nil
}

func (c *mapCache) Delete(_ context.Context, sid string) error {
	if c.deleteErr != nil {
		return c.deleteErr
	}
	delete(c.entries, sid)
	return nil
}

type fakeUploader struct {
	got []byte
}

func (f *fakeUploader) UploadAvatar(_ context.Context, userID uuid.UUID, file io.Reader) (string, error) {
	b, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	f.got = b
	return "https://res.cloudinary.com/demo/avatars/" + userID.String() + ".png", nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newUserService(store *memstore.Store, cache models.SessionCache, uploader AvatarUploader) *UserService {
	tokens := helpers.NewTokenManager("a-secret-that-is-long-enough-for-tests", time.Hour)
	return NewUserService(store, store, cache, tokens, uploader, discardLogger())
}

func signup(t *testing.T, us *UserService, email string) *AuthResult {
	t.Helper()
	res, err := us.Signup(context.Background(), &models.SignupInput{
		Email:     email,
		Password:  "abc12345",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}, ClientInfo{UserAgent: "test"})
	if err != nil {
		t.Fatalf("Signup(%s): %v", email, err)
	}
	return res
}

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	us := newUserService(memstore.New(), nil, nil)

	res := signup(t, us, "  Ada@Example.com ")
	if res.Token == "" {
		t.Fatal("expected a token")
	}
	if res.User.Email != "ada@example.com" {
		t.Errorf("email = %q, want lower-cased", res.User.Email)
	}
	if res.User.PasswordHash == "abc12345" {
		t.Error("password stored in clear")
	}

	if _, err := us.Authenticate(ctx, res.Token); err != nil {
		t.Errorf("Authenticate after signup: %v", err)
	}

	login, err := us.Login(ctx, "ADA@example.com", "abc12345", ClientInfo{})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != res.User.ID {
		t.Error("login returned a different user")
	}

	for _, pw := range []string{"wrong1234", ""} {
		if _, err := us.Login(ctx, "ada@example.com", pw, ClientInfo{}); !errors.Is(err, models.ErrInvalidCredentials) {
			t.Errorf("Login(%q): err = %v, want ErrInvalidCredentials", pw, err)
		}
	}
	if _, err := us.Login(ctx, "nobody@example.com", "abc12345", ClientInfo{}); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestSignupRejects(t *testing.T) {
	us := newUserService(memstore.New(), nil, nil)
	signup(t, us, "taken@example.com")

	tests := []struct {
		name  string
		input models.SignupInput
		want  error
	}{
		{"bad email", models.SignupInput{Email: "nope", Password: "abc12345", FirstName: "A", LastName: "B"}, models.ErrInvalidInput},
		{"weak password", models.SignupInput{Email: "a@example.com", Password: "abcdefgh", FirstName: "A", LastName: "B"}, models.ErrInvalidInput},
		{"short password", models.SignupInput{Email: "a@example.com", Password: "ab1", FirstName: "A", LastName: "B"}, models.ErrInvalidInput},
		{"missing name", models.SignupInput{Email: "a@example.com", Password: "abc12345"}, models.ErrInvalidInput},
		{"duplicate", models.SignupInput{Email: "TAKEN@example.com", Password: "abc12345", FirstName: "A", LastName: "B"}, models.ErrEmailTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := us.Signup(context.Background(), &tt.input, ClientInfo{}); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	cache := newMapCache()
	us := newUserService(memstore.New(), cache, nil)
	res := signup(t, us, "ada@example.com")

	claims, err := us.Authenticate(ctx, res.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if cache.hits == 0 {
		t.Error("session should be served from the cache after signup")
	}

	if err := us.Logout(ctx, claims); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := us.Authenticate(ctx, res.Token); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("Authenticate after logout: err = %v, want ErrSessionNotFound", err)
	}
}

func TestLogoutKeepsSessionWhenCacheEvictionFails(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	cache := newMapCache()
	us := newUserService(store, cache, nil)
	res := signup(t, us, "ada@example.com")

	claims, err := us.Authenticate(ctx, res.Token)
	if err != nil {
		t.Fatal(err)
	}

	cache.deleteErr = errors.New("redis unavailable")
	if err := us.Logout(ctx, claims); err == nil {
		t.Fatal("Logout succeeded with a failing cache")
	}
	if _, err := store.GetSession(ctx, claims.SessionID); err != nil {
		t.Errorf("session row removed although the cached copy survived: %v", err)
	}

	cache.deleteErr = nil
	if err := us.Logout(ctx, claims); err != nil {
		t.Fatalf("Logout retry: %v", err)
	}
	if _, ok := cache.entries[claims.SessionID]; ok {
		t.Error("cached session survived logout")
	}
	if _, err := us.Authenticate(ctx, res.Token); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("Authenticate after logout: err = %v, want ErrSessionNotFound", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	ctx := context.Background()
	us := newUserService(memstore.New(), nil, nil)
	res := signup(t, us, "ada@example.com")

	claims, err := us.Authenticate(ctx, res.Token)
	if err != nil {
		t.Fatal(err)
	}
	refreshed, err := us.Refresh(ctx, claims, ClientInfo{})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.Token == res.Token {
		t.Error("refresh should issue a new token")
	}
	if _, err := us.Authenticate(ctx, res.Token); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("old token after refresh: err = %v, want ErrSessionNotFound", err)
	}
	if _, err := us.Authenticate(ctx, refreshed.Token); err != nil {
		t.Errorf("new token after refresh: %v", err)
	}
}

func TestAuthenticateRejectsBadToken(t *testing.T) {
	us := newUserService(memstore.New(), nil, nil)
	if _, err := us.Authenticate(context.Background(), "garbage"); !errors.Is(err, helpers.ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestPruneExpiredSessions(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	us := newUserService(store, nil, nil)
	signup(t, us, "ada@example.com")

	if n, err := us.PruneExpiredSessions(ctx); err != nil || n != 0 {
		t.Fatalf("prune with live sessions = %d, %v", n, err)
	}

	us.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if n, err := us.PruneExpiredSessions(ctx); err != nil || n != 1 {
		t.Errorf("prune after expiry = %d, %v; want 1", n, err)
	}
}

func TestSessionPrunerStopsWithContext(t *testing.T) {
	us := newUserService(memstore.New(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := us.StartSessionPruner(ctx, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pruner did not stop after cancel")
	}
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	us := newUserService(memstore.New(), nil, nil)
	res := signup(t, us, "ada@example.com")

	bio := "  Mathematician  "
	city := "London"
	u, err := us.UpdateProfile(ctx, res.User.ID, &models.ProfileUpdate{Bio: &bio, City: &city})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if u.Bio != "Mathematician" || u.City != "London" || u.FirstName != "Ada" {
		t.Errorf("profile = %+v", u)
	}

	badURL := "not a url"
	if _, err := us.UpdateProfile(ctx, res.User.ID, &models.ProfileUpdate{ProfileImageURL: &badURL}); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("bad url: err = %v, want ErrInvalidInput", err)
	}
	if _, err := us.UpdateProfile(ctx, uuid.New(), &models.ProfileUpdate{City: &city}); !errors.Is(err, models.ErrUserNotFound) {
		t.Errorf("unknown user: err = %v, want ErrUserNotFound", err)
	}
}

func TestUploadAvatar(t *testing.T) {
	ctx := context.Background()

	disabled := newUserService(memstore.New(), nil, nil)
	res := signup(t, disabled, "ada@example.com")
	if _, err := disabled.UploadAvatar(ctx, res.User.ID, strings.NewReader("img")); !errors.Is(err, models.ErrUploadsDisabled) {
		t.Errorf("err = %v, want ErrUploadsDisabled", err)
	}

	uploader := &fakeUploader{}
	us := newUserService(memstore.New(), nil, uploader)
	res = signup(t, us, "ada@example.com")
	u, err := us.UploadAvatar(ctx, res.User.ID, strings.NewReader("img"))
	if err != nil {
		t.Fatalf("UploadAvatar: %v", err)
	}
	if string(uploader.got) != "img" {
		t.Errorf("uploader received %q", uploader.got)
	}
	if !strings.HasSuffix(u.ProfileImageURL, res.User.ID.String()+".png") {
		t.Errorf("ProfileImageURL = %q", u.ProfileImageURL)
	}
}

func TestDiscoverAndSearchUsers(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	us := newUserService(store, nil, nil)
	fs := NewFriendService(store, store)

	me := newUser(t, store, "me@example.com")
	friend := newUser(t, store, "friend@example.com")
	for i := 0; i < 5; i++ {
		newUser(t, store, uuid.NewString()+"@example.com")
	}
	grace, err := store.CreateUser(ctx, &models.User{Email: "grace@example.com", FirstName: "Grace", LastName: "Hopper"})
	if err != nil {
		t.Fatal(err)
	}

	fr, err := fs.SendFriendRequest(ctx, me.ID, friend.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fs.AcceptFriendRequest(ctx, fr.ID, friend.ID); err != nil {
		t.Fatal(err)
	}

	huge, total, page, _, err := us.DiscoverUsers(ctx, me.ID, math.MaxInt, 20)
	if err != nil {
		t.Fatalf("huge page: %v", err)
	}
	if len(huge) != 0 || total != 6 || page*20 < 0 {
		t.Errorf("huge page = %d users, total %d, page %d", len(huge), total, page)
	}

	users, total, page, size, err := us.DiscoverUsers(ctx, me.ID, 0, 4)
	if err != nil {
		t.Fatal(err)
	}
	if total != 6 || len(users) != 4 || page != 0 || size != 4 {
		t.Errorf("page 0 = %d users, total %d, page %d, size %d", len(users), total, page, size)
	}
	users, _, _, _, _ = us.DiscoverUsers(ctx, me.ID, 1, 4)
	if len(users) != 2 {
		t.Errorf("page 1 = %d users, want 2", len(users))
	}
	for _, u := range users {
		if u.ID == me.ID || u.ID == friend.ID {
			t.Errorf("discover returned self or friend %s", u.Email)
		}
	}

	_, _, page, size, _ = us.DiscoverUsers(ctx, me.ID, -3, 1000)
	if page != 0 || size != MaxDiscoverSize {
		t.Errorf("normalized page/size = %d/%d", page, size)
	}
	_, _, _, size, _ = us.DiscoverUsers(ctx, me.ID, 0, 0)
	if size != DefaultDiscoverSize {
		t.Errorf("default size = %d", size)
	}

	found, err := us.SearchUsers(ctx, me.ID, "grace hop")
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].ID != grace.ID {
		t.Errorf("search full name = %+v", found)
	}
	found, _ = us.SearchUsers(ctx, me.ID, "friend@")
	if len(found) != 0 {
		t.Errorf("search should exclude friends, got %d", len(found))
	}
	if _, err := us.SearchUsers(ctx, me.ID, "   "); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("blank query: err = %v, want ErrInvalidInput", err)
	}
}
