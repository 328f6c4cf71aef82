package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/connect/internal/helpers"
	"github.com/joshua-takyi/connect/internal/models"
)

const (
	DefaultDiscoverSize = 20
	MaxDiscoverSize     = 100
	searchUsersLimit    = 50
)

var errWeakPassword = errors.New("password must be at least 8 characters and contain a letter and a digit")

// AvatarUploader stores a profile image and returns its public URL.
type AvatarUploader interface {
	UploadAvatar(ctx context.Context, userID uuid.UUID, file io.Reader) (string, error)
}

// ClientInfo is recorded on the session for auditing.
type ClientInfo struct {
	UserAgent string
	IP        string
}

type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type UserService struct {
	userRepo    models.UserRepo
	sessionRepo models.SessionRepo
	cache       models.SessionCache
	tokens      *helpers.TokenManager
	uploader    AvatarUploader
	logger      *slog.Logger
	now         func() time.Time
}

// NewUserService wires the identity service. cache and uploader may be nil.
func NewUserService(
	userRepo models.UserRepo,
	sessionRepo models.SessionRepo,
	cache models.SessionCache,
	tokens *helpers.TokenManager,
	uploader AvatarUploader,
	logger *slog.Logger,
) *UserService {
	if cache == nil {
		cache = models.NoopSessionCache{}
	}
	return &UserService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		cache:       cache,
		tokens:      tokens,
		uploader:    uploader,
		logger:      logger,
		now:         time.Now,
	}
}

func (us *UserService) Signup(ctx context.Context, input *models.SignupInput, client ClientInfo) (*AuthResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.City = strings.TrimSpace(input.City)
	input.Bio = strings.TrimSpace(input.Bio)

	if err := models.Validate.Struct(input); err != nil {
		return nil, invalid(err)
	}
	if !helpers.IsPasswordStrong(input.Password) {
		return nil, invalid(errWeakPassword)
	}

	hash, err := helpers.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := us.userRepo.CreateUser(ctx, &models.User{
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		City:         input.City,
		Bio:          input.Bio,
	})
	if err != nil {
		return nil, err
	}

	return us.startSession(ctx, user, client)
}

func (us *UserService) Login(ctx context.Context, email, password string, client ClientInfo) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, models.ErrInvalidCredentials
	}

	user, err := us.userRepo.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !helpers.CheckPassword(user.PasswordHash, password) {
		return nil, models.ErrInvalidCredentials
	}

	return us.startSession(ctx, user, client)
}

func (us *UserService) startSession(ctx context.Context, user *models.User, client ClientInfo) (*AuthResult, error) {
	sid := uuid.NewString()
	token, expires, err := us.tokens.Issue(user.ID, user.Email, sid)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		SID: sid,
		Data: models.SessionData{
			UserID:    user.ID,
			Email:     user.Email,
			UserAgent: client.UserAgent,
			IP:        client.IP,
			CreatedAt: us.now().UTC(),
		},
		Expire: expires,
	}
	if err := us.sessionRepo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	if err := us.cache.Set(ctx, session); err != nil {
		us.logger.Warn("failed to cache session", "user_id", user.ID, "error", err)
	}

	return &AuthResult{Token: token, ExpiresAt: expires, User: user}, nil
}

// Authenticate verifies the token and that its session is still live.
func (us *UserService) Authenticate(ctx context.Context, token string) (*helpers.Claims, error) {
	claims, err := us.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	session, err := us.cache.Get(ctx, claims.SessionID)
	if err != nil {
		us.logger.Warn("session cache lookup failed", "error", err)
	}
	if session == nil {
		session, err = us.sessionRepo.GetSession(ctx, claims.SessionID)
		if err != nil {
			return nil, err
		}
		if err := us.cache.Set(ctx, session); err != nil {
			us.logger.Warn("failed to cache session", "error", err)
		}
	}

	if session.Expired(us.now()) || !claims.IsOwner(session.Data.UserID) {
		return nil, models.ErrSessionNotFound
	}
	return claims, nil
}

// endSession evicts the cached copy before deleting the row, so a failed
// eviction leaves the session intact instead of cached but revoked.
func (us *UserService) endSession(ctx context.Context, sid string) error {
	if err := us.cache.Delete(ctx, sid); err != nil {
		return fmt.Errorf("evict cached session: %w", err)
	}
	if err := us.sessionRepo.DeleteSession(ctx, sid); err != nil {
		return err
	}
	// A concurrent Authenticate may have cached the row again in between.
	if err := us.cache.Delete(ctx, sid); err != nil {
		us.logger.Warn("failed to evict cached session", "error", err)
	}
	return nil
}

func (us *UserService) Logout(ctx context.Context, claims *helpers.Claims) error {
	return us.endSession(ctx, claims.SessionID)
}

// Refresh replaces the caller's session with a new one.
func (us *UserService) Refresh(ctx context.Context, claims *helpers.Claims, client ClientInfo) (*AuthResult, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, models.ErrSessionNotFound
	}
	user, err := us.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := us.endSession(ctx, claims.SessionID); err != nil {
		return nil, err
	}
	return us.startSession(ctx, user, client)
}

func (us *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return us.userRepo.GetUserByID(ctx, id)
}

func (us *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, update *models.ProfileUpdate) (*models.User, error) {
	for _, s := range []*string{update.FirstName, update.LastName, update.Bio, update.City, update.ProfileImageURL} {
		helpers.TrimPtr(s)
	}
	if err := models.Validate.Struct(update); err != nil {
		return nil, invalid(err)
	}
	if update.IsEmpty() {
		return us.userRepo.GetUserByID(ctx, id)
	}
	return us.userRepo.UpdateUser(ctx, id, update)
}

func (us *UserService) UploadAvatar(ctx context.Context, id uuid.UUID, file io.Reader) (*models.User, error) {
	if us.uploader == nil {
		return nil, models.ErrUploadsDisabled
	}
	if _, err := us.userRepo.GetUserByID(ctx, id); err != nil {
		return nil, err
	}

	url, err := us.uploader.UploadAvatar(ctx, id, file)
	if err != nil {
		return nil, err
	}
	return us.userRepo.UpdateUser(ctx, id, &models.ProfileUpdate{ProfileImageURL: &url})
}

// DiscoverUsers normalizes page and size and returns one page of people the
// caller is not yet friends with, plus the total count.
func (us *UserService) DiscoverUsers(ctx context.Context, id uuid.UUID, page, size int) ([]*models.User, int, int, int, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultDiscoverSize
	}
	if size > MaxDiscoverSize {
		size = MaxDiscoverSize
	}
	if page > math.MaxInt32/size {
		page = math.MaxInt32 / size
	}
	users, total, err := us.userRepo.DiscoverUsers(ctx, id, page*size, size)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	return users, total, page, size, nil
}

func (us *UserService) SearchUsers(ctx context.Context, id uuid.UUID, query string) ([]*models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalid(errors.New("search query is required"))
	}
	return us.userRepo.SearchUsers(ctx, id, query, searchUsersLimit)
}

func (us *UserService) PruneExpiredSessions(ctx context.Context) (int64, error) {
	n, err := us.sessionRepo.DeleteExpiredSessions(ctx, us.now())
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	return n, nil
}

// StartSessionPruner deletes expired sessions every interval until ctx is done.
// The returned channel is closed when the loop exits.
func (us *UserService) StartSessionPruner(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if interval <= 0 {
			return
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := us.PruneExpiredSessions(ctx)
				if err != nil {
					if ctx.Err() == nil {
						us.logger.Error("session prune failed", "error", err)
					}
					continue
				}
				if n > 0 {
					us.logger.Info("pruned expired sessions", "count", n)
				}
			}
		}
	}()
	return done
}
