package container

import (
	"log/slog"

	"github.com/joshua-takyi/connect/internal/helpers"
	"github.com/joshua-takyi/connect/internal/models"
	"github.com/joshua-takyi/connect/internal/services"
)

// Stores groups the repository implementations the services run on.
type Stores struct {
	Events       models.EventRepo
	Users        models.UserRepo
	Sessions     models.SessionRepo
	Friends      models.FriendRepo
	Favourites   models.FavouriteRepo
	SessionCache models.SessionCache
}

// PostgresStores backs every repository with repo. Favourites and the session
// cache can be swapped afterwards.
func PostgresStores(repo *models.PostgresRepo) Stores {
	return Stores{
		Events:       repo,
		Users:        repo,
		Sessions:     repo,
		Friends:      repo,
		Favourites:   repo,
		SessionCache: models.NoopSessionCache{},
	}
}

// Container holds all application dependencies
type Container struct {
	Logger         *slog.Logger
	AllowedOrigins []string

	UserService       *services.UserService
	EventService      *services.EventService
	FriendService     *services.FriendService
	FavouritesService *services.FavouriteService
}

// NewContainer creates a new dependency injection container. uploader may be
// nil, in which case avatar uploads answer 503.
func NewContainer(
	logger *slog.Logger,
	allowedOrigins []string,
	stores Stores,
	tokens *helpers.TokenManager,
	uploader services.AvatarUploader,
) *Container {
	return &Container{
		Logger:            logger,
		AllowedOrigins:    allowedOrigins,
		UserService:       services.NewUserService(stores.Users, stores.Sessions, stores.SessionCache, tokens, uploader, logger),
		EventService:      services.NewEventService(stores.Events),
		FriendService:     services.NewFriendService(stores.Friends, stores.Users),
		FavouritesService: services.NewFavouriteService(stores.Favourites, stores.Events),
	}
}
