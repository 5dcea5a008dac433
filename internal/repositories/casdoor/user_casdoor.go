package casdoor

import (
	"context"
	"fmt"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/ksys/admission-service/internal/cache"
	"github.com/ksys/admission-service/internal/config"
	"github.com/ksys/admission-service/internal/models"
	"github.com/ksys/admission-service/internal/repositories"
)

// NewClient builds a Casdoor SDK client from config
func NewClient(cfg config.CasdoorConfig) *casdoorsdk.Client {
	return casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
}

// userClient is the part of the Casdoor SDK used for identity lookups
type userClient interface {
	GetUserByUserId(userId string) (*casdoorsdk.User, error)
}

type UserCasdoor struct {
	client userClient
	cache  *cache.CacheManager
}

func NewUserCasdoor(client userClient, cacheManager *cache.CacheManager) repositories.UserRepository {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil, 0)
	}
	return &UserCasdoor{
		client: client,
		cache:  cacheManager,
	}
}

// convertCasdoorUserToModel converts a Casdoor user to the identity model
func convertCasdoorUserToModel(casdoorUser *casdoorsdk.User) *models.User {
	var createdAt time.Time
	if casdoorUser.CreatedTime != "" {
		createdAt, _ = time.Parse(time.RFC3339, casdoorUser.CreatedTime)
	}

	return &models.User{
		ID:          casdoorUser.Id,
		Name:        casdoorUser.Name,
		DisplayName: casdoorUser.DisplayName,
		Email:       casdoorUser.Email,
		AvatarURL:   casdoorUser.Avatar,
		CreatedAt:   createdAt,
	}
}

// GetByID retrieves a user by ID
func (u *UserCasdoor) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := u.cache.User.GetOrLoad(ctx, "id:"+id, &user, func() (interface{}, error) {
		casdoorUser, err := u.client.GetUserByUserId(id)
		if err != nil {
			return nil, fmt.Errorf("failed to get user from Casdoor: %w", err)
		}
		if casdoorUser == nil || casdoorUser.Id == "" {
			return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
		}
		return convertCasdoorUserToModel(casdoorUser), nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByID checks whether the identity provider knows the user
func (u *UserCasdoor) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, err := u.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
