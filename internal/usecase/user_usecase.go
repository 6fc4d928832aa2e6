package usecase

import (
	"context"
	"time"

	"konekt/infrastructure/cache"
	"konekt/internal/entity"
	"konekt/internal/repository"

	"github.com/samber/lo"
)

const identityCacheTTL = 5 * time.Minute

type UserUsecase interface {
	Get(ctx context.Context, userId string) (entity.User, error)
	// GetPublic returns the public identity of a user, served from a short
	// TTL cache. Identities are near-immutable, unread counts never come
	// through here.
	GetPublic(ctx context.Context, userId string) (entity.UserPublic, error)
	// ResolvePublic bulk-resolves public identities keyed by user id.
	ResolvePublic(ctx context.Context, userIds []string) (map[string]entity.UserPublic, error)
	HandleUserOnline(ctx context.Context, userId string) error
	HandleUserOffline(ctx context.Context, userId string) error
}

type userUsecase struct {
	userRepo      repository.UserRepository
	identityCache *cache.MemCache[entity.UserPublic]
}

func NewUserUsecase(userRepo repository.UserRepository, identityCache *cache.MemCache[entity.UserPublic]) UserUsecase {
	return &userUsecase{
		userRepo:      userRepo,
		identityCache: identityCache,
	}
}

func (u *userUsecase) Get(ctx context.Context, userId string) (entity.User, error) {
	return u.userRepo.Get(ctx, userId)
}

func (u *userUsecase) GetPublic(ctx context.Context, userId string) (entity.UserPublic, error) {
	if cached, ok := u.identityCache.Get(userId); ok {
		return cached, nil
	}

	user, err := u.userRepo.Get(ctx, userId)
	if err != nil {
		return entity.UserPublic{}, err
	}

	public := user.Public()
	u.identityCache.Set(userId, public, identityCacheTTL)

	return public, nil
}

func (u *userUsecase) ResolvePublic(ctx context.Context, userIds []string) (map[string]entity.UserPublic, error) {
	resolved := make(map[string]entity.UserPublic, len(userIds))

	missing := lo.Filter(userIds, func(userId string, _ int) bool {
		cached, ok := u.identityCache.Get(userId)
		if ok {
			resolved[userId] = cached
		}
		return !ok
	})

	if len(missing) == 0 {
		return resolved, nil
	}

	users, err := u.userRepo.Index(ctx, entity.UserIndexFilter{Ids: missing})
	if err != nil {
		return nil, err
	}

	for _, user := range users {
		public := user.Public()
		resolved[user.Id] = public
		u.identityCache.Set(user.Id, public, identityCacheTTL)
	}

	return resolved, nil
}

func (u *userUsecase) HandleUserOnline(ctx context.Context, userId string) error {
	return u.userRepo.SetOnline(ctx, userId, true)
}

func (u *userUsecase) HandleUserOffline(ctx context.Context, userId string) error {
	return u.userRepo.SetOnline(ctx, userId, false)
}
