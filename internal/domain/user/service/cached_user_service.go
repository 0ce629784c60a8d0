package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coursehub/internal/domain/user/model"
	"coursehub/internal/pkg/uploader"
	"coursehub/pkg/cache"
	"coursehub/pkg/metrics"

	"go.uber.org/zap"
)

// 缓存键常量
const (
	UserCacheKeyPrefix = "user:"
	UserCacheTTL       = 2 * time.Minute
)

// UserCache drops cached copies of a user after writes made outside UserService.
type UserCache interface {
	Invalidate(ctx context.Context, userID string)
}

// CachedUserService 带缓存的用户服务，缓存鉴权中间件每次请求都会读取的用户
type CachedUserService struct {
	UserService
	cache cache.CacheService
	log   *zap.Logger
}

// NewCachedUserService 创建带缓存的用户服务
func NewCachedUserService(inner UserService, c cache.CacheService, log *zap.Logger) *CachedUserService {
	return &CachedUserService{UserService: inner, cache: c, log: log}
}

// getUserCacheKey 获取用户缓存键
func (s *CachedUserService) getUserCacheKey(id string) string {
	return fmt.Sprintf("%s%s", UserCacheKeyPrefix, id)
}

// Invalidate 清除用户缓存
func (s *CachedUserService) Invalidate(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, s.getUserCacheKey(userID)); err != nil {
		s.log.Warn("failed to invalidate user cache", zap.String("user_id", userID), zap.Error(err))
	}
}

// GetByID serves the cached user. Cached copies never carry the password hash.
func (s *CachedUserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	key := s.getUserCacheKey(id)

	var cached model.User
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		metrics.GetGlobalCollector().RecordCacheOperation("user", true)
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("user cache read failed", zap.Error(err))
	}
	metrics.GetGlobalCollector().RecordCacheOperation("user", false)

	user, err := s.UserService.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, user, UserCacheTTL); err != nil {
		s.log.Warn("user cache write failed", zap.Error(err))
	}
	return user, nil
}

func (s *CachedUserService) Delete(ctx context.Context, id string) error {
	defer s.Invalidate(ctx, id)
	return s.UserService.Delete(ctx, id)
}

func (s *CachedUserService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.User, error) {
	defer s.Invalidate(ctx, userID)
	return s.UserService.UpdateProfile(ctx, userID, in)
}

func (s *CachedUserService) UploadProfilePicture(ctx context.Context, userID string, file uploader.File) (string, *model.User, error) {
	defer s.Invalidate(ctx, userID)
	return s.UserService.UploadProfilePicture(ctx, userID, file)
}
