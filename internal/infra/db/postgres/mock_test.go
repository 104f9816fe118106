//go:build !integration

package postgres

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"wellness-order-service/internal/domain/model"
	"wellness-order-service/internal/domain/ports/repository"
	red "wellness-order-service/internal/infra/redis"
)

// mockRedisClient lets cache decorator tests script redis behavior per call.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
}

var _ red.RedisClient = (*mockRedisClient)(nil)

func (m *mockRedisClient) Ping(ctx context.Context) error { return nil }
func (m *mockRedisClient) Close() error                   { return nil }

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return "", redis.Nil
}

func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, expiration)
	}
	return nil
}

func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc != nil {
		return m.DelFunc(ctx, keys...)
	}
	return nil
}

func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	if m.IncrFunc != nil {
		return m.IncrFunc(ctx, key)
	}
	return 1, nil
}

func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	if m.ExpireFunc != nil {
		return m.ExpireFunc(ctx, key, expiration)
	}
	return nil
}

// mockInnerPackageRepo stands in for the real postgres-backed repository
// behind the cache decorator.
type mockInnerPackageRepo struct {
	FindByKeyFunc func(ctx context.Context, tx repository.Tx, packageKey string) (*model.Package, error)
	ListAllFunc   func(ctx context.Context, tx repository.Tx) ([]*model.Package, error)
}

var _ repository.PackageRepository = (*mockInnerPackageRepo)(nil)

func (m *mockInnerPackageRepo) FindByKey(ctx context.Context, tx repository.Tx, packageKey string) (*model.Package, error) {
	if m.FindByKeyFunc != nil {
		return m.FindByKeyFunc(ctx, tx, packageKey)
	}
	return nil, nil
}

func (m *mockInnerPackageRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Package, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx, tx)
	}
	return nil, nil
}
