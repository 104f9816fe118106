package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"wellness-order-service/internal/domain/model"
	"wellness-order-service/internal/domain/ports/repository"
	"wellness-order-service/internal/infra/metrics"
	red "wellness-order-service/internal/infra/redis"
)

var _ repository.PackageRepository = (*packageRepoCacheDecorator)(nil)

// Package definitions change rarely and are read on every callback and claim,
// so they sit behind a short-TTL redis cache.
type packageRepoCacheDecorator struct {
	inner repository.PackageRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewPackageRepoCacheDecorator(inner repository.PackageRepository, cache red.RedisClient) repository.PackageRepository {
	return &packageRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   1 * time.Hour,
	}
}

func (d *packageRepoCacheDecorator) FindByKey(ctx context.Context, tx repository.Tx, packageKey string) (*model.Package, error) {
	key := fmt.Sprintf("package:%s", packageKey)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("package", "hit")
		var pkg model.Package
		if json.Unmarshal([]byte(val), &pkg) == nil {
			return &pkg, nil
		}
	} else if err != redis.Nil {
		// Redis being down must not break package resolution; fall through.
	}

	metrics.IncCacheRequest("package", "miss")
	pkg, err := d.inner.FindByKey(ctx, tx, packageKey)
	if err != nil {
		return nil, err
	}
	if pkg != nil {
		bytes, _ := json.Marshal(pkg)
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return pkg, nil
}

func (d *packageRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Package, error) {
	key := "packages:all"
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("package_list", "hit")
		var pkgs []*model.Package
		if json.Unmarshal([]byte(val), &pkgs) == nil {
			return pkgs, nil
		}
	}

	metrics.IncCacheRequest("package_list", "miss")
	pkgs, err := d.inner.ListAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(pkgs) > 0 {
		bytes, _ := json.Marshal(pkgs)
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return pkgs, nil
}
