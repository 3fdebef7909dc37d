package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"app_reviews/internal/adapters/dataset"
	"app_reviews/internal/adapters/memcache"
	redisad "app_reviews/internal/adapters/redis"
	"app_reviews/internal/adapters/remote"
	"app_reviews/internal/domain"
	mysqlrepo "app_reviews/internal/storage/mysql"
	sqliterepo "app_reviews/internal/storage/sqlite"
)

// Source returns the configured dataset: DATASET_URL wins over DATASET_PATH.
func (c Config) Source() domain.RowSource {
	if c.DatasetURL != "" {
		var opts []remote.Option
		if c.DatasetToken != "" {
			opts = append(opts, remote.WithToken(c.DatasetToken))
		}
		return dataset.URLSource{URL: c.DatasetURL, Fetcher: remote.New(c.FetchRPS, opts...)}
	}
	return dataset.FileSource{Path: c.DatasetPath}
}

// OpenStore opens the configured review store. With STORE_DRIVER=none both
// the repository and the error are nil.
func (c Config) OpenStore(ctx context.Context) (domain.ReviewRepository, func(), error) {
	switch c.StoreDriver {
	case "mysql":
		db, err := mysqlrepo.Open(ctx, c.MySQLDSN, c.DBConnectTimeout)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("mysql store ready")
		return mysqlrepo.New(db), func() { _ = db.Close() }, nil
	case "sqlite":
		db, err := sqliterepo.Open(ctx, c.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", c.SQLitePath).Msg("sqlite store ready")
		return sqliterepo.New(db), func() { _ = db.Close() }, nil
	case "none":
		return nil, func() {}, nil
	}
	return nil, nil, fmt.Errorf("%w (got %q)", ErrUnknownStore, c.StoreDriver)
}

// OpenCache opens the configured report cache. A redis that does not answer
// is logged and used anyway; cache errors never fail a request.
func (c Config) OpenCache(ctx context.Context) (domain.Cache, func(), error) {
	switch c.CacheDriver {
	case "redis":
		rc := redisad.New(c.RedisAddr, c.RedisPass, c.RedisDB)
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := rc.Ping(pctx); err != nil {
			log.Warn().Err(err).Str("addr", c.RedisAddr).Msg("redis not reachable")
		}
		return rc, func() { _ = rc.Close() }, nil
	case "memory":
		return memcache.New(c.CacheSize, c.CacheTTL), func() {}, nil
	case "none":
		return nil, func() {}, nil
	}
	return nil, nil, fmt.Errorf("%w (got %q)", ErrUnknownCache, c.CacheDriver)
}
