package storage

import (
	"fmt"

	"github.com/annel0/arena-maps/internal/config"
	"github.com/annel0/arena-maps/internal/logging"
	"github.com/annel0/arena-maps/internal/mapdata"
	"github.com/annel0/arena-maps/internal/metrics"
)

// Open создаёт бэкенд по конфигурации и при необходимости оборачивает его кэшем Redis.
// Кэш возвращается отдельно, чтобы вызывающий мог подписать его на инвалидацию.
func Open(cfg *config.Config, m *metrics.MapMetrics) (mapdata.BlobStore, *RedisBlobCache, error) {
	backend, err := openBackend(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	logging.Info("📦 Хранилище карт: %s", cfg.Storage.Backend)

	if !cfg.Cache.Enabled {
		return backend, nil, nil
	}

	cache, err := NewRedisBlobCache(RedisCacheConfig{
		Addr:     cfg.Cache.RedisURL,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
		TTL:      cfg.Cache.TTL,
		Prefix:   cfg.Cache.Prefix,
		NodeID:   cfg.Server.NodeID,
	}, backend, m)
	if err != nil {
		// без кэша сервис работает, только медленнее
		logging.Warn("⚠️ Redis недоступен, кэш отключён: %v", err)
		return backend, nil, nil
	}
	return cache, cache, nil
}

func openBackend(cfg config.StorageConfig) (mapdata.BlobStore, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileBlobStore(cfg.Root)
	case "badger":
		return NewBadgerBlobStore(cfg.Root)
	case "maria", "mysql":
		return NewMariaBlobStore(cfg.DSN, cfg.Table)
	case "mongo":
		return NewMongoBlobStore(MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
	case "memory":
		return NewMemoryBlobStore(), nil
	default:
		return nil, fmt.Errorf("неизвестный бэкенд хранилища %q", cfg.Backend)
	}
}
