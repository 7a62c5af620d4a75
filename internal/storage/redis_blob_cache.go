package storage

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/klauspost/compress/zstd"

	"github.com/annel0/arena-maps/internal/eventbus"
	"github.com/annel0/arena-maps/internal/logging"
	"github.com/annel0/arena-maps/internal/mapdata"
	"github.com/annel0/arena-maps/internal/metrics"
)

// RedisCacheConfig настройки кэша карт в Redis
type RedisCacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
	NodeID   string // события этого узла не инвалидируют кэш повторно
}

// RedisBlobCache кэширует сериализованные карты в Redis поверх любого BlobStore.
// Чтение: Redis, при промахе бэкенд с заполнением кэша (Read-Through).
// Запись: сначала бэкенд, затем Redis (Write-Through). Ошибки Redis не ломают
// операцию, данные всегда берутся из бэкенда.
// Значения в Redis хранятся сжатыми zstd.
type RedisBlobCache struct {
	client  *redis.Client
	backend mapdata.BlobStore
	ttl     time.Duration
	prefix  string
	nodeID  string
	metrics *metrics.MapMetrics

	compressor   *zstd.Encoder
	decompressor *zstd.Decoder

	sub eventbus.Subscription

	hits   int64
	misses int64
}

// NewRedisBlobCache подключается к Redis и оборачивает backend
func NewRedisBlobCache(cfg RedisCacheConfig, backend mapdata.BlobStore, m *metrics.MapMetrics) (*RedisBlobCache, error) {
	if cfg.TTL == 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "mapblob"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	// Проверяем соединение
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}

	compressor, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("не удалось создать zstd encoder: %w", err)
	}
	decompressor, err := zstd.NewReader(nil)
	if err != nil {
		compressor.Close()
		rdb.Close()
		return nil, fmt.Errorf("не удалось создать zstd decoder: %w", err)
	}

	logging.Info("🧊 Redis кэш карт: %s (TTL %v)", cfg.Addr, cfg.TTL)
	return &RedisBlobCache{
		client:       rdb,
		backend:      backend,
		ttl:          cfg.TTL,
		prefix:       cfg.Prefix,
		nodeID:       cfg.NodeID,
		metrics:      m,
		compressor:   compressor,
		decompressor: decompressor,
	}, nil
}

func (c *RedisBlobCache) key(id mapdata.Identifier) string {
	return c.prefix + ":" + blobKey(id)
}

// Read возвращает карту из кэша или бэкенда
func (c *RedisBlobCache) Read(ctx context.Context, id mapdata.Identifier) ([]byte, error) {
	val, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err == nil {
		data, derr := c.decompressor.DecodeAll(val, nil)
		if derr == nil {
			atomic.AddInt64(&c.hits, 1)
			c.metrics.CacheHit(true)
			return data, nil
		}
		logging.Warn("Повреждённая запись кэша %s: %v", id, derr)
		c.drop(ctx, id)
	} else if !errors.Is(err, redis.Nil) {
		logging.Warn("Redis Get %s: %v", id, err)
	}
	atomic.AddInt64(&c.misses, 1)
	c.metrics.CacheHit(false)

	data, err := c.backend.Read(ctx, id)
	if err != nil {
		return nil, err
	}

	c.store(ctx, id, data)
	return data, nil
}

// store кладёт сжатую копию в Redis; при ошибке запись удаляется
func (c *RedisBlobCache) store(ctx context.Context, id mapdata.Identifier, data []byte) {
	packed := c.compressor.EncodeAll(data, make([]byte, 0, len(data)/4))
	if err := c.client.Set(ctx, c.key(id), packed, c.ttl).Err(); err != nil {
		logging.Warn("Redis Set %s: %v", id, err)
		c.drop(ctx, id)
	}
}

// Write пишет в бэкенд, затем обновляет кэш
func (c *RedisBlobCache) Write(ctx context.Context, id mapdata.Identifier, data []byte) error {
	if err := c.backend.Write(ctx, id, data); err != nil {
		// прежнее содержимое бэкенда не изменилось, но запись в кэше могла устареть
		c.drop(ctx, id)
		return err
	}
	c.store(ctx, id, data)
	return nil
}

// Delete удаляет карту из бэкенда и кэша
func (c *RedisBlobCache) Delete(ctx context.Context, id mapdata.Identifier) error {
	c.drop(ctx, id)
	return c.backend.Delete(ctx, id)
}

// List делегирует перечисление бэкенду
func (c *RedisBlobCache) List(ctx context.Context) ([]mapdata.Identifier, error) {
	l, ok := c.backend.(Lister)
	if !ok {
		return nil, fmt.Errorf("бэкенд %T не поддерживает перечисление", c.backend)
	}
	return l.List(ctx)
}

// Invalidate убирает карту из кэша
func (c *RedisBlobCache) Invalidate(ctx context.Context, id mapdata.Identifier) {
	c.drop(ctx, id)
}

func (c *RedisBlobCache) drop(ctx context.Context, id mapdata.Identifier) {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		logging.Warn("Redis Del %s: %v", id, err)
	}
}

// WatchInvalidations подписывается на MapSaved и MapDeleted других узлов
// и сбрасывает соответствующие записи кэша.
func (c *RedisBlobCache) WatchInvalidations(ctx context.Context, bus eventbus.EventBus) error {
	sub, err := bus.Subscribe(ctx, eventbus.Filter{
		Types: []string{eventbus.MapSaved, eventbus.MapDeleted},
	}, func(ctx context.Context, ev *eventbus.Envelope) {
		if ev.Source == c.nodeID && c.nodeID != "" {
			return
		}
		me, err := eventbus.DecodeMapEvent(ev)
		if err != nil {
			logging.Warn("Инвалидация кэша: %v", err)
			return
		}
		id, err := mapdata.NewIdentifier(me.Namespace, me.Path)
		if err != nil {
			logging.Warn("Инвалидация кэша: %v", err)
			return
		}
		c.drop(ctx, id)
		logging.Debug("Кэш карты %s сброшен по событию %s от %s", id, ev.EventType, ev.Source)
	})
	if err != nil {
		return fmt.Errorf("подписка на инвалидацию: %w", err)
	}
	c.sub = sub
	return nil
}

// HitRatio доля попаданий в кэш
func (c *RedisBlobCache) HitRatio() float64 {
	hits := atomic.LoadInt64(&c.hits)
	total := hits + atomic.LoadInt64(&c.misses)
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Close закрывает соединение с Redis и бэкенд
func (c *RedisBlobCache) Close() error {
	if c.sub != nil {
		c.sub.Unsubscribe()
	}
	if err := c.client.Close(); err != nil {
		logging.Error("Ошибка закрытия Redis: %v", err)
	}
	c.compressor.Close()
	c.decompressor.Close()
	return c.backend.Close()
}
