package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/arena-maps/internal/config"
	"github.com/annel0/arena-maps/internal/eventbus"
	"github.com/annel0/arena-maps/internal/mapdata"
)

type listingStore interface {
	mapdata.BlobStore
	Lister
}

// runBlobStoreContract проверяет поведение, общее для всех бэкендов
func runBlobStoreContract(t *testing.T, store listingStore) {
	ctx := context.Background()
	lobby := mapdata.MustIdentifier("arena:lobby")
	castle := mapdata.MustIdentifier("arena:bedwars/castle")

	t.Run("missing map", func(t *testing.T) {
		_, err := store.Read(ctx, lobby)
		assert.True(t, errors.Is(err, mapdata.ErrNotFound), "ожидался ErrNotFound, получено %v", err)
	})

	t.Run("write and read", func(t *testing.T) {
		require.NoError(t, store.Write(ctx, lobby, []byte("first")))
		require.NoError(t, store.Write(ctx, castle, []byte{0, 1, 2, 3}))

		data, err := store.Read(ctx, lobby)
		require.NoError(t, err)
		assert.Equal(t, []byte("first"), data)

		data, err = store.Read(ctx, castle)
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 1, 2, 3}, data)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, store.Write(ctx, lobby, []byte("second")))
		data, err := store.Read(ctx, lobby)
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), data)
	})

	t.Run("list", func(t *testing.T) {
		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []mapdata.Identifier{castle, lobby}, ids)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, lobby))
		_, err := store.Read(ctx, lobby)
		assert.True(t, errors.Is(err, mapdata.ErrNotFound))

		err = store.Delete(ctx, lobby)
		assert.True(t, errors.Is(err, mapdata.ErrNotFound))
	})
}

func TestMemoryBlobStore(t *testing.T) {
	store := NewMemoryBlobStore()
	defer store.Close()
	runBlobStoreContract(t, store)
}

func TestMemoryBlobStoreCopiesData(t *testing.T) {
	store := NewMemoryBlobStore()
	id := mapdata.MustIdentifier("arena:copy")
	buf := []byte("abc")
	require.NoError(t, store.Write(context.Background(), id, buf))
	buf[0] = 'X'

	data, err := store.Read(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)
}

func TestFileBlobStore(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileBlobStore(root)
	require.NoError(t, err)
	runBlobStoreContract(t, store)
}

func TestFileBlobStoreLayout(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileBlobStore(root)
	require.NoError(t, err)

	id := mapdata.MustIdentifier("arena:bedwars/castle")
	require.NoError(t, store.Write(context.Background(), id, []byte("x")))

	_, err = os.Stat(filepath.Join(root, "arena", "bedwars", "castle", "map.nbt"))
	assert.NoError(t, err)

	// временные файлы не остаются в каталоге карты
	entries, err := os.ReadDir(filepath.Join(root, "arena", "bedwars", "castle"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileBlobStoreRejectsInvalidIdentifier(t *testing.T) {
	store, err := NewFileBlobStore(t.TempDir())
	require.NoError(t, err)

	bad := mapdata.Identifier{Namespace: "arena", Path: "../escape"}
	assert.Error(t, store.Write(context.Background(), bad, []byte("x")))
	_, err = store.Read(context.Background(), bad)
	assert.Error(t, err)
}

func TestBadgerBlobStore(t *testing.T) {
	store, err := NewBadgerBlobStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()
	runBlobStoreContract(t, store)
}

func TestBadgerBlobStoreClosed(t *testing.T) {
	store, err := NewBadgerBlobStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, err = store.Read(context.Background(), mapdata.MustIdentifier("arena:x"))
	assert.Error(t, err)
}

func TestBlobKeyRoundTrip(t *testing.T) {
	id := mapdata.MustIdentifier("arena:bedwars/castle")
	assert.Equal(t, "map:arena:bedwars/castle", blobKey(id))

	back, ok := parseBlobKey(blobKey(id))
	require.True(t, ok)
	assert.Equal(t, id, back)

	_, ok = parseBlobKey("chunk:1:2")
	assert.False(t, ok)
}

func TestOpenBackends(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "memory"
	store, cache, err := Open(cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, cache)
	assert.IsType(t, &MemoryBlobStore{}, store)

	cfg.Storage.Backend = "file"
	cfg.Storage.Root = t.TempDir()
	store, _, err = Open(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileBlobStore{}, store)

	cfg.Storage.Backend = "tape"
	_, _, err = Open(cfg, nil)
	assert.Error(t, err)
}

func TestMariaBlobStore(t *testing.T) {
	dsn := os.Getenv("ARENA_TEST_MARIA_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(127.0.0.1:3306)/arena_test"
	}
	store, err := NewMariaBlobStore(dsn, "arena_maps_test")
	if err != nil {
		t.Skipf("MariaDB not available, skipping test: %v", err)
	}
	defer store.Close()

	_, _ = store.db.Exec("DELETE FROM arena_maps_test")
	runBlobStoreContract(t, store)
}

func TestMariaBlobStoreRejectsTableName(t *testing.T) {
	_, err := NewMariaBlobStore("user:pass@tcp(127.0.0.1:1)/x", "maps; DROP TABLE users")
	assert.Error(t, err)
}

func TestMongoBlobStore(t *testing.T) {
	uri := os.Getenv("ARENA_TEST_MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	store, err := NewMongoBlobStore(MongoConfig{URI: uri, Database: "arena_test", Collection: "maps_" + time.Now().Format("150405")})
	if err != nil {
		t.Skipf("MongoDB not available, skipping test: %v", err)
	}
	defer func() {
		_ = store.collection.Drop(context.Background())
		store.Close()
	}()
	runBlobStoreContract(t, store)
}

func newTestRedisCache(t *testing.T, backend mapdata.BlobStore, nodeID string) *RedisBlobCache {
	addr := os.Getenv("ARENA_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	cache, err := NewRedisBlobCache(RedisCacheConfig{
		Addr:   addr,
		DB:     15,
		TTL:    time.Minute,
		Prefix: "test-" + time.Now().Format("150405.000000"),
		NodeID: nodeID,
	}, backend, nil)
	if err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}
	return cache
}

func TestRedisBlobCache(t *testing.T) {
	cache := newTestRedisCache(t, NewMemoryBlobStore(), "node-a")
	defer cache.Close()
	runBlobStoreContract(t, cache)
}

func TestRedisBlobCacheReadThrough(t *testing.T) {
	backend := NewMemoryBlobStore()
	cache := newTestRedisCache(t, backend, "node-a")
	defer cache.Close()

	ctx := context.Background()
	id := mapdata.MustIdentifier("arena:cached")
	require.NoError(t, backend.Write(ctx, id, []byte("v1")))

	data, err := cache.Read(ctx, id) // промах, заполнение
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), data)

	// бэкенд меняется в обход кэша: кэш отдаёт старое значение до инвалидации
	require.NoError(t, backend.Write(ctx, id, []byte("v2")))
	data, err = cache.Read(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), data)
	assert.InDelta(t, 0.5, cache.HitRatio(), 0.001)

	cache.Invalidate(ctx, id)
	data, err = cache.Read(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestRedisBlobCacheInvalidatedByRemoteEvent(t *testing.T) {
	backend := NewMemoryBlobStore()
	cache := newTestRedisCache(t, backend, "node-a")
	defer cache.Close()

	bus := eventbus.NewMemoryBus(16)
	defer bus.Close()
	ctx := context.Background()
	require.NoError(t, cache.WatchInvalidations(ctx, bus))

	id := mapdata.MustIdentifier("arena:remote")
	require.NoError(t, cache.Write(ctx, id, []byte("old")))
	require.NoError(t, backend.Write(ctx, id, []byte("new")))

	require.NoError(t, eventbus.PublishMapEvent(ctx, bus, eventbus.MapSaved, "node-b",
		eventbus.MapEvent{Namespace: id.Namespace, Path: id.Path}))

	assert.Eventually(t, func() bool {
		data, err := cache.Read(ctx, id)
		return err == nil && string(data) == "new"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestRedisBlobCacheStoresCompressed(t *testing.T) {
	cache := newTestRedisCache(t, NewMemoryBlobStore(), "node-a")
	defer cache.Close()

	ctx := context.Background()
	id := mapdata.MustIdentifier("arena:packed")
	data := bytes.Repeat([]byte("minecraft:stone;"), 512)
	require.NoError(t, cache.Write(ctx, id, data))

	raw, err := cache.client.Get(ctx, cache.key(id)).Bytes()
	require.NoError(t, err)
	assert.Less(t, len(raw), len(data))

	// мусор в Redis считается промахом
	require.NoError(t, cache.client.Set(ctx, cache.key(id), []byte("garbage"), time.Minute).Err())
	got, err := cache.Read(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
