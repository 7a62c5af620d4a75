package mapdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/annel0/arena-maps/internal/eventbus"
	"github.com/annel0/arena-maps/internal/logging"
	"github.com/annel0/arena-maps/internal/metrics"
	"github.com/annel0/arena-maps/internal/observability"
	"github.com/annel0/arena-maps/internal/workerpool"
)

// RepositoryOptions необязательные зависимости репозитория
type RepositoryOptions struct {
	Bus     eventbus.EventBus
	Metrics *metrics.MapMetrics
	NodeID  string
}

// Repository загружает и сохраняет карты через BlobStore.
// Загрузка выполняется в пуле воркеров, сохранение синхронно.
type Repository[V comparable] struct {
	blobs   BlobStore
	codec   ValueCodec[V]
	pool    *workerpool.Pool
	bus     eventbus.EventBus
	metrics *metrics.MapMetrics
	nodeID  string
	reads   singleflight.Group
}

// NewRepository создаёт репозиторий карт
func NewRepository[V comparable](blobs BlobStore, codec ValueCodec[V], pool *workerpool.Pool, opts RepositoryOptions) *Repository[V] {
	return &Repository[V]{
		blobs:   blobs,
		codec:   codec,
		pool:    pool,
		bus:     opts.Bus,
		metrics: opts.Metrics,
		nodeID:  opts.NodeID,
	}
}

// Codec возвращает кодек значений репозитория
func (r *Repository[V]) Codec() ValueCodec[V] { return r.codec }

// Load читает и разбирает карту в пуле воркеров.
//
// Загрузку нельзя отменить после старта: отмена ctx прерывает только
// ожидание через Future.Await. Одновременные загрузки одной карты делят
// одно чтение, но каждый вызов получает собственный Store.
func (r *Repository[V]) Load(ctx context.Context, id Identifier) *workerpool.Future[*Store[V]] {
	jobCtx := context.WithoutCancel(ctx)
	return workerpool.Submit(r.pool, func() (*Store[V], error) {
		return r.load(jobCtx, id)
	})
}

func (r *Repository[V]) load(ctx context.Context, id Identifier) (store *Store[V], err error) {
	start := time.Now()
	size := 0
	ctx, span := observability.StartSpan(ctx, "maps.load", id.String())
	defer func() {
		chunks := 0
		if store != nil {
			chunks = store.ChunkCount()
		}
		r.metrics.ObserveLoad(time.Since(start), size, chunks, err)
		observability.EndSpan(span, err)
	}()

	v, err, shared := r.reads.Do(id.String(), func() (interface{}, error) {
		return r.blobs.Read(ctx, id)
	})
	if err != nil {
		return nil, &IoError{Op: "чтения", ID: id, Err: err}
	}
	data := v.([]byte)
	size = len(data)

	store, err = Decode(id, data, r.codec)
	if err != nil {
		logging.Error("❌ Карта %s не загружена: %v", id, err)
		return nil, fmt.Errorf("карта %s: %w", id, err)
	}

	for _, w := range store.warnings {
		r.metrics.AddWarning(warningKind(w))
	}

	logging.Info("🗺️ Карта %s загружена: %d чанков, %d блоков с данными, %d регионов, %d предупреждений (shared=%v)",
		id, store.ChunkCount(), store.AuxiliaryCount(), len(store.regions), len(store.warnings), shared)

	if err := eventbus.PublishMapEvent(ctx, r.bus, eventbus.MapLoaded, r.nodeID, eventbus.MapEvent{
		Namespace: id.Namespace,
		Path:      id.Path,
		Chunks:    store.ChunkCount(),
		Bytes:     size,
		Warnings:  len(store.warnings),
	}); err != nil {
		logging.Warn("Не удалось опубликовать %s для %s: %v", eventbus.MapLoaded, id, err)
	}
	return store, nil
}

// Save сериализует карту и записывает её. Ошибка записи возвращается как *IoError.
func (r *Repository[V]) Save(ctx context.Context, store *Store[V]) (err error) {
	id := store.ID()
	start := time.Now()
	size := 0
	ctx, span := observability.StartSpan(ctx, "maps.save", id.String())
	defer func() {
		r.metrics.ObserveSave(time.Since(start), size, err)
		observability.EndSpan(span, err)
	}()

	data, err := store.Encode(r.codec)
	if err != nil {
		return fmt.Errorf("карта %s: %w", id, err)
	}
	size = len(data)

	if err := r.blobs.Write(ctx, id, data); err != nil {
		logging.Error("❌ Не удалось сохранить карту %s: %v", id, err)
		return &IoError{Op: "записи", ID: id, Err: err}
	}

	logging.Info("💾 Карта %s сохранена (%d байт, %d чанков)", id, size, store.ChunkCount())

	if err := eventbus.PublishMapEvent(ctx, r.bus, eventbus.MapSaved, r.nodeID, eventbus.MapEvent{
		Namespace: id.Namespace,
		Path:      id.Path,
		Chunks:    store.ChunkCount(),
		Bytes:     size,
	}); err != nil {
		logging.Warn("Не удалось опубликовать %s для %s: %v", eventbus.MapSaved, id, err)
	}
	return nil
}

// Delete удаляет карту
func (r *Repository[V]) Delete(ctx context.Context, id Identifier) error {
	if err := r.blobs.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return &IoError{Op: "удаления", ID: id, Err: err}
	}

	logging.Info("🗑️ Карта %s удалена", id)
	if err := eventbus.PublishMapEvent(ctx, r.bus, eventbus.MapDeleted, r.nodeID, eventbus.MapEvent{
		Namespace: id.Namespace,
		Path:      id.Path,
	}); err != nil {
		logging.Warn("Не удалось опубликовать %s для %s: %v", eventbus.MapDeleted, id, err)
	}
	return nil
}

func warningKind(err error) string {
	var mk *MalformedKeyError
	var cc *CorruptChunkError
	switch {
	case errors.As(err, &mk):
		return "malformed_key"
	case errors.As(err, &cc):
		return "corrupt_chunk"
	default:
		return "entry"
	}
}
