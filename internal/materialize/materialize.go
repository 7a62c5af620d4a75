package materialize

import (
	"fmt"
	"time"

	"github.com/annel0/arena-maps/internal/mapdata"
	"github.com/annel0/arena-maps/internal/metrics"
	"github.com/annel0/arena-maps/internal/vec"
)

// Handle результат сборки мира, принадлежит принимающей стороне
type Handle any

// Builder принимает содержимое карты. Реализации не обязаны быть потокобезопасными:
// Apply вызывает их из одной горутины.
type Builder[V comparable] interface {
	SetVoxel(pos vec.Vec3, value V)
	SetAuxiliary(pos vec.Vec3, value V, payload []byte)
	AddRegion(r mapdata.Region)
	Build() (Handle, error)
}

// Opener создаёт Builder в контексте хоста.
// origin смещение размещения, bounds границы карты в её собственных координатах.
type Opener[V comparable] interface {
	Open(host any, origin vec.Vec3, bounds vec.Bounds) (Builder[V], error)
}

// Stats итоги одной материализации
type Stats struct {
	Voxels    int
	NonEmpty  int
	Auxiliary int
	Regions   int
	Duration  time.Duration
}

// Apply переносит карту в мир со смещением origin.
//
// Порядок обхода: Y снаружи, затем Z, X внутри (vec.Bounds.ForEach).
// Каждая позиция в границах передаётся ровно один раз, включая пустые.
// Данные блока передаются сразу после вокселя той же позиции.
// Регионы добавляются после всего объёма, сдвинутые на origin.
func Apply[V comparable](store *mapdata.Store[V], opener Opener[V], host any, origin vec.Vec3) (Handle, error) {
	h, _, err := ApplyWithStats(store, opener, host, origin, nil)
	return h, err
}

// ApplyWithStats как Apply, но возвращает статистику и пишет метрики, если m не nil
func ApplyWithStats[V comparable](store *mapdata.Store[V], opener Opener[V], host any, origin vec.Vec3, m *metrics.MapMetrics) (Handle, Stats, error) {
	start := time.Now()
	var stats Stats

	bounds := store.Bounds()
	builder, err := opener.Open(host, origin, bounds)
	if err != nil {
		return nil, stats, fmt.Errorf("не удалось открыть мир для карты %s: %w", store.ID(), err)
	}

	empty := store.Empty()
	bounds.ForEach(func(p vec.Vec3) bool {
		value := store.GetVoxel(p)
		target := p.Add(origin)
		builder.SetVoxel(target, value)

		stats.Voxels++
		if value != empty {
			stats.NonEmpty++
		}
		if payload, ok := store.Auxiliary(p); ok {
			builder.SetAuxiliary(target, value, payload)
			stats.Auxiliary++
		}
		return true
	})

	for _, r := range store.Regions() {
		builder.AddRegion(r.Offset(origin))
		stats.Regions++
	}

	handle, err := builder.Build()
	stats.Duration = time.Since(start)
	if err != nil {
		return nil, stats, fmt.Errorf("сборка мира для карты %s: %w", store.ID(), err)
	}

	m.ObserveApply(stats.Duration, stats.Voxels)
	return handle, stats, nil
}
