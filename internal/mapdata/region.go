package mapdata

import (
	"sort"

	"github.com/annel0/arena-maps/internal/vec"
)

// Region именованная область карты с произвольными метаданными.
// Хранилище переносит её без изменений и не придаёт ей смысла.
type Region struct {
	Name     string
	Bounds   vec.Bounds
	Metadata map[string]string
}

// Offset возвращает копию региона, сдвинутую на origin
func (r Region) Offset(origin vec.Vec3) Region {
	out := r.Clone()
	out.Bounds = r.Bounds.Offset(origin)
	return out
}

// Clone возвращает глубокую копию
func (r Region) Clone() Region {
	out := Region{Name: r.Name, Bounds: r.Bounds}
	if len(r.Metadata) > 0 {
		out.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// Meta возвращает значение метаданных или fallback
func (r Region) Meta(key, fallback string) string {
	if v, ok := r.Metadata[key]; ok {
		return v
	}
	return fallback
}

// sortedMetaKeys возвращает ключи метаданных по возрастанию
func (r Region) sortedMetaKeys() []string {
	keys := make([]string, 0, len(r.Metadata))
	for k := range r.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
