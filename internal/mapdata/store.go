package mapdata

import (
	"sort"

	"github.com/annel0/arena-maps/internal/vec"
	"github.com/annel0/arena-maps/internal/voxel"
)

// Store карта в памяти: разреженный набор чанков, вспомогательные данные
// блоков, регионы и границы. Чанк создаётся только при записи непустого значения.
//
// Store не потокобезопасен: один писатель в каждый момент времени.
type Store[V comparable] struct {
	id        Identifier
	empty     V
	chunks    map[vec.Vec3]*voxel.Chunk[V]
	auxiliary map[vec.Vec3][]byte
	regions   []Region
	bounds    vec.Bounds
	warnings  []error
}

// New создаёт пустую карту
func New[V comparable](id Identifier, empty V) *Store[V] {
	return &Store[V]{
		id:        id,
		empty:     empty,
		chunks:    make(map[vec.Vec3]*voxel.Chunk[V]),
		auxiliary: make(map[vec.Vec3][]byte),
	}
}

// ID возвращает идентификатор карты
func (s *Store[V]) ID() Identifier { return s.id }

// Empty возвращает пустое значение карты
func (s *Store[V]) Empty() V { return s.empty }

// SetVoxel записывает значение по абсолютной позиции.
// Границы карты не проверяются.
func (s *Store[V]) SetVoxel(pos vec.Vec3, value V) {
	key := pos.ChunkCoords()
	chunk, ok := s.chunks[key]
	if !ok {
		if value == s.empty {
			return
		}
		chunk = voxel.NewChunk(s.empty)
		s.chunks[key] = chunk
	}
	local := pos.LocalInChunk()
	chunk.Set(local.X, local.Y, local.Z, value)
}

// GetVoxel возвращает значение по абсолютной позиции или пустое значение
func (s *Store[V]) GetVoxel(pos vec.Vec3) V {
	chunk, ok := s.chunks[pos.ChunkCoords()]
	if !ok {
		return s.empty
	}
	local := pos.LocalInChunk()
	return chunk.Get(local.X, local.Y, local.Z)
}

// SetAuxiliary сохраняет вспомогательные данные блока. nil удаляет запись.
func (s *Store[V]) SetAuxiliary(pos vec.Vec3, payload []byte) {
	if payload == nil {
		delete(s.auxiliary, pos)
		return
	}
	data := make([]byte, len(payload))
	copy(data, payload)
	s.auxiliary[pos] = data
}

// Auxiliary возвращает вспомогательные данные по позиции
func (s *Store[V]) Auxiliary(pos vec.Vec3) ([]byte, bool) {
	data, ok := s.auxiliary[pos]
	return data, ok
}

// AuxiliaryPositions возвращает позиции с вспомогательными данными по возрастанию
func (s *Store[V]) AuxiliaryPositions() []vec.Vec3 {
	out := make([]vec.Vec3, 0, len(s.auxiliary))
	for pos := range s.auxiliary {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// AuxiliaryCount количество записей вспомогательных данных
func (s *Store[V]) AuxiliaryCount() int { return len(s.auxiliary) }

// AddRegion добавляет регион в конец списка
func (s *Store[V]) AddRegion(r Region) {
	s.regions = append(s.regions, r.Clone())
}

// Regions возвращает регионы в порядке добавления
func (s *Store[V]) Regions() []Region {
	out := make([]Region, len(s.regions))
	for i, r := range s.regions {
		out[i] = r.Clone()
	}
	return out
}

// RegionsByName возвращает все регионы с заданным именем в порядке хранения
func (s *Store[V]) RegionsByName(name string) []Region {
	var out []Region
	for _, r := range s.regions {
		if r.Name == name {
			out = append(out, r.Clone())
		}
	}
	return out
}

// FirstRegionBounds возвращает границы первого региона с заданным именем
func (s *Store[V]) FirstRegionBounds(name string) (vec.Bounds, bool) {
	for _, r := range s.regions {
		if r.Name == name {
			return r.Bounds, true
		}
	}
	return vec.Bounds{}, false
}

// SetBounds задаёт границы карты (включительно)
func (s *Store[V]) SetBounds(b vec.Bounds) { s.bounds = b }

// Bounds возвращает границы карты
func (s *Store[V]) Bounds() vec.Bounds { return s.bounds }

// ChunkCount количество выделенных чанков
func (s *Store[V]) ChunkCount() int { return len(s.chunks) }

// ChunkCoords возвращает координаты выделенных чанков по возрастанию (x, y, z)
func (s *Store[V]) ChunkCoords() []vec.Vec3 {
	out := make([]vec.Vec3, 0, len(s.chunks))
	for key := range s.chunks {
		out = append(out, key)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Chunk возвращает чанк по координате чанка
func (s *Store[V]) Chunk(key vec.Vec3) (*voxel.Chunk[V], bool) {
	c, ok := s.chunks[key]
	return c, ok
}

// Warnings возвращает предупреждения, накопленные при загрузке
func (s *Store[V]) Warnings() []error {
	out := make([]error, len(s.warnings))
	copy(out, s.warnings)
	return out
}

func (s *Store[V]) warn(err error) {
	s.warnings = append(s.warnings, err)
}
