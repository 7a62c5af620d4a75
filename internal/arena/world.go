// Package arena содержит живой мир арены в памяти: приёмник материализации карт.
// Мир принадлежит одной горутине и не потокобезопасен.
package arena

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/annel0/arena-maps/internal/catalog"
	"github.com/annel0/arena-maps/internal/mapdata"
	"github.com/annel0/arena-maps/internal/materialize"
	"github.com/annel0/arena-maps/internal/vec"
	"github.com/annel0/arena-maps/internal/voxel"
)

// BlockEntity блок с дополнительными данными (сундук и т.п.)
type BlockEntity struct {
	State   catalog.BlockState
	Payload []byte
}

// World мир арены
type World struct {
	name          string
	chunks        map[vec.Vec3]*voxel.Chunk[catalog.BlockState]
	blockEntities map[vec.Vec3]BlockEntity
	instances     []*Instance
}

// NewWorld создаёт пустой мир
func NewWorld(name string) *World {
	return &World{
		name:          name,
		chunks:        make(map[vec.Vec3]*voxel.Chunk[catalog.BlockState]),
		blockEntities: make(map[vec.Vec3]BlockEntity),
	}
}

// Name имя мира
func (w *World) Name() string { return w.name }

// GetBlock возвращает блок в мировых координатах
func (w *World) GetBlock(pos vec.Vec3) catalog.BlockState {
	c, ok := w.chunks[pos.ChunkCoords()]
	if !ok {
		return catalog.Air
	}
	l := pos.LocalInChunk()
	return c.Get(l.X, l.Y, l.Z)
}

// SetBlock ставит блок. Установка блока сбрасывает данные блока в этой позиции.
func (w *World) SetBlock(pos vec.Vec3, b catalog.BlockState) {
	delete(w.blockEntities, pos)

	key := pos.ChunkCoords()
	c, ok := w.chunks[key]
	if !ok {
		if b.IsAir() {
			return
		}
		c = voxel.NewChunk(catalog.Air)
		w.chunks[key] = c
	}
	l := pos.LocalInChunk()
	c.Set(l.X, l.Y, l.Z, b)
}

// SetBlockEntity ставит блок вместе с данными
func (w *World) SetBlockEntity(pos vec.Vec3, b catalog.BlockState, payload []byte) {
	w.SetBlock(pos, b)
	cp := make([]byte, len(payload))
	copy(cp, payload)
	w.blockEntities[pos] = BlockEntity{State: b, Payload: cp}
}

// BlockEntity возвращает данные блока
func (w *World) BlockEntity(pos vec.Vec3) (BlockEntity, bool) {
	be, ok := w.blockEntities[pos]
	return be, ok
}

// LoadedChunks число выделенных чанков
func (w *World) LoadedChunks() int { return len(w.chunks) }

// CountBlocks число непустых блоков в границах
func (w *World) CountBlocks(b vec.Bounds) int {
	n := 0
	b.ForEach(func(p vec.Vec3) bool {
		if !w.GetBlock(p).IsAir() {
			n++
		}
		return true
	})
	return n
}

// Instances размещённые карты в порядке размещения
func (w *World) Instances() []*Instance {
	out := make([]*Instance, len(w.instances))
	copy(out, w.instances)
	return out
}

// Instance карта, размещённая в мире
type Instance struct {
	ID      uuid.UUID
	Map     mapdata.Identifier
	Origin  vec.Vec3
	Bounds  vec.Bounds // в мировых координатах
	Regions []mapdata.Region
}

// Region возвращает первый регион с именем
func (in *Instance) Region(name string) (mapdata.Region, bool) {
	for _, r := range in.Regions {
		if r.Name == name {
			return r, true
		}
	}
	return mapdata.Region{}, false
}

// RegionNames уникальные имена регионов по возрастанию
func (in *Instance) RegionNames() []string {
	seen := make(map[string]struct{}, len(in.Regions))
	for _, r := range in.Regions {
		seen[r.Name] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Placer размещает карты в *World. Реализует materialize.Opener.
type Placer struct {
	Map mapdata.Identifier
}

var _ materialize.Opener[catalog.BlockState] = Placer{}

// Open открывает построитель для host, который должен быть *World
func (p Placer) Open(host any, origin vec.Vec3, bounds vec.Bounds) (materialize.Builder[catalog.BlockState], error) {
	w, ok := host.(*World)
	if !ok || w == nil {
		return nil, fmt.Errorf("ожидался *arena.World, получен %T", host)
	}
	return &builder{
		world: w,
		instance: &Instance{
			ID:     uuid.New(),
			Map:    p.Map,
			Origin: origin,
			Bounds: bounds.Offset(origin),
		},
	}, nil
}

type builder struct {
	world    *World
	instance *Instance
}

func (b *builder) SetVoxel(pos vec.Vec3, value catalog.BlockState) {
	b.world.SetBlock(pos, value)
}

func (b *builder) SetAuxiliary(pos vec.Vec3, value catalog.BlockState, payload []byte) {
	b.world.SetBlockEntity(pos, value, payload)
}

func (b *builder) AddRegion(r mapdata.Region) {
	b.instance.Regions = append(b.instance.Regions, r.Clone())
}

func (b *builder) Build() (materialize.Handle, error) {
	b.world.instances = append(b.world.instances, b.instance)
	return b.instance, nil
}
