package mapdata

import "github.com/annel0/arena-maps/internal/vec"

const (
	// FormatVersion версия контейнера карты
	FormatVersion = 1
	// FileExtension расширение файла карты
	FileExtension = "nbt"
)

// Обязательные поля корневого тега
const (
	fieldVersion       = "version"
	fieldChunks        = "chunks"
	fieldBlockEntities = "block_entities"
	fieldRegions       = "regions"
	fieldBounds        = "bounds"
)

// Структуры ниже описывают бинарный контейнер (big-endian NBT, безымянный корень)

type nbtMap struct {
	Version       int32            `nbt:"version"`
	Chunks        []nbtChunk       `nbt:"chunks"`
	BlockEntities []nbtBlockEntity `nbt:"block_entities"`
	Regions       []nbtRegion      `nbt:"regions"`
	Bounds        nbtBounds        `nbt:"bounds"`
}

type nbtChunk struct {
	Pos         []int32  `nbt:"pos"`
	Palette     []string `nbt:"palette"`
	BlockStates []int64  `nbt:"block_states"`
}

type nbtBlockEntity struct {
	Pos     []int32 `nbt:"pos"`
	Payload []byte  `nbt:"payload"`
}

type nbtBounds struct {
	Min []int32 `nbt:"min"`
	Max []int32 `nbt:"max"`
}

type nbtMeta struct {
	Key   string `nbt:"key"`
	Value string `nbt:"value"`
}

type nbtRegion struct {
	Marker string    `nbt:"marker"`
	Bounds nbtBounds `nbt:"bounds"`
	Data   []nbtMeta `nbt:"data"`
}

func boundsToNBT(b vec.Bounds) nbtBounds {
	return nbtBounds{Min: b.Min.Ints32(), Max: b.Max.Ints32()}
}

// toBounds возвращает arity первого неверного угла, если он есть
func (b nbtBounds) toBounds() (vec.Bounds, int, bool) {
	min, ok := vec.FromInts32(b.Min)
	if !ok {
		return vec.Bounds{}, len(b.Min), false
	}
	max, ok := vec.FromInts32(b.Max)
	if !ok {
		return vec.Bounds{}, len(b.Max), false
	}
	return vec.Bounds{Min: min, Max: max}, 3, true
}
