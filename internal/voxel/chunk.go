package voxel

import "math/bits"

const (
	// Size длина ребра чанка
	Size = 16
	// Volume количество ячеек в чанке
	Volume = Size * Size * Size
)

// Index возвращает линейный индекс локальной ячейки
func Index(x, y, z int) int {
	return (x << 8) | (y << 4) | z
}

// BitsFor возвращает минимальную ширину индекса (не меньше 1),
// достаточную для адресации n элементов палитры.
func BitsFor(n int) int {
	if n <= 2 {
		return 1
	}
	return bits.Len(uint(n - 1))
}

// Chunk хранит 16x16x16 значений через палитру и упакованные индексы.
// palette[0] всегда пустое значение. Палитра только растёт,
// ширина индекса никогда не уменьшается.
//
// Chunk не потокобезопасен.
type Chunk[V comparable] struct {
	palette []V
	lookup  map[V]int
	indices *PackedArray
}

// NewChunk создаёт чанк, заполненный пустым значением
func NewChunk[V comparable](empty V) *Chunk[V] {
	return &Chunk[V]{
		palette: []V{empty},
		lookup:  map[V]int{empty: 0},
		indices: NewPackedArray(1, Volume),
	}
}

// Get возвращает значение в локальной ячейке (каждая координата в [0,16))
func (c *Chunk[V]) Get(x, y, z int) V {
	return c.palette[c.indices.Get(Index(x, y, z))]
}

// Set записывает значение в локальную ячейку.
// Новое значение добавляется в конец палитры; если палитра перестала
// помещаться в текущую ширину, индексы перепаковываются.
func (c *Chunk[V]) Set(x, y, z int, value V) {
	i, ok := c.lookup[value]
	if !ok {
		i = len(c.palette)
		c.palette = append(c.palette, value)
		c.lookup[value] = i

		if need := BitsFor(len(c.palette)); need > c.indices.Bits() {
			c.indices.Resize(need)
		}
	}
	c.indices.Set(Index(x, y, z), uint64(i))
}

// BitWidth возвращает текущую ширину индекса
func (c *Chunk[V]) BitWidth() int {
	return c.indices.Bits()
}

// PaletteLen возвращает размер палитры
func (c *Chunk[V]) PaletteLen() int {
	return len(c.palette)
}

// Palette возвращает копию палитры в порядке добавления
func (c *Chunk[V]) Palette() []V {
	out := make([]V, len(c.palette))
	copy(out, c.palette)
	return out
}

// IsEmpty сообщает, что все ячейки чанка пустые
func (c *Chunk[V]) IsEmpty() bool {
	if len(c.palette) == 1 {
		return true
	}
	for i := 0; i < Volume; i++ {
		if c.indices.Get(i) != 0 {
			return false
		}
	}
	return true
}

// Serialize возвращает палитру и упакованные индексы.
// Количество слов равно ceil(4096*BitWidth/64).
func (c *Chunk[V]) Serialize() ([]V, []uint64) {
	return c.Palette(), c.indices.Words()
}

// DeserializeChunk восстанавливает чанк из палитры и упакованных слов.
// Ширина индекса выводится из размера палитры. bitsHint из потока
// принимается только если он шире минимальной ширины и длина массива
// слов в точности ему соответствует.
func DeserializeChunk[V comparable](empty V, palette []V, words []uint64, bitsHint int) (*Chunk[V], error) {
	if len(palette) == 0 {
		return nil, corrupt("пустая палитра")
	}
	if palette[0] != empty {
		return nil, corrupt("первый элемент палитры не пустое значение")
	}

	lookup := make(map[V]int, len(palette))
	for i, v := range palette {
		if _, dup := lookup[v]; dup {
			return nil, corrupt("повтор в палитре на позиции %d", i)
		}
		lookup[v] = i
	}

	width := BitsFor(len(palette))
	// Писатель мог хранить более широкие индексы, чем минимально нужно
	// (ширина только растёт). Если слов хватает под подсказку, доверяем ей.
	if bitsHint > width && bitsHint <= wordBits && len(words) == WordsFor(bitsHint, Volume) {
		width = bitsHint
	}

	indices, err := UnpackArray(width, Volume, words)
	if err != nil {
		return nil, &CorruptChunkError{Reason: "распаковка индексов", Err: err}
	}

	limit := uint64(len(palette))
	for i := 0; i < Volume; i++ {
		if idx := indices.Get(i); idx >= limit {
			return nil, corrupt("индекс %d в ячейке %d вне палитры размера %d", idx, i, limit)
		}
	}

	palCopy := make([]V, len(palette))
	copy(palCopy, palette)
	return &Chunk[V]{palette: palCopy, lookup: lookup, indices: indices}, nil
}
