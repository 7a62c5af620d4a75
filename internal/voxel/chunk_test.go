package voxel

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const air = "minecraft:air"

func TestBitsFor(t *testing.T) {
	cases := map[int]int{
		0: 1, 1: 1, 2: 1, 3: 2, 4: 2, 5: 3,
		16: 4, 17: 5, 256: 8, 257: 9, 4096: 12,
	}
	for n, want := range cases {
		assert.Equal(t, want, BitsFor(n), "BitsFor(%d)", n)
	}
}

func TestPackedArrayStraddlesWords(t *testing.T) {
	// 5 бит: элемент 12 занимает биты 60..64 и пересекает границу слова
	a := NewPackedArray(5, 64)
	for i := 0; i < 64; i++ {
		a.Set(i, uint64(i%32))
	}
	for i := 0; i < 64; i++ {
		assert.Equal(t, uint64(i%32), a.Get(i), "элемент %d", i)
	}
	assert.Len(t, a.Words(), 5)

	a.Resize(9)
	for i := 0; i < 64; i++ {
		assert.Equal(t, uint64(i%32), a.Get(i), "после перепаковки, элемент %d", i)
	}
	assert.Len(t, a.Words(), 9)
}

func TestPackedArrayLSBFirst(t *testing.T) {
	a := NewPackedArray(4, 16)
	a.Set(0, 0x1)
	a.Set(1, 0xF)
	a.Set(15, 0xA)
	assert.Equal(t, []uint64{0xA0000000000000F1}, a.Words())
}

func TestUnpackArrayTooShort(t *testing.T) {
	_, err := UnpackArray(3, Volume, make([]uint64, WordsFor(3, Volume)-1))
	assert.Error(t, err)
}

func TestChunkDefaultsToEmpty(t *testing.T) {
	c := NewChunk(air)
	assert.Equal(t, 1, c.BitWidth())
	assert.Equal(t, 1, c.PaletteLen())
	assert.True(t, c.IsEmpty())
	assert.Equal(t, air, c.Get(15, 15, 15))
}

func TestChunkLastWriteWins(t *testing.T) {
	c := NewChunk(air)
	c.Set(1, 2, 3, "stone")
	c.Set(1, 2, 3, "dirt")
	assert.Equal(t, "dirt", c.Get(1, 2, 3))
	assert.Equal(t, []string{air, "stone", "dirt"}, c.Palette())
	assert.False(t, c.IsEmpty())

	c.Set(1, 2, 3, air)
	assert.True(t, c.IsEmpty())
	// палитра не сжимается
	assert.Equal(t, 3, c.PaletteLen())
}

func TestChunkPaletteMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	c := NewChunk(air)
	prev := c.BitWidth()

	for step := 0; step < 5000; step++ {
		v := fmt.Sprintf("block_%d", rng.Intn(600))
		c.Set(rng.Intn(Size), rng.Intn(Size), rng.Intn(Size), v)

		w := c.BitWidth()
		require.GreaterOrEqual(t, w, prev, "ширина уменьшилась на шаге %d", step)
		require.GreaterOrEqual(t, 1<<uint(w), c.PaletteLen(), "палитра не помещается на шаге %d", step)
		prev = w
	}
}

// fillChunk строит чанк с палитрой ровно из k элементов, включая пустой
func fillChunk(t *testing.T, k int, seed int64) *Chunk[string] {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	c := NewChunk(air)
	for i := 1; i < k; i++ {
		c.Set((i>>8)&15, (i>>4)&15, i&15, fmt.Sprintf("v%d", i))
	}
	// случайные перезаписи уже известными значениями
	for i := 0; i < Volume; i++ {
		if rng.Intn(3) == 0 {
			c.Set(rng.Intn(Size), rng.Intn(Size), rng.Intn(Size), c.palette[rng.Intn(k)])
		}
	}
	require.Equal(t, k, c.PaletteLen())
	return c
}

func TestChunkPackingExactness(t *testing.T) {
	for _, k := range []int{1, 2, 16, 17, 256, 257} {
		k := k
		t.Run(fmt.Sprintf("palette_%d", k), func(t *testing.T) {
			c := fillChunk(t, k, int64(k))
			assert.Equal(t, BitsFor(k), c.BitWidth())

			palette, words := c.Serialize()
			assert.Len(t, words, (Volume*c.BitWidth()+63)/64)

			restored, err := DeserializeChunk(air, palette, words, c.BitWidth())
			require.NoError(t, err)

			assert.Equal(t, c.BitWidth(), restored.BitWidth())
			assert.Equal(t, words, restored.indices.Words())
			for i := 0; i < Volume; i++ {
				require.Equal(t, c.indices.Get(i), restored.indices.Get(i), "ячейка %d", i)
			}
		})
	}
}

func TestDeserializeAcceptsWiderHint(t *testing.T) {
	wide := NewPackedArray(4, Volume)
	wide.Set(Index(0, 0, 1), 1)

	c, err := DeserializeChunk(air, []string{air, "stone"}, wide.Words(), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, c.BitWidth())
	assert.Equal(t, "stone", c.Get(0, 0, 1))
	assert.Equal(t, air, c.Get(0, 0, 0))
}

func TestDeserializeCorruption(t *testing.T) {
	twoBits := NewPackedArray(2, Volume)
	twoBits.Set(7, 3)

	cases := []struct {
		name    string
		palette []string
		words   []uint64
	}{
		{"короткий массив", []string{air, "a", "b"}, make([]uint64, 10)},
		{"индекс вне палитры", []string{air, "a", "b"}, twoBits.Words()},
		{"пустая палитра", nil, make([]uint64, 64)},
		{"первый элемент не пустой", []string{"a"}, make([]uint64, 64)},
		{"повтор в палитре", []string{air, "a", "a"}, make([]uint64, 128)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DeserializeChunk(air, tc.palette, tc.words, 0)
			require.Error(t, err)

			var corruptErr *CorruptChunkError
			assert.True(t, errors.As(err, &corruptErr))
		})
	}
}
