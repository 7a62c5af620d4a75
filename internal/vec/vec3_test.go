package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkCoordsAndLocal(t *testing.T) {
	cases := []struct {
		pos   Vec3
		chunk Vec3
		local Vec3
	}{
		{Vec3{0, 0, 0}, Vec3{0, 0, 0}, Vec3{0, 0, 0}},
		{Vec3{15, 16, 31}, Vec3{0, 1, 1}, Vec3{15, 0, 15}},
		{Vec3{-1, -16, -17}, Vec3{-1, -1, -2}, Vec3{15, 0, 15}},
	}

	for _, c := range cases {
		assert.Equal(t, c.chunk, c.pos.ChunkCoords(), "чанк для %v", c.pos)
		assert.Equal(t, c.local, c.pos.LocalInChunk(), "локальные координаты для %v", c.pos)
	}
}

func TestVec3Less(t *testing.T) {
	assert.True(t, Vec3{0, 5, 5}.Less(Vec3{1, 0, 0}))
	assert.True(t, Vec3{1, 0, 9}.Less(Vec3{1, 1, 0}))
	assert.True(t, Vec3{1, 1, 0}.Less(Vec3{1, 1, 1}))
	assert.False(t, Vec3{1, 1, 1}.Less(Vec3{1, 1, 1}))
}

func TestFromInts32(t *testing.T) {
	v, ok := FromInts32([]int32{1, -2, 3})
	assert.True(t, ok)
	assert.Equal(t, Vec3{1, -2, 3}, v)

	_, ok = FromInts32([]int32{1, 2})
	assert.False(t, ok)
}

func TestBoundsForEachOrder(t *testing.T) {
	b := NewBounds(Vec3{1, 1, 1}, Vec3{0, 0, 0})
	assert.Equal(t, Vec3{0, 0, 0}, b.Min)
	assert.Equal(t, 8, b.Volume())

	var visited []Vec3
	b.ForEach(func(p Vec3) bool {
		visited = append(visited, p)
		return true
	})

	// X меняется быстрее всего, Y медленнее всего
	assert.Equal(t, []Vec3{
		{0, 0, 0}, {1, 0, 0}, {0, 0, 1}, {1, 0, 1},
		{0, 1, 0}, {1, 1, 0}, {0, 1, 1}, {1, 1, 1},
	}, visited)
}

func TestBoundsForEachStops(t *testing.T) {
	b := NewBounds(Vec3{0, 0, 0}, Vec3{9, 9, 9})
	count := 0
	b.ForEach(func(p Vec3) bool {
		count++
		return count < 5
	})
	assert.Equal(t, 5, count)
}

func TestBoundsContainsAndOffset(t *testing.T) {
	b := NewBounds(Vec3{0, 0, 0}, Vec3{31, 31, 31})
	assert.True(t, b.Contains(Vec3{31, 0, 16}))
	assert.False(t, b.Contains(Vec3{32, 0, 0}))

	moved := b.Offset(Vec3{100, 64, -10})
	assert.Equal(t, Vec3{100, 64, -10}, moved.Min)
	assert.Equal(t, Vec3{131, 95, 21}, moved.Max)

	u := Single(Vec3{-5, 0, 0}).Union(b)
	assert.Equal(t, Vec3{-5, 0, 0}, u.Min)
	assert.Equal(t, Vec3{31, 31, 31}, u.Max)
}
