package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/arena-maps/internal/mapdata"
)

// Каталог должен подходить как кодек значений карты
var _ mapdata.ValueCodec[BlockState] = (*Catalog)(nil)

func TestParseBlockState(t *testing.T) {
	b, err := ParseBlockState("minecraft:red_bed[part=head,facing=north]")
	require.NoError(t, err)
	assert.Equal(t, "minecraft:red_bed", b.Name)
	assert.Equal(t, "facing=north,part=head", b.Properties)
	assert.Equal(t, "minecraft:red_bed[facing=north,part=head]", b.String())

	v, ok := b.Property("part")
	assert.True(t, ok)
	assert.Equal(t, "head", v)

	b, err = ParseBlockState("stone")
	require.NoError(t, err)
	assert.Equal(t, Stone, b)

	for _, bad := range []string{"", "[a=b]", "stone[a=b", "stone[=b]", "stone[ab]"} {
		_, err := ParseBlockState(bad)
		assert.Error(t, err, "ожидалась ошибка для %q", bad)
	}
}

func TestBedAndWool(t *testing.T) {
	assert.Equal(t, "minecraft:blue_wool", Wool("blue").Name)
	bed := Bed("red", "south", "foot")
	assert.Equal(t, "minecraft:red_bed[facing=south,part=foot]", bed.String())
	assert.True(t, Air.IsAir())
	assert.False(t, bed.IsAir())
}

func TestCatalogCodecRoundTrip(t *testing.T) {
	c := Default()
	for _, b := range []BlockState{Air, Stone, Chest, Bed("red", "north", "head"), Wool("lime")} {
		id, err := c.Encode(b)
		require.NoError(t, err)
		back, err := c.Decode(id)
		require.NoError(t, err)
		assert.Equal(t, b, back)
	}
	assert.Equal(t, Air, c.Empty())
}

func TestStrictCatalogRejectsUnknown(t *testing.T) {
	c := New(true)
	c.Register("stone")

	_, err := c.Decode("minecraft:stone")
	assert.NoError(t, err)
	_, err = c.Decode("minecraft:bedrock")
	assert.Error(t, err)
	_, err = c.Encode(BlockState{Name: "minecraft:bedrock"})
	assert.Error(t, err)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
namespace: minecraft
strict: true
blocks:
  - stone
  - red_wool
  - "custom:reactor"
`), 0644))

	c := New(false)
	require.NoError(t, c.LoadYAML(path))

	assert.True(t, c.Strict())
	assert.Equal(t, []string{"custom:reactor", "minecraft:air", "minecraft:red_wool", "minecraft:stone"}, c.Names())

	assert.Error(t, c.LoadYAML(filepath.Join(t.TempDir(), "missing.yaml")))
}
