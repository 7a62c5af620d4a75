package mapgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/arena-maps/internal/catalog"
	"github.com/annel0/arena-maps/internal/mapdata"
	"github.com/annel0/arena-maps/internal/vec"
)

var testID = mapdata.MustIdentifier("arena:generated")

func TestGenerateIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 42
	codec := catalog.Default()

	a, err := Generate(testID, cfg)
	require.NoError(t, err)
	b, err := Generate(testID, cfg)
	require.NoError(t, err)

	encA, err := a.Encode(codec)
	require.NoError(t, err)
	encB, err := b.Encode(codec)
	require.NoError(t, err)
	assert.Equal(t, encA, encB)

	cfg.Seed = 43
	c, err := Generate(testID, cfg)
	require.NoError(t, err)
	encC, err := c.Encode(codec)
	require.NoError(t, err)
	assert.NotEqual(t, encA, encC)
}

func TestGenerateTeamRegions(t *testing.T) {
	cfg := DefaultConfig()
	store, err := Generate(testID, cfg)
	require.NoError(t, err)

	directions := map[string]bool{"north": true, "south": true, "east": true, "west": true}
	bounds := store.Bounds()

	for _, team := range cfg.Teams {
		for _, suffix := range []string{"_spawn", "_bed", "_base", "_item_shop", "_team_shop", "_chest"} {
			regions := store.RegionsByName(team + suffix)
			require.Len(t, regions, 1, "регион %s%s", team, suffix)
			assert.True(t, bounds.Contains(regions[0].Bounds.Min), "%s%s вне границ карты", team, suffix)
			assert.True(t, bounds.Contains(regions[0].Bounds.Max), "%s%s вне границ карты", team, suffix)
		}

		for _, shop := range []string{"_item_shop", "_team_shop"} {
			r := store.RegionsByName(team + shop)[0]
			assert.True(t, directions[r.Meta("direction", "")], "direction у %s%s", team, shop)
		}

		// обе части кровати стоят в регионе кровати
		bed, ok := store.FirstRegionBounds(team + "_bed")
		require.True(t, ok)
		assert.Equal(t, 2, bed.Volume())
		parts := map[string]bool{}
		bed.ForEach(func(p vec.Vec3) bool {
			b := store.GetVoxel(p)
			assert.Equal(t, "minecraft:"+team+"_bed", b.Name)
			part, _ := b.Property("part")
			parts[part] = true
			return true
		})
		assert.Equal(t, map[string]bool{"head": true, "foot": true}, parts)

		// сундук с содержимым
		chest, ok := store.FirstRegionBounds(team + "_chest")
		require.True(t, ok)
		assert.Equal(t, "minecraft:chest", store.GetVoxel(chest.Min).Name)
		payload, ok := store.Auxiliary(chest.Min)
		require.True(t, ok)
		loot, err := DecodeChestLoot(payload)
		require.NoError(t, err)
		assert.Equal(t, team, loot.Team)
		assert.NotEmpty(t, loot.Items)

		// шерсть команды под точкой появления
		spawn, _ := store.FirstRegionBounds(team + "_spawn")
		under := spawn.Center()
		under.Y = cfg.BaseY
		assert.Equal(t, catalog.Wool(team), store.GetVoxel(under))
	}

	assert.Len(t, store.RegionsByName("diamond_spawn"), len(cfg.Teams))
	assert.Len(t, store.RegionsByName("emerald_spawn"), 2)
	for _, r := range store.RegionsByName("diamond_spawn") {
		below := r.Bounds.Min
		below.Y--
		assert.Equal(t, catalog.DiamondBlock, store.GetVoxel(below))
	}
	assert.Equal(t, len(cfg.Teams), store.AuxiliaryCount())
}

func TestGenerateSurvivesRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Teams = []string{"red", "blue"}
	cfg.Theme = "desert"

	store, err := Generate(testID, cfg)
	require.NoError(t, err)

	codec := catalog.New(true)
	RegisterBlocks(codec, cfg)

	data, err := store.Encode(codec)
	require.NoError(t, err)
	back, err := mapdata.Decode[catalog.BlockState](testID, data, codec)
	require.NoError(t, err)

	assert.Empty(t, back.Warnings())
	assert.Equal(t, store.Bounds(), back.Bounds())
	assert.Equal(t, store.Regions(), back.Regions())
	assert.Equal(t, store.ChunkCount(), back.ChunkCount())
	store.Bounds().ForEach(func(p vec.Vec3) bool {
		if store.GetVoxel(p) != back.GetVoxel(p) {
			t.Fatalf("расхождение в %s", p)
		}
		return true
	})
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"no teams":         func(c *Config) { c.Teams = nil },
		"duplicate team":   func(c *Config) { c.Teams = []string{"red", "red"} },
		"bad team name":    func(c *Config) { c.Teams = []string{"Red!"} },
		"unknown theme":    func(c *Config) { c.Theme = "moon" },
		"small island":     func(c *Config) { c.IslandRadius = 3 },
		"small center":     func(c *Config) { c.CenterRadius = 1 },
		"radius too tight": func(c *Config) { c.Radius = 10 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			_, err := Generate(testID, cfg)
			assert.Error(t, err)
		})
	}
}

func TestThemes(t *testing.T) {
	assert.Equal(t, []string{"aspen_forest", "default", "desert", "forest", "swamp", "taiga"}, ThemeNames())
	for _, name := range ThemeNames() {
		cfg := DefaultConfig()
		cfg.Theme = name
		cfg.Teams = []string{"red"}
		_, err := Generate(testID, cfg)
		assert.NoError(t, err, name)
	}
}
