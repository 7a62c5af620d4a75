package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/arena-maps/internal/catalog"
	"github.com/annel0/arena-maps/internal/mapdata"
	"github.com/annel0/arena-maps/internal/mapgen"
	"github.com/annel0/arena-maps/internal/materialize"
	"github.com/annel0/arena-maps/internal/vec"
)

func TestWorldBlocks(t *testing.T) {
	w := NewWorld("test")
	p := vec.New3(-1, 70, 33)

	assert.Equal(t, catalog.Air, w.GetBlock(p))
	w.SetBlock(p, catalog.Air)
	assert.Equal(t, 0, w.LoadedChunks(), "воздух не выделяет чанк")

	w.SetBlock(p, catalog.Stone)
	assert.Equal(t, catalog.Stone, w.GetBlock(p))
	assert.Equal(t, 1, w.LoadedChunks())

	w.SetBlockEntity(p, catalog.Chest, []byte(`{"items":[]}`))
	be, ok := w.BlockEntity(p)
	require.True(t, ok)
	assert.Equal(t, catalog.Chest, be.State)

	// обычная установка блока убирает данные
	w.SetBlock(p, catalog.Stone)
	_, ok = w.BlockEntity(p)
	assert.False(t, ok)
}

func TestPlacerRejectsForeignHost(t *testing.T) {
	_, err := Placer{}.Open("not a world", vec.Origin, vec.Bounds{})
	assert.Error(t, err)

	var nilWorld *World
	_, err = Placer{}.Open(nilWorld, vec.Origin, vec.Bounds{})
	assert.Error(t, err)
}

func TestMaterializeGeneratedArena(t *testing.T) {
	id := mapdata.MustIdentifier("arena:preview")
	cfg := mapgen.DefaultConfig()
	cfg.Teams = []string{"red", "blue"}
	store, err := mapgen.Generate(id, cfg)
	require.NoError(t, err)

	w := NewWorld("preview")
	origin := vec.New3(1000, -10, -500)

	handle, stats, err := materialize.ApplyWithStats(store, materialize.Opener[catalog.BlockState](Placer{Map: id}), w, origin, nil)
	require.NoError(t, err)
	inst, ok := handle.(*Instance)
	require.True(t, ok)

	assert.Equal(t, store.Bounds().Volume(), stats.Voxels)
	assert.Equal(t, store.AuxiliaryCount(), stats.Auxiliary)
	assert.Equal(t, len(store.Regions()), stats.Regions)
	assert.Equal(t, store.Bounds().Offset(origin), inst.Bounds)
	assert.Equal(t, stats.NonEmpty, w.CountBlocks(inst.Bounds))
	require.Len(t, w.Instances(), 1)

	// содержимое совпадает со смещением
	store.Bounds().ForEach(func(p vec.Vec3) bool {
		if store.GetVoxel(p) != w.GetBlock(p.Add(origin)) {
			t.Fatalf("расхождение в %s", p)
		}
		return true
	})

	for _, pos := range store.AuxiliaryPositions() {
		be, ok := w.BlockEntity(pos.Add(origin))
		require.True(t, ok)
		payload, _ := store.Auxiliary(pos)
		assert.Equal(t, payload, be.Payload)
	}

	assert.Equal(t, []string{"blue", "red"}, inst.Teams())

	red := inst.TeamRegions("red")
	require.NotNil(t, red.Spawn)
	require.NotNil(t, red.Bed)
	spawn, _ := store.FirstRegionBounds("red_spawn")
	assert.Equal(t, spawn.Offset(origin), *red.Spawn)
	shop := store.RegionsByName("red_item_shop")[0]
	assert.Equal(t, shop.Meta("direction", ""), red.ItemShopDirection)
}

func TestTeamRegionsDefaults(t *testing.T) {
	inst := &Instance{Regions: []mapdata.Region{
		{Name: "red_item_shop", Bounds: vec.Single(vec.Origin), Metadata: map[string]string{"direction": "EAST"}},
		{Name: "red_team_shop", Bounds: vec.Single(vec.Origin), Metadata: map[string]string{"direction": "sideways"}},
	}}

	tr := inst.TeamRegions("red")
	assert.Nil(t, tr.Spawn)
	assert.NotNil(t, tr.ItemShop)
	assert.Equal(t, "east", tr.ItemShopDirection)
	assert.Equal(t, "north", tr.TeamShopDirection)

	empty := inst.TeamRegions("blue")
	assert.Nil(t, empty.ItemShop)
	assert.Equal(t, "north", empty.ItemShopDirection)
}
