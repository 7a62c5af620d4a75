package mapgen

import (
	"sort"

	"github.com/annel0/arena-maps/internal/catalog"
)

// Theme набор блоков, из которых строятся острова
type Theme struct {
	Name    string
	Surface catalog.BlockState
	Ground  catalog.BlockState
	Core    catalog.BlockState // нижние слои острова
	Bridge  catalog.BlockState
}

var themes = map[string]Theme{
	"default": {
		Name: "default", Surface: catalog.Grass, Ground: catalog.Dirt,
		Core: catalog.Stone, Bridge: catalog.Planks,
	},
	"desert": {
		Name: "desert", Surface: catalog.NewBlockState("sand", nil), Ground: catalog.Sandstone,
		Core: catalog.Sandstone, Bridge: catalog.NewBlockState("smooth_sandstone", nil),
	},
	"forest": {
		Name: "forest", Surface: catalog.Grass, Ground: catalog.Dirt,
		Core: catalog.Stone, Bridge: catalog.NewBlockState("spruce_planks", nil),
	},
	"aspen_forest": {
		Name: "aspen_forest", Surface: catalog.Grass, Ground: catalog.Dirt,
		Core: catalog.Stone, Bridge: catalog.NewBlockState("birch_planks", nil),
	},
	"taiga": {
		Name: "taiga", Surface: catalog.NewBlockState("podzol", nil), Ground: catalog.Dirt,
		Core: catalog.Stone, Bridge: catalog.NewBlockState("spruce_planks", nil),
	},
	"swamp": {
		Name: "swamp", Surface: catalog.Grass, Ground: catalog.NewBlockState("mud", nil),
		Core: catalog.NewBlockState("clay", nil), Bridge: catalog.NewBlockState("mangrove_planks", nil),
	},
}

// ThemeByName возвращает тему по имени
func ThemeByName(name string) (Theme, bool) {
	t, ok := themes[name]
	return t, ok
}

// ThemeNames возвращает имена тем по возрастанию
func ThemeNames() []string {
	out := make([]string, 0, len(themes))
	for n := range themes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Blocks перечисляет все блоки темы
func (t Theme) Blocks() []catalog.BlockState {
	return []catalog.BlockState{t.Surface, t.Ground, t.Core, t.Bridge}
}
