// Package mapgen строит арены для режима с кроватями: центральный остров,
// острова команд с мостами, острова с алмазами и регионы для игровой логики.
package mapgen

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"regexp"

	"github.com/aquilax/go-perlin"

	"github.com/annel0/arena-maps/internal/catalog"
	"github.com/annel0/arena-maps/internal/logging"
	"github.com/annel0/arena-maps/internal/mapdata"
	"github.com/annel0/arena-maps/internal/vec"
)

// Config параметры генерации
type Config struct {
	Seed         int64    `json:"seed"`
	Teams        []string `json:"teams"` // цвета команд, они же ключи регионов
	Theme        string   `json:"theme"`
	Radius       int      `json:"radius"` // от центра карты до центров островов команд
	IslandRadius int      `json:"island_radius"`
	CenterRadius int      `json:"center_radius"`
	BaseY        int      `json:"base_y"`
}

// DefaultConfig четыре команды вокруг центрального острова
func DefaultConfig() Config {
	return Config{
		Seed:         1,
		Teams:        []string{"red", "blue", "green", "yellow"},
		Theme:        "default",
		Radius:       40,
		IslandRadius: 9,
		CenterRadius: 11,
		BaseY:        64,
	}
}

var teamRe = regexp.MustCompile(`^[a-z][a-z_]{0,31}$`)

// Validate проверяет конфигурацию
func (c Config) Validate() error {
	if len(c.Teams) == 0 || len(c.Teams) > 8 {
		return fmt.Errorf("число команд должно быть от 1 до 8, получено %d", len(c.Teams))
	}
	seen := make(map[string]bool, len(c.Teams))
	for _, t := range c.Teams {
		if !teamRe.MatchString(t) {
			return fmt.Errorf("недопустимое имя команды %q", t)
		}
		if seen[t] {
			return fmt.Errorf("команда %q указана дважды", t)
		}
		seen[t] = true
	}
	if _, ok := ThemeByName(c.Theme); !ok {
		return fmt.Errorf("неизвестная тема %q", c.Theme)
	}
	if c.IslandRadius < 7 {
		return fmt.Errorf("радиус острова команды должен быть не меньше 7, получено %d", c.IslandRadius)
	}
	if c.CenterRadius < 4 {
		return fmt.Errorf("радиус центрального острова должен быть не меньше 4, получено %d", c.CenterRadius)
	}
	if c.Radius < c.IslandRadius+c.CenterRadius+4 {
		return fmt.Errorf("радиус арены %d слишком мал для островов %d и %d", c.Radius, c.IslandRadius, c.CenterRadius)
	}
	return nil
}

// cardinal приводит горизонтальный вектор к ближайшей стороне света
func cardinal(dx, dz float64) (string, vec.Vec3) {
	if math.Abs(dx) >= math.Abs(dz) {
		if dx >= 0 {
			return "east", vec.Vec3{X: 1}
		}
		return "west", vec.Vec3{X: -1}
	}
	if dz >= 0 {
		return "south", vec.Vec3{Z: 1}
	}
	return "north", vec.Vec3{Z: -1}
}

func scale(v vec.Vec3, k int) vec.Vec3 {
	return vec.Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

type generator struct {
	cfg   Config
	theme Theme
	noise *perlin.Perlin
	rng   *rand.Rand
	store *mapdata.Store[catalog.BlockState]

	bounds    vec.Bounds
	hasBounds bool
}

// Generate строит арену. Результат полностью определяется cfg.
func Generate(id mapdata.Identifier, cfg Config) (*mapdata.Store[catalog.BlockState], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	theme, _ := ThemeByName(cfg.Theme)

	g := &generator{
		cfg:   cfg,
		theme: theme,
		// Сглаживание 2, частота 2, 3 октавы
		noise: perlin.NewPerlin(2, 2, 3, cfg.Seed),
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		store: mapdata.New(id, catalog.Air),
	}

	center := vec.Vec3{Y: cfg.BaseY}
	g.island(center, cfg.CenterRadius, 6)

	n := len(cfg.Teams)
	for i, team := range cfg.Teams {
		angle := 2*math.Pi*float64(i)/float64(n) - math.Pi/2
		if err := g.team(team, angle); err != nil {
			return nil, err
		}
	}

	g.diamonds(n)
	g.emeralds(center)

	for _, r := range g.store.Regions() {
		g.extend(r.Bounds)
	}
	g.store.SetBounds(g.bounds)

	logging.Info("🏝️ Сгенерирована арена %s: %d команд, тема %s, %d чанков, границы %s",
		id, n, theme.Name, g.store.ChunkCount(), g.bounds)
	return g.store, nil
}

func (g *generator) extend(b vec.Bounds) {
	if !g.hasBounds {
		g.bounds = b
		g.hasBounds = true
		return
	}
	g.bounds = g.bounds.Union(b)
}

func (g *generator) set(p vec.Vec3, b catalog.BlockState) {
	g.store.SetVoxel(p, b)
	g.extend(vec.Single(p))
}

// noiseAt значение шума в [-1, 1]
func (g *generator) noiseAt(x, z int) float64 {
	n := g.noise.Noise2D(float64(x)/12, float64(z)/12)
	return math.Max(-1, math.Min(1, n))
}

// island ставит остров с неровным краем; верх острова на высоте center.Y
func (g *generator) island(center vec.Vec3, radius, depth int) {
	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			x, z := center.X+dx, center.Z+dz
			n := g.noiseAt(x, z)

			edge := float64(radius) * (0.8 + 0.2*n)
			dist := math.Hypot(float64(dx), float64(dz))
			if dist > edge {
				continue
			}

			t := 1 - dist/edge
			columns := 1 + int(t*float64(depth)+(n+1))
			for k := 0; k < columns; k++ {
				p := vec.Vec3{X: x, Y: center.Y - k, Z: z}
				switch {
				case k == 0:
					g.set(p, g.theme.Surface)
				case k <= 2:
					g.set(p, g.theme.Ground)
				default:
					g.set(p, g.theme.Core)
				}
			}
		}
	}
}

// bridge прокладывает мост шириной 3 между двумя точками, не затирая острова
func (g *generator) bridge(from, to vec.Vec3) {
	dx, dz := to.X-from.X, to.Z-from.Z
	steps := max(abs(dx), abs(dz))
	if steps == 0 {
		return
	}
	side := vec.Vec3{Z: 1}
	if abs(dz) > abs(dx) {
		side = vec.Vec3{X: 1}
	}

	for i := 0; i <= steps; i++ {
		p := vec.Vec3{
			X: from.X + int(math.Round(float64(dx*i)/float64(steps))),
			Y: g.cfg.BaseY,
			Z: from.Z + int(math.Round(float64(dz*i)/float64(steps))),
		}
		for w := -1; w <= 1; w++ {
			q := p.Add(scale(side, w))
			if g.store.GetVoxel(q).IsAir() {
				g.set(q, g.theme.Bridge)
			}
		}
	}
}

// team строит остров команды и её регионы
func (g *generator) team(team string, angle float64) error {
	cfg := g.cfg
	c := vec.Vec3{
		X: int(math.Round(float64(cfg.Radius) * math.Cos(angle))),
		Y: cfg.BaseY,
		Z: int(math.Round(float64(cfg.Radius) * math.Sin(angle))),
	}
	g.island(c, cfg.IslandRadius, 4)
	g.bridge(c, vec.Vec3{Y: cfg.BaseY})

	// от центра карты наружу
	_, out := cardinal(math.Cos(angle), math.Sin(angle))
	perp := vec.Vec3{X: -out.Z, Z: out.X}
	up := vec.Vec3{Y: 1}

	// точка появления на шерсти цвета команды
	g.set(c, catalog.Wool(team))
	g.store.AddRegion(mapdata.Region{
		Name:   team + "_spawn",
		Bounds: vec.NewBounds(c.Add(vec.Vec3{X: -1, Y: 1, Z: -1}), c.Add(vec.Vec3{X: 1, Y: 2, Z: 1})),
	})

	// кровать: изголовье дальше от центра, facing от изножья к изголовью
	facing, _ := cardinal(float64(out.X), float64(out.Z))
	foot := c.Add(scale(out, 3)).Add(up)
	head := c.Add(scale(out, 4)).Add(up)
	g.set(foot, catalog.Bed(team, facing, "foot"))
	g.set(head, catalog.Bed(team, facing, "head"))
	g.store.AddRegion(mapdata.Region{Name: team + "_bed", Bounds: vec.NewBounds(foot, head)})

	r := cfg.IslandRadius
	g.store.AddRegion(mapdata.Region{
		Name:   team + "_base",
		Bounds: vec.NewBounds(c.Add(vec.Vec3{X: -r, Y: -6, Z: -r}), c.Add(vec.Vec3{X: r, Y: 12, Z: r})),
	})

	// магазины смотрят на точку появления
	shops := []struct {
		name   string
		offset vec.Vec3
	}{
		{team + "_item_shop", scale(perp, 4)},
		{team + "_team_shop", scale(perp, -4)},
	}
	for _, s := range shops {
		pos := c.Add(s.offset).Add(up)
		dir, _ := cardinal(float64(-s.offset.X), float64(-s.offset.Z))
		g.store.AddRegion(mapdata.Region{
			Name:     s.name,
			Bounds:   vec.NewBounds(pos, pos.Add(up)),
			Metadata: map[string]string{"direction": dir},
		})
	}

	// сундук команды
	chestPos := c.Add(scale(out, 2)).Add(scale(perp, 2)).Add(up)
	chestFacing, _ := cardinal(float64(-out.X), float64(-out.Z))
	g.set(chestPos, catalog.NewBlockState("chest", map[string]string{"facing": chestFacing}))
	payload, err := json.Marshal(rollLoot(g.rng, team))
	if err != nil {
		return fmt.Errorf("ошибка сериализации сундука %s: %w", team, err)
	}
	g.store.SetAuxiliary(chestPos, payload)
	g.store.AddRegion(mapdata.Region{Name: team + "_chest", Bounds: vec.Single(chestPos)})

	return nil
}

// diamonds ставит острова с алмазными генераторами между островами команд
func (g *generator) diamonds(teams int) {
	dist := float64(g.cfg.Radius) * 0.6
	for i := 0; i < teams; i++ {
		angle := 2*math.Pi*(float64(i)+0.5)/float64(teams) - math.Pi/2
		p := vec.Vec3{
			X: int(math.Round(dist * math.Cos(angle))),
			Y: g.cfg.BaseY,
			Z: int(math.Round(dist * math.Sin(angle))),
		}
		g.island(p, 3, 2)
		g.set(p, catalog.DiamondBlock)
		g.store.AddRegion(mapdata.Region{Name: "diamond_spawn", Bounds: vec.Single(p.Add(vec.Vec3{Y: 1}))})
	}
}

// emeralds ставит изумрудные генераторы на центральном острове
func (g *generator) emeralds(center vec.Vec3) {
	for _, off := range []vec.Vec3{{X: 2, Z: 2}, {X: -2, Z: -2}} {
		p := center.Add(off)
		g.set(p, catalog.EmeraldBlock)
		g.store.AddRegion(mapdata.Region{Name: "emerald_spawn", Bounds: vec.Single(p.Add(vec.Vec3{Y: 1}))})
	}
}

// RegisterBlocks добавляет в каталог все блоки, которые может поставить генератор с cfg
func RegisterBlocks(c *catalog.Catalog, cfg Config) {
	names := []string{
		catalog.DiamondBlock.Name, catalog.EmeraldBlock.Name, catalog.Chest.Name,
	}
	if theme, ok := ThemeByName(cfg.Theme); ok {
		for _, b := range theme.Blocks() {
			names = append(names, b.Name)
		}
	}
	for _, team := range cfg.Teams {
		names = append(names, catalog.Wool(team).Name, catalog.Bed(team, "north", "head").Name)
	}
	c.Register(names...)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
