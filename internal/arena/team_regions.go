package arena

import (
	"strings"

	"github.com/annel0/arena-maps/internal/vec"
)

// TeamRegions регионы команды, прочитанные из размещённой карты.
// Отсутствующий регион оставляет nil, направление магазина по умолчанию north.
type TeamRegions struct {
	Team              string      `json:"team"`
	Base              *vec.Bounds `json:"base,omitempty"`
	Spawn             *vec.Bounds `json:"spawn,omitempty"`
	Bed               *vec.Bounds `json:"bed,omitempty"`
	Chest             *vec.Bounds `json:"chest,omitempty"`
	ItemShop          *vec.Bounds `json:"item_shop,omitempty"`
	TeamShop          *vec.Bounds `json:"team_shop,omitempty"`
	ItemShopDirection string      `json:"item_shop_direction"`
	TeamShopDirection string      `json:"team_shop_direction"`
}

var directions = map[string]bool{
	"north": true, "south": true, "east": true, "west": true, "up": true, "down": true,
}

// TeamRegions собирает регионы "<team>_base", "<team>_spawn" и т.д.
func (in *Instance) TeamRegions(team string) TeamRegions {
	tr := TeamRegions{Team: team, ItemShopDirection: "north", TeamShopDirection: "north"}

	bounds := func(suffix string) *vec.Bounds {
		r, ok := in.Region(team + suffix)
		if !ok {
			return nil
		}
		b := r.Bounds
		return &b
	}
	tr.Base = bounds("_base")
	tr.Spawn = bounds("_spawn")
	tr.Bed = bounds("_bed")
	tr.Chest = bounds("_chest")
	tr.ItemShop = bounds("_item_shop")
	tr.TeamShop = bounds("_team_shop")

	if r, ok := in.Region(team + "_item_shop"); ok {
		tr.ItemShopDirection = directionOf(r.Meta("direction", ""))
	}
	if r, ok := in.Region(team + "_team_shop"); ok {
		tr.TeamShopDirection = directionOf(r.Meta("direction", ""))
	}
	return tr
}

// Teams имена команд, для которых в карте есть регион "<team>_spawn"
func (in *Instance) Teams() []string {
	var out []string
	for _, name := range in.RegionNames() {
		if team, ok := strings.CutSuffix(name, "_spawn"); ok && team != "diamond" && team != "emerald" {
			out = append(out, team)
		}
	}
	return out
}

// directionOf разбирает направление без учёта регистра, неизвестное даёт north
func directionOf(s string) string {
	s = strings.ToLower(s)
	if directions[s] {
		return s
	}
	return "north"
}
