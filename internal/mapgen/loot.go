package mapgen

import (
	"encoding/json"
	"math/rand"
)

// LootEntry предмет в сундуке
type LootEntry struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
	Slot  int    `json:"slot"`
}

// ChestLoot полезная нагрузка сундука команды
type ChestLoot struct {
	Team  string      `json:"team"`
	Items []LootEntry `json:"items"`
}

var lootTable = []struct {
	item     string
	min, max int
}{
	{"minecraft:iron_ingot", 4, 16},
	{"minecraft:gold_ingot", 0, 4},
	{"minecraft:white_wool", 8, 32},
	{"minecraft:stone_sword", 0, 1},
	{"minecraft:bread", 2, 6},
}

// rollLoot собирает содержимое сундука; пустые позиции пропускаются
func rollLoot(rng *rand.Rand, team string) ChestLoot {
	loot := ChestLoot{Team: team, Items: []LootEntry{}}
	slot := 0
	for _, e := range lootTable {
		n := e.min + rng.Intn(e.max-e.min+1)
		if n == 0 {
			continue
		}
		loot.Items = append(loot.Items, LootEntry{Item: e.item, Count: n, Slot: slot})
		slot++
	}
	return loot
}

// DecodeChestLoot разбирает полезную нагрузку сундука
func DecodeChestLoot(payload []byte) (ChestLoot, error) {
	var loot ChestLoot
	err := json.Unmarshal(payload, &loot)
	return loot, err
}
