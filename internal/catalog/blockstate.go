package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultNamespace пространство имён блоков без явного префикса
const DefaultNamespace = "minecraft"

// BlockState значение вокселя: имя блока и канонически отсортированные свойства.
// Сравнимо и годится как ключ карты.
type BlockState struct {
	Name       string
	Properties string // "k=v,k2=v2", ключи по возрастанию
}

// Базовые состояния, которыми пользуется генератор
var (
	Air          = BlockState{Name: "minecraft:air"}
	Stone        = BlockState{Name: "minecraft:stone"}
	EndStone     = BlockState{Name: "minecraft:end_stone"}
	Planks       = BlockState{Name: "minecraft:oak_planks"}
	Sandstone    = BlockState{Name: "minecraft:sandstone"}
	Obsidian     = BlockState{Name: "minecraft:obsidian"}
	Chest        = BlockState{Name: "minecraft:chest", Properties: "facing=north"}
	DiamondBlock = BlockState{Name: "minecraft:diamond_block"}
	EmeraldBlock = BlockState{Name: "minecraft:emerald_block"}
	Grass        = BlockState{Name: "minecraft:grass_block"}
	Dirt         = BlockState{Name: "minecraft:dirt"}
	CraftTable   = BlockState{Name: "minecraft:crafting_table"}
	Enchanting   = BlockState{Name: "minecraft:enchanting_table"}
)

// Wool возвращает шерсть цвета команды
func Wool(color string) BlockState {
	return BlockState{Name: DefaultNamespace + ":" + color + "_wool"}
}

// Bed возвращает часть кровати цвета команды
func Bed(color, facing, part string) BlockState {
	return NewBlockState(DefaultNamespace+":"+color+"_bed", map[string]string{
		"facing": facing,
		"part":   part,
	})
}

// NewBlockState создаёт состояние из имени и набора свойств
func NewBlockState(name string, props map[string]string) BlockState {
	if !strings.Contains(name, ":") {
		name = DefaultNamespace + ":" + name
	}
	if len(props) == 0 {
		return BlockState{Name: name}
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + props[k]
	}
	return BlockState{Name: name, Properties: strings.Join(parts, ",")}
}

// ParseBlockState разбирает строку вида "ns:name[k=v,...]"
func ParseBlockState(s string) (BlockState, error) {
	s = strings.TrimSpace(s)
	name, rest, hasProps := strings.Cut(s, "[")
	if name == "" {
		return BlockState{}, fmt.Errorf("пустое имя блока в %q", s)
	}
	if !hasProps {
		return NewBlockState(name, nil), nil
	}
	if !strings.HasSuffix(rest, "]") {
		return BlockState{}, fmt.Errorf("нет закрывающей скобки в %q", s)
	}
	rest = strings.TrimSuffix(rest, "]")

	props := make(map[string]string)
	if rest != "" {
		for _, kv := range strings.Split(rest, ",") {
			k, v, ok := strings.Cut(kv, "=")
			if !ok || k == "" {
				return BlockState{}, fmt.Errorf("неверное свойство %q в %q", kv, s)
			}
			props[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return NewBlockState(name, props), nil
}

// Property возвращает значение свойства
func (b BlockState) Property(key string) (string, bool) {
	if b.Properties == "" {
		return "", false
	}
	for _, kv := range strings.Split(b.Properties, ",") {
		k, v, _ := strings.Cut(kv, "=")
		if k == key {
			return v, true
		}
	}
	return "", false
}

// IsAir сообщает, что это пустой блок
func (b BlockState) IsAir() bool { return b == Air }

// String возвращает каноническую запись "ns:name[k=v,...]"
func (b BlockState) String() string {
	if b.Properties == "" {
		return b.Name
	}
	return b.Name + "[" + b.Properties + "]"
}
