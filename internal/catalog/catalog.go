package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Catalog реестр известных имён блоков и кодек значений карты.
// В строгом режиме неизвестные имена при декодировании отклоняются.
type Catalog struct {
	mu     sync.RWMutex
	known  map[string]struct{}
	strict bool
}

// New создаёт каталог. Воздух зарегистрирован всегда.
func New(strict bool) *Catalog {
	c := &Catalog{known: make(map[string]struct{}), strict: strict}
	c.Register(Air.Name)
	return c
}

// Default каталог со всеми блоками, которые использует генератор арен
func Default() *Catalog {
	c := New(false)
	for _, b := range []BlockState{Stone, EndStone, Planks, Sandstone, Obsidian, Chest,
		DiamondBlock, EmeraldBlock, Grass, Dirt, CraftTable, Enchanting} {
		c.Register(b.Name)
	}
	return c
}

// Register добавляет имена блоков
func (c *Catalog) Register(names ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range names {
		if !strings.Contains(n, ":") {
			n = DefaultNamespace + ":" + n
		}
		c.known[n] = struct{}{}
	}
}

// Known проверяет, зарегистрировано ли имя
func (c *Catalog) Known(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.known[name]
	return ok
}

// Names возвращает зарегистрированные имена по возрастанию
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.known))
	for n := range c.known {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Strict сообщает, включён ли строгий режим
func (c *Catalog) Strict() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.strict
}

// Encode реализует mapdata.ValueCodec
func (c *Catalog) Encode(b BlockState) (string, error) {
	if c.Strict() && !c.Known(b.Name) {
		return "", fmt.Errorf("неизвестный блок %q", b.Name)
	}
	return b.String(), nil
}

// Decode реализует mapdata.ValueCodec
func (c *Catalog) Decode(id string) (BlockState, error) {
	b, err := ParseBlockState(id)
	if err != nil {
		return BlockState{}, err
	}
	if c.Strict() && !c.Known(b.Name) {
		return BlockState{}, fmt.Errorf("неизвестный блок %q", b.Name)
	}
	return b, nil
}

// Empty реализует mapdata.ValueCodec
func (c *Catalog) Empty() BlockState { return Air }

// catalogFile формат YAML-файла каталога
type catalogFile struct {
	Namespace string   `yaml:"namespace"`
	Strict    *bool    `yaml:"strict"`
	Blocks    []string `yaml:"blocks"`
}

// LoadYAML добавляет имена блоков из YAML-файла:
//
//	namespace: minecraft
//	strict: true
//	blocks: [stone, red_wool, "custom:reactor"]
func (c *Catalog) LoadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ошибка чтения каталога %s: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("ошибка разбора каталога %s: %w", path, err)
	}

	ns := file.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	names := make([]string, 0, len(file.Blocks))
	for _, b := range file.Blocks {
		if !strings.Contains(b, ":") {
			b = ns + ":" + b
		}
		names = append(names, b)
	}
	c.Register(names...)

	if file.Strict != nil {
		c.mu.Lock()
		c.strict = *file.Strict
		c.mu.Unlock()
	}
	return nil
}
