package mapdata

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultNamespace используется, если в идентификаторе не указано пространство имён
const DefaultNamespace = "arena"

// Identifier адресует карту парой (namespace, path)
type Identifier struct {
	Namespace string
	Path      string
}

// NewIdentifier создаёт идентификатор и проверяет его
func NewIdentifier(namespace, path string) (Identifier, error) {
	id := Identifier{Namespace: namespace, Path: path}
	if err := id.Validate(); err != nil {
		return Identifier{}, err
	}
	return id, nil
}

// ParseIdentifier разбирает строку вида "namespace:path".
// Без двоеточия используется пространство имён по умолчанию.
func ParseIdentifier(s string) (Identifier, error) {
	ns, path, found := strings.Cut(s, ":")
	if !found {
		ns, path = DefaultNamespace, s
	}
	return NewIdentifier(ns, path)
}

// MustIdentifier как ParseIdentifier, но паникует при ошибке
func MustIdentifier(s string) Identifier {
	id, err := ParseIdentifier(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Validate проверяет допустимые символы: [a-z0-9_.-] и '/' в пути
func (id Identifier) Validate() error {
	if id.Namespace == "" || id.Path == "" {
		return fmt.Errorf("пустой идентификатор карты %q", id.String())
	}
	for _, r := range id.Namespace {
		if !validRune(r) {
			return fmt.Errorf("недопустимый символ %q в пространстве имён %q", r, id.Namespace)
		}
	}
	for _, r := range id.Path {
		if r != '/' && !validRune(r) {
			return fmt.Errorf("недопустимый символ %q в пути %q", r, id.Path)
		}
	}
	for _, part := range strings.Split(id.Path, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("недопустимый сегмент пути в %q", id.Path)
		}
	}
	return nil
}

func validRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.'
}

// String возвращает "namespace:path"
func (id Identifier) String() string {
	return id.Namespace + ":" + id.Path
}

// ResourcePath возвращает путь <root>/<namespace>/<path>/map.<ext>
func (id Identifier) ResourcePath(root, ext string) string {
	parts := append([]string{root, id.Namespace}, strings.Split(id.Path, "/")...)
	parts = append(parts, "map."+ext)
	return filepath.Join(parts...)
}
