// Package storage содержит бэкенды mapdata.BlobStore: файловую систему, BadgerDB,
// MariaDB, MongoDB, память и кэш Redis поверх любого из них.
package storage

import (
	"context"
	"sort"
	"strings"

	"github.com/annel0/arena-maps/internal/mapdata"
)

// Lister перечисляет сохранённые карты. Реализуется всеми бэкендами пакета.
type Lister interface {
	List(ctx context.Context) ([]mapdata.Identifier, error)
}

// blobKey возвращает ключ вида "map:<namespace>:<path>" для KV-хранилищ
func blobKey(id mapdata.Identifier) string {
	return "map:" + id.Namespace + ":" + id.Path
}

// parseBlobKey обратна blobKey
func parseBlobKey(key string) (mapdata.Identifier, bool) {
	rest, ok := strings.CutPrefix(key, "map:")
	if !ok {
		return mapdata.Identifier{}, false
	}
	ns, path, ok := strings.Cut(rest, ":")
	if !ok {
		return mapdata.Identifier{}, false
	}
	id, err := mapdata.NewIdentifier(ns, path)
	if err != nil {
		return mapdata.Identifier{}, false
	}
	return id, true
}

// splitRel делит относительный путь каталога "ns/a/b" на пространство имён и путь
func splitRel(rel string) (ns, path string, ok bool) {
	ns, path, ok = strings.Cut(rel, "/")
	if !ok || ns == "" || path == "" {
		return "", "", false
	}
	return ns, path, true
}

func sortIdentifiers(ids []mapdata.Identifier) {
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Namespace != ids[j].Namespace {
			return ids[i].Namespace < ids[j].Namespace
		}
		return ids[i].Path < ids[j].Path
	})
}
