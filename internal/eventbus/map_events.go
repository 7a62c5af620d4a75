package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrBusClosed возвращается при публикации в закрытую шину
var ErrBusClosed = errors.New("шина событий закрыта")

// Типы событий карт
const (
	MapLoaded    = "MapLoaded"
	MapSaved     = "MapSaved"
	MapDeleted   = "MapDeleted"
	MapGenerated = "MapGenerated"
)

// MapEvent полезная нагрузка событий карт
type MapEvent struct {
	Namespace string `json:"namespace"`
	Path      string `json:"path"`
	Chunks    int    `json:"chunks,omitempty"`
	Bytes     int    `json:"bytes,omitempty"`
	Warnings  int    `json:"warnings,omitempty"`
}

// PublishMapEvent публикует событие карты. bus может быть nil.
func PublishMapEvent(ctx context.Context, bus EventBus, eventType, source string, ev MapEvent) error {
	if bus == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("ошибка сериализации %s: %w", eventType, err)
	}

	// Сохранения важнее для инвалидации кэшей на других узлах
	priority := 3
	if eventType == MapSaved || eventType == MapDeleted {
		priority = 7
	}
	return bus.Publish(ctx, NewEnvelope(eventType, source, priority, payload))
}

// DecodeMapEvent извлекает MapEvent из конверта
func DecodeMapEvent(ev *Envelope) (MapEvent, error) {
	var out MapEvent
	if err := json.Unmarshal(ev.Payload, &out); err != nil {
		return MapEvent{}, fmt.Errorf("ошибка разбора %s: %w", ev.EventType, err)
	}
	return out, nil
}
