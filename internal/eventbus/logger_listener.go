package eventbus

import (
	"context"

	"github.com/annel0/arena-maps/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в лог.
// Функция неблокирующая.
func StartLoggingListener(ctx context.Context, bus EventBus) error {
	_, err := bus.Subscribe(ctx, Filter{}, func(ctx context.Context, ev *Envelope) {
		if me, err := DecodeMapEvent(ev); err == nil {
			logging.Debug("[EventBus] %s %s %s:%s src=%s chunks=%d bytes=%d",
				ev.ID, ev.EventType, me.Namespace, me.Path, ev.Source, me.Chunks, me.Bytes)
			return
		}
		logging.Debug("[EventBus] %s %s src=%s prio=%d size=%dB", ev.ID, ev.EventType, ev.Source, ev.Priority, len(ev.Payload))
	})
	if err != nil {
		return err
	}
	logging.Info("🪵 LoggingListener: подписка на все события активирована")
	return nil
}
