package eventbus

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Envelope описывает универсальный контейнер события.
type Envelope struct {
	ID            string            // Глобально уникальный идентификатор (UUID).
	Timestamp     time.Time         // Время создания события (UTC).
	Source        string            // Идентификатор узла-источника.
	EventType     string            // Тип события (MapSaved, MapLoaded…).
	Version       int               // Схема полезной нагрузки.
	CorrelationID string            // Для связывания цепочек.
	Priority      int               // 0=Low … 9=Critical (для backpressure).
	Payload       []byte            // JSON полезной нагрузки.
	Metadata      map[string]string // Произвольные метаданные.
}

// NewEnvelope создаёт конверт с новым UUID и текущим временем
func NewEnvelope(eventType, source string, priority int, payload []byte) *Envelope {
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: eventType,
		Version:   1,
		Priority:  priority,
		Payload:   payload,
	}
}

// Filter позволяет подписаться только на нужные события.
type Filter struct {
	Types   []string // Пустой список: все типы.
	Sources []string // Пустой список: все источники.
}

// Subscription возвращается при подписке; позволяет отписаться.
type Subscription interface {
	Unsubscribe()
}

// Handler потребляет события.
type Handler func(ctx context.Context, ev *Envelope)

// Stats агрегированные метрики шины.
type Stats struct {
	Published uint64
	Consumed  uint64
	Dropped   uint64
	InFlight  int
}

// EventBus абстракция шины событий (in-memory или JetStream)
type EventBus interface {
	Publish(ctx context.Context, ev *Envelope) error
	Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error)
	Metrics() Stats
	Close() error
}

//================ In-Memory implementation =================//

type memoryBus struct {
	mu          sync.RWMutex
	subscribers map[int]subscriber
	nextID      int
	stats       Stats
	buffer      chan *Envelope
	closeOnce   sync.Once
	done        chan struct{}
}

type subscriber struct {
	filter  Filter
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewMemoryBus создаёт in-memory шину с указанным буфером.
// Подписчики вызываются последовательно в порядке публикации.
func NewMemoryBus(capacity int) EventBus {
	if capacity <= 0 {
		capacity = 64
	}
	mb := &memoryBus{
		subscribers: make(map[int]subscriber),
		buffer:      make(chan *Envelope, capacity),
		done:        make(chan struct{}),
	}
	go mb.dispatchLoop()
	return mb
}

func (mb *memoryBus) Publish(ctx context.Context, ev *Envelope) error {
	select {
	case <-mb.done:
		return ErrBusClosed
	default:
	}

	select {
	case mb.buffer <- ev:
		mb.mu.Lock()
		mb.stats.Published++
		mb.mu.Unlock()
		return nil
	default:
		// Буфер заполнен: низкий приоритет (<5) отбрасываем
		if ev.Priority < 5 {
			mb.mu.Lock()
			mb.stats.Dropped++
			mb.mu.Unlock()
			return nil
		}
		select {
		case mb.buffer <- ev:
			mb.mu.Lock()
			mb.stats.Published++
			mb.mu.Unlock()
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-mb.done:
			return ErrBusClosed
		}
	}
}

func (mb *memoryBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	mb.mu.Lock()
	id := mb.nextID
	mb.nextID++
	cctx, cancel := context.WithCancel(ctx)
	mb.subscribers[id] = subscriber{filter: f, handler: h, ctx: cctx, cancel: cancel}
	mb.mu.Unlock()

	return &memSub{bus: mb, id: id}, nil
}

func (mb *memoryBus) Metrics() Stats {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	s := mb.stats
	s.InFlight = len(mb.buffer)
	return s
}

// Close останавливает рассылку и отменяет всех подписчиков
func (mb *memoryBus) Close() error {
	mb.closeOnce.Do(func() {
		close(mb.done)
		mb.mu.Lock()
		for id, sub := range mb.subscribers {
			sub.cancel()
			delete(mb.subscribers, id)
		}
		mb.mu.Unlock()
	})
	return nil
}

// dispatchLoop рассылает события подписчикам.
func (mb *memoryBus) dispatchLoop() {
	for {
		select {
		case <-mb.done:
			return
		case ev := <-mb.buffer:
			mb.dispatch(ev)
		}
	}
}

func (mb *memoryBus) dispatch(ev *Envelope) {
	mb.mu.RLock()
	subs := make([]subscriber, 0, len(mb.subscribers))
	for _, sub := range mb.subscribers {
		subs = append(subs, sub)
	}
	mb.mu.RUnlock()

	for _, sub := range subs {
		if !matchFilter(ev, sub.filter) || sub.ctx.Err() != nil {
			continue
		}
		sub.handler(sub.ctx, ev)
		mb.mu.Lock()
		mb.stats.Consumed++
		mb.mu.Unlock()
	}
}

func matchFilter(ev *Envelope, f Filter) bool {
	match := func(val string, arr []string) bool {
		if len(arr) == 0 {
			return true
		}
		for _, v := range arr {
			if v == val {
				return true
			}
		}
		return false
	}
	return match(ev.EventType, f.Types) && match(ev.Source, f.Sources)
}

type memSub struct {
	bus *memoryBus
	id  int
}

func (s *memSub) Unsubscribe() {
	s.bus.mu.Lock()
	if sub, ok := s.bus.subscribers[s.id]; ok {
		sub.cancel()
		delete(s.bus.subscribers, s.id)
	}
	s.bus.mu.Unlock()
}
