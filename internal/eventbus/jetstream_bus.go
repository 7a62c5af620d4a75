package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	nats "github.com/nats-io/nats.go"
)

// JetStreamBus реализует EventBus поверх NATS JetStream.
// Нужен для кластера: события сохранения карт доходят до всех узлов.
type JetStreamBus struct {
	nc        *nats.Conn
	js        nats.JetStreamContext
	stream    string
	subject   string
	published uint64
	consumed  uint64
	dropped   uint64
}

// NewJetStreamBus подключается к NATS и гарантирует наличие стрима.
// url: nats://127.0.0.1:4222, stream: "MAPS".
func NewJetStreamBus(url, stream string, retention time.Duration) (*JetStreamBus, error) {
	if stream == "" {
		stream = "MAPS"
	}
	subject := "maps"

	nc, err := nats.Connect(url, nats.Name("arena-maps"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Drain()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if _, err = js.StreamInfo(stream); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:      stream,
			Subjects:  []string{subject + ".*"},
			Retention: nats.LimitsPolicy,
			MaxAge:    retention,
			Storage:   nats.FileStorage,
		})
		if err != nil {
			nc.Drain()
			return nil, fmt.Errorf("add stream: %w", err)
		}
	}

	return &JetStreamBus{nc: nc, js: js, stream: stream, subject: subject}, nil
}

// Publish сериализует Envelope в JSON и публикует в subject maps.<type>.
func (jb *JetStreamBus) Publish(ctx context.Context, ev *Envelope) error {
	data, err := json.Marshal(ev)
	if err != nil {
		atomic.AddUint64(&jb.dropped, 1)
		return err
	}
	if _, err = jb.js.Publish(jb.subject+"."+ev.EventType, data, nats.Context(ctx)); err != nil {
		atomic.AddUint64(&jb.dropped, 1)
		return err
	}
	atomic.AddUint64(&jb.published, 1)
	return nil
}

// Subscribe создаёт consumer и вызывает handler асинхронно.
// Подписка снимается при отмене ctx.
func (jb *JetStreamBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	subj := jb.subject + ".*"
	if len(f.Types) == 1 {
		subj = jb.subject + "." + f.Types[0]
	}

	durable := nats.Durable("sub_" + uuid.NewString()[:8])

	natSub, err := jb.js.Subscribe(subj, func(msg *nats.Msg) {
		var ev Envelope
		if err := json.Unmarshal(msg.Data, &ev); err == nil && matchFilter(&ev, f) {
			h(ctx, &ev)
			atomic.AddUint64(&jb.consumed, 1)
		}
		_ = msg.Ack()
	}, nats.ManualAck(), durable, nats.DeliverNew(), nats.AckWait(30*time.Second))
	if err != nil {
		return nil, err
	}

	sub := &jetSub{s: natSub}
	go func() {
		<-ctx.Done()
		sub.Unsubscribe()
	}()
	return sub, nil
}

// jetSub обёртка вокруг *nats.Subscription
type jetSub struct {
	s    *nats.Subscription
	done atomic.Bool
}

func (j *jetSub) Unsubscribe() {
	if j.done.CompareAndSwap(false, true) {
		_ = j.s.Unsubscribe()
	}
}

// Metrics возвращает текущие метрики.
func (jb *JetStreamBus) Metrics() Stats {
	return Stats{
		Published: atomic.LoadUint64(&jb.published),
		Consumed:  atomic.LoadUint64(&jb.consumed),
		Dropped:   atomic.LoadUint64(&jb.dropped),
	}
}

// Close дренирует соединение
func (jb *JetStreamBus) Close() error {
	return jb.nc.Drain()
}
