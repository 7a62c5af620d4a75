package workerpool

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed возвращается задачам, отправленным в остановленный пул
var ErrPoolClosed = errors.New("пул воркеров остановлен")

type job struct {
	run  func()
	fail func(error)
}

// Pool ограниченный пул воркеров для фоновых задач (загрузка карт)
type Pool struct {
	workerCount  int
	jobs         chan job
	shutdownChan chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	// Статистика
	submitted atomic.Int64
	completed atomic.Int64
	rejected  atomic.Int64
}

// New создаёт пул и запускает воркеров.
// workers <= 0 означает runtime.NumCPU(), queue <= 0 означает workers*2.
func New(workers, queue int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queue <= 0 {
		queue = workers * 2
	}

	p := &Pool{
		workerCount:  workers,
		jobs:         make(chan job, queue),
		shutdownChan: make(chan struct{}),
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

// Workers возвращает количество воркеров
func (p *Pool) Workers() int { return p.workerCount }

// worker выполняет задачи из очереди
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.shutdownChan:
			return
		case j := <-p.jobs:
			j.run()
			p.completed.Add(1)
		}
	}
}

// enqueue ставит задачу в очередь, блокируясь при заполненной очереди
func (p *Pool) enqueue(j job) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.rejected.Add(1)
		j.fail(ErrPoolClosed)
		return
	}

	select {
	case p.jobs <- j:
		p.submitted.Add(1)
	case <-p.shutdownChan:
		p.rejected.Add(1)
		j.fail(ErrPoolClosed)
	}
}

// Stop останавливает воркеров. Задачи, оставшиеся в очереди, завершаются ErrPoolClosed.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.shutdownChan)
		p.wg.Wait()

		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()

		for {
			select {
			case j := <-p.jobs:
				p.rejected.Add(1)
				j.fail(ErrPoolClosed)
			default:
				return
			}
		}
	})
}

// Stats возвращает статистику пула
type Stats struct {
	Workers   int
	Queued    int
	Submitted int64
	Completed int64
	Rejected  int64
}

// GetStats возвращает текущую статистику
func (p *Pool) GetStats() Stats {
	return Stats{
		Workers:   p.workerCount,
		Queued:    len(p.jobs),
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Rejected:  p.rejected.Load(),
	}
}

// String форматирует статистику для логов
func (s Stats) String() string {
	return fmt.Sprintf("workers=%d queued=%d submitted=%d completed=%d rejected=%d",
		s.Workers, s.Queued, s.Submitted, s.Completed, s.Rejected)
}

// Future результат задачи, выполняемой в пуле
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Completed возвращает уже завершённый future
func Completed[T any](value T, err error) *Future[T] {
	f := newFuture[T]()
	f.complete(value, err)
	return f
}

func (f *Future[T]) complete(value T, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// Done закрывается, когда задача завершена
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await ждёт результат или отмену ctx. Отмена ctx не прерывает саму задачу.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result блокируется до завершения задачи
func (f *Future[T]) Result() (T, error) {
	<-f.done
	return f.value, f.err
}

// Submit отправляет fn в пул и возвращает future с её результатом.
// Паника внутри fn превращается в ошибку.
func Submit[T any](p *Pool, fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	var zero T

	p.enqueue(job{
		run: func() {
			defer func() {
				if r := recover(); r != nil {
					f.complete(zero, fmt.Errorf("паника в задаче пула: %v", r))
				}
			}()
			v, err := fn()
			f.complete(v, err)
		},
		fail: func(err error) {
			f.complete(zero, err)
		},
	})
	return f
}
