package async

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"
)

var ErrQueueClosed = errors.New("async: queue closed")

const defaultLimit = 4

// KeyedQueue corre las operaciones de una misma clave (un caso) en el orden
// en que se enviaron. Claves distintas corren en paralelo, hasta limit a la vez.
type KeyedQueue struct {
	mu     sync.Mutex
	tails  map[string]chan struct{}
	closed bool

	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

func NewKeyedQueue(limit int64) *KeyedQueue {
	if limit <= 0 {
		limit = defaultLimit
	}
	return &KeyedQueue{
		tails: make(map[string]chan struct{}),
		sem:   semaphore.NewWeighted(limit),
	}
}

// Submit encola fn detrás de la última operación de key. El canal recibe
// exactamente un valor. Un ctx cancelado no adelanta a la siguiente de la
// cola: se espera a la anterior y recién ahí se informa ctx.Err().
func (q *KeyedQueue) Submit(ctx context.Context, key string, fn func(ctx context.Context) error) <-chan error {
	res := make(chan error, 1)

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		res <- ErrQueueClosed
		return res
	}
	prev := q.tails[key]
	done := make(chan struct{})
	q.tails[key] = done
	q.wg.Add(1)
	q.mu.Unlock()

	go func() {
		defer q.wg.Done()
		defer q.finish(key, done)

		if prev != nil {
			<-prev
		}
		if err := ctx.Err(); err != nil {
			res <- err
			return
		}
		if err := q.sem.Acquire(ctx, 1); err != nil {
			res <- err
			return
		}
		defer q.sem.Release(1)

		res <- fn(ctx)
	}()

	return res
}

func (q *KeyedQueue) finish(key string, done chan struct{}) {
	q.mu.Lock()
	if q.tails[key] == done {
		delete(q.tails, key)
	}
	q.mu.Unlock()
	close(done)
}

// Close rechaza nuevos envíos y espera a los que ya están en cola.
func (q *KeyedQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wg.Wait()
}
