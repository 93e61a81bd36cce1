package workers

import (
	"hash/fnv"
	"sync"

	"github.com/profai/profai-backend/internal/logger"
)

type job struct {
	userID string
	run    func()
}

// Pool runs profile-refresh jobs with per-user ordering: every job for a
// given user id hashes to the same queue, so read-modify-write updates for
// one learner never interleave. Jobs for different users run concurrently.
type Pool struct {
	queues []chan job
	wg     sync.WaitGroup
	log    *logger.Logger
}

func NewPool(n int, log *logger.Logger) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{
		queues: make([]chan job, n),
		log:    log,
	}

	for i := 0; i < n; i++ {
		ch := make(chan job, 100)
		p.queues[i] = ch

		p.wg.Add(1)
		go func(id int, q <-chan job) {
			defer p.wg.Done()
			for j := range q {
				p.log.Debug("processing profile refresh", "worker", id, "userId", j.userID)
				j.run()
			}
		}(i, ch)
	}

	return p
}

// Dispatch enqueues run on the queue owned by userID's hash. Blocks if that
// queue is full; backpressure is preferable to reordering.
func (p *Pool) Dispatch(userID string, run func()) {
	h := fnv.New32a()
	h.Write([]byte(userID))
	p.queues[int(h.Sum32())%len(p.queues)] <- job{userID: userID, run: run}
}

// Stop closes the queues and waits for in-flight jobs to drain.
func (p *Pool) Stop() {
	for _, q := range p.queues {
		close(q)
	}
	p.wg.Wait()
}
