// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool runs index ranges on a fixed set of long-lived
// goroutines. The output driver uses it to evaluate disjoint bands of
// destination rows, and the block kernels to split large buffers into
// independent chunks.
//
// A Pool is created once and reused:
//
//	pool := workerpool.New(0) // GOMAXPROCS workers
//	defer pool.Close()
//
//	pool.ParallelFor(rows, func(lo, hi int) {
//	    for r := lo; r < hi; r++ {
//	        evaluateRow(r)
//	    }
//	})
//
// Callers guarantee that the ranges they are handed touch disjoint memory;
// the pool adds no synchronization beyond waiting for completion.
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool owns numWorkers goroutines that pull tasks from a shared queue.
type Pool struct {
	numWorkers int
	tasks      chan task
	closeOnce  sync.Once
	closed     atomic.Bool
}

type task struct {
	run  func()
	done *sync.WaitGroup
}

// New starts a pool with numWorkers goroutines, or GOMAXPROCS of them when
// numWorkers <= 0.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		numWorkers: numWorkers,
		tasks:      make(chan task, 2*numWorkers),
	}
	for range numWorkers {
		go p.loop()
	}
	return p
}

func (p *Pool) loop() {
	for t := range p.tasks {
		t.run()
		t.done.Done()
	}
}

// NumWorkers returns the number of worker goroutines, 1 for a nil pool.
func (p *Pool) NumWorkers() int {
	if p == nil {
		return 1
	}
	return p.numWorkers
}

// Close stops the workers after queued tasks finish. It is idempotent.
// Parallel calls on a closed pool run on the calling goroutine. Close must
// not race with ParallelFor or ParallelForBatched calls.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.tasks)
	})
}

// sequential reports whether work over n items should run inline.
func (p *Pool) sequential(n int) bool {
	return p == nil || p.closed.Load() || p.numWorkers == 1 || n == 1
}

// ParallelFor splits [0, n) into at most NumWorkers contiguous ranges and
// calls fn(lo, hi) once per range. It returns when every call has returned.
// A nil pool runs fn(0, n) inline.
func (p *Pool) ParallelFor(n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if p.sequential(n) {
		fn(0, n)
		return
	}
	parts := min(p.numWorkers, n)
	size := (n + parts - 1) / parts

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += size {
		hi := min(lo+size, n)
		wg.Add(1)
		p.tasks <- task{run: func() { fn(lo, hi) }, done: &wg}
	}
	wg.Wait()
}

// ParallelForBatched hands out [0, n) in batches of batchSize, claimed
// dynamically by the workers. Use it when the cost per item varies. fn may be
// called with a final batch shorter than batchSize.
func (p *Pool) ParallelForBatched(n, batchSize int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	batchSize = max(batchSize, 1)
	batches := (n + batchSize - 1) / batchSize
	if p.sequential(batches) {
		fn(0, n)
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	workers := min(p.numWorkers, batches)
	wg.Add(workers)
	for range workers {
		p.tasks <- task{
			run: func() {
				for {
					lo := int(next.Add(1)-1) * batchSize
					if lo >= n {
						return
					}
					fn(lo, min(lo+batchSize, n))
				}
			},
			done: &wg,
		}
	}
	wg.Wait()
}
