/*
 * Copyright 2026 unify Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package offload runs blocking work on a fixed-size worker pool with FIFO
// admission. It backs the ExecBlocking side of the executor contract for
// the shipped adapters.
package offload

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	queuepkg "github.com/Workiva/go-datastructures/queue"
	"github.com/panjf2000/ants/v2"
	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/unifyrt/unify/internal/logger"
)

const (
	offloadsPerCPU = 4
	minPoolSize    = 4

	// Queue depth beyond workers × this factor logs a saturation warning.
	queueWarnFactor = 8
)

// DefaultSize derives the worker bound from the physical CPU count.
func DefaultSize() int {
	n, err := cpu.Counts(false)
	if err != nil || n <= 0 {
		n = runtime.NumCPU()
	}
	size := n * offloadsPerCPU
	if size < minPoolSize {
		size = minPoolSize
	}
	return size
}

// Pool bounds concurrently running blocking offloads and queues the excess.
//
// Admission goes through an unbounded FIFO queue drained by a single
// dispatcher goroutine, which hands work to the worker pool with a blocking
// submit. The single dispatcher is what makes admission order execution
// order: work never overtakes earlier work while waiting for a free worker.
type Pool struct {
	workers   *ants.Pool
	pending   *queuepkg.Queue
	done      chan struct{}
	warnDepth int64
	warned    atomic.Bool
}

// NewPool creates a pool with the given worker bound. size 0 selects
// DefaultSize.
func NewPool(size int) (*Pool, error) {
	if size == 0 {
		size = DefaultSize()
	}
	if size < 0 {
		return nil, errors.New("offload: pool size must be positive")
	}
	workers, err := ants.NewPool(size, ants.WithPanicHandler(func(r interface{}) {
		logger.Errorf("offload: worker panic: %v", r)
	}))
	if err != nil {
		return nil, err
	}
	p := &Pool{
		workers:   workers,
		pending:   queuepkg.New(int64(size)),
		done:      make(chan struct{}),
		warnDepth: int64(size) * queueWarnFactor,
	}
	go p.dispatch()
	return p, nil
}

// Submit queues run for execution. It never blocks the caller; run starts
// once it reaches the head of the queue and a worker is free. After Close,
// Submit fails.
func (p *Pool) Submit(run func()) error {
	if run == nil {
		return errors.New("offload: nil task")
	}
	if err := p.pending.Put(run); err != nil {
		return fmt.Errorf("offload: submit: %w", err)
	}
	offloadsAdmitted.Inc()
	n := p.pending.Len()
	queueDepth.Set(float64(n))
	if n >= p.warnDepth {
		if p.warned.CompareAndSwap(false, true) {
			logger.Warnf("offload: %d tasks queued behind %d workers", n, p.Cap())
		}
	} else if n <= p.warnDepth/2 {
		p.warned.Store(false)
	}
	return nil
}

func (p *Pool) dispatch() {
	defer close(p.done)
	for {
		items, err := p.pending.Get(1)
		if err != nil {
			// Disposed by Close.
			return
		}
		queueDepth.Set(float64(p.pending.Len()))
		run, ok := items[0].(func())
		if !ok {
			logger.Errorf("offload: unexpected queue element type %T", items[0])
			continue
		}
		if err := p.workers.Submit(run); err != nil {
			// Admitted work still runs, just not on a pool worker.
			logger.Warnf("offload: worker pool rejected task, running inline: %v", err)
			run()
		}
	}
}

// Running reports the number of offloads currently executing.
func (p *Pool) Running() int { return p.workers.Running() }

// Cap reports the worker bound.
func (p *Pool) Cap() int { return p.workers.Cap() }

// Pending reports the number of queued offloads not yet handed to a worker.
func (p *Pool) Pending() int { return int(p.pending.Len()) }

// Close stops admission, discards work still waiting in the queue, waits
// for the dispatcher to drain, and releases the workers. Offloads already
// handed to a worker run to completion.
func (p *Pool) Close() {
	p.pending.Dispose()
	<-p.done
	p.workers.Release()
	queueDepth.Set(0)
}
