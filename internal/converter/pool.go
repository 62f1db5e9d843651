// Package converter turns decoded scene objects into render views on a
// pool of worker goroutines.
package converter

import (
	"context"
	"sync"
	"sync/atomic"

	"geoview/internal/profiling"
	"geoview/internal/renderview"
	"geoview/internal/rte"
	"geoview/internal/scene"
	"geoview/internal/worldtree"
)

// Job is a conversion request. The result goes to Results.
type Job struct {
	Object  *scene.Object
	Node    *worldtree.Node
	Results chan<- Result
}

// Result carries the converted view, or the error that prevented it.
type Result struct {
	Node       *worldtree.Node
	RenderView *renderview.RenderView
	Err        error
}

// Convert builds the render view of obj with its RTE split filled in.
func Convert(obj *scene.Object) (*renderview.RenderView, error) {
	defer profiling.Track("converter.Convert")()
	data, err := obj.RenderData()
	if err != nil {
		return nil, err
	}
	data.Geometry.PositionsHigh, data.Geometry.PositionsLow = rte.SplitPositions(data.Geometry.Positions)
	return renderview.New(data), nil
}

// WorkerPool manages the conversion goroutines.
type WorkerPool struct {
	jobQueue  chan Job
	workers   int
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	converted atomic.Int64
	failed    atomic.Int64
}

// NewWorkerPool starts workers goroutines reading from a queue of
// queueSize jobs.
func NewWorkerPool(workers int, queueSize int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	pool := &WorkerPool{
		jobQueue: make(chan Job, queueSize),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}
	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker(i)
	}
	return pool
}

// SubmitJob queues job and reports false when the queue is full or the
// pool is shut down.
func (p *WorkerPool) SubmitJob(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

// SubmitJobBlocking waits for queue space, giving up when ctx or the pool
// is done.
func (p *WorkerPool) SubmitJobBlocking(ctx context.Context, job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.jobQueue <- job:
		return true
	case <-ctx.Done():
		return false
	case <-p.ctx.Done():
		return false
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			rv, err := Convert(job.Object)
			if err != nil {
				p.failed.Add(1)
			} else {
				p.converted.Add(1)
			}
			select {
			case job.Results <- Result{Node: job.Node, RenderView: rv, Err: err}:
			case <-p.ctx.Done():
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// Shutdown stops the workers and waits for them. Queued jobs are dropped.
func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

// GetQueueLength returns the number of jobs waiting.
func (p *WorkerPool) GetQueueLength() int {
	return len(p.jobQueue)
}

// Workers returns the goroutine count.
func (p *WorkerPool) Workers() int { return p.workers }

// Stats returns how many jobs converted and failed so far.
func (p *WorkerPool) Stats() (converted, failed int64) {
	return p.converted.Load(), p.failed.Load()
}
