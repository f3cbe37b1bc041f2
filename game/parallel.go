package game

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/pthm-cable/flock/systems"
)

// intent captures the steering computed from the snapshot, applied in the update phase.
type intent struct {
	VX, VY float32
	Avoid  systems.Avoidance
	Fatal  bool  // the bird's box touches a solid hitbox
	Fault  error // steering panicked or produced a non-finite velocity
}

// workerScratch holds per-worker reusable buffers.
type workerScratch struct {
	Cells     []int32
	Neighbors []systems.Neighbor
}

// workChunk represents a range of slots for a worker to process.
type workChunk struct {
	start, end int
}

// parallelState holds resources for parallel steering computation.
type parallelState struct {
	scratches  []workerScratch
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// newParallelState sizes the pool. workers 0 means GOMAXPROCS.
func newParallelState(workers int) *parallelState {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	scratches := make([]workerScratch, workers)
	for i := range scratches {
		scratches[i].Cells = make([]int32, 0, 64)
		scratches[i].Neighbors = make([]systems.Neighbor, 0, 16)
	}
	return &parallelState{
		numWorkers: workers,
		scratches:  scratches,
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(g *Game) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(g, i)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(g *Game, workerID int) {
	defer p.wg.Done()
	scratch := &p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			g.computeChunk(chunk.start, chunk.end, scratch)
			p.doneChan <- struct{}{}
		}
	}
}

// computeIntents fills g.intents for every snapshot slot.
// Steering reads only the snapshot and obstacles, so the split into chunks
// does not change the result.
func (g *Game) computeIntents() {
	n := len(g.states)
	if cap(g.intents) < n {
		g.intents = make([]intent, n)
	}
	g.intents = g.intents[:n]
	if n == 0 {
		return
	}

	if g.parallel.numWorkers == 1 || n < g.cfg.Physics.ParallelThreshold {
		g.computeChunk(0, n, &g.parallel.scratches[0])
		return
	}
	g.computeParallel(n)
}

// computeParallel dispatches work to the worker pool.
func (g *Game) computeParallel(n int) {
	if !g.parallel.running {
		g.parallel.startWorkers(g)
	}

	numWorkers := g.parallel.numWorkers
	chunkSize := (n + numWorkers - 1) / numWorkers

	chunksDispatched := 0
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		g.parallel.workChan <- workChunk{start: start, end: end}
		chunksDispatched++
	}

	for i := 0; i < chunksDispatched; i++ {
		<-g.parallel.doneChan
	}
}

// computeChunk processes a range of slots for a single worker.
func (g *Game) computeChunk(i0, i1 int, scratch *workerScratch) {
	for i := i0; i < i1; i++ {
		g.intents[i] = g.computeIntent(i, scratch)
	}
}

// computeIntent runs avoidance, the fatal hitbox test and flocking for one slot.
func (g *Game) computeIntent(i int, scratch *workerScratch) (in intent) {
	defer func() {
		if r := recover(); r != nil {
			in = intent{Fault: fmt.Errorf("steering panic: %v", r)}
		}
	}()

	s := &g.states[i]
	fp := &g.flock
	vx, vy := s.VX, s.VY

	in.Avoid = g.policy.Steer(s, g.obstacles)
	if in.Avoid.Ahead {
		vx, vy = systems.ApplyForce(vx, vy, in.Avoid.FX, in.Avoid.FY, in.Avoid.Weight, fp.ForceScale, fp.MaxSpeed, s.Heading)
	}

	if systems.CheckFatalCollision(s.Box(), g.obstacles) {
		in.Fatal = true
		return in
	}

	if !in.Avoid.Ahead {
		scratch.Cells = g.grid.QueryNeighbors(scratch.Cells[:0], s.X, s.Y)
		scratch.Neighbors = systems.NearestK(scratch.Neighbors[:0], int32(i), scratch.Cells, g.states, g.cfg.Flocking.NumNeighbors)
		vx, vy = systems.Flock(s, vx, vy, scratch.Neighbors, g.states, *fp)
	}

	if !systems.Finite(vx, vy) {
		return intent{Fault: fmt.Errorf("non-finite steering velocity (%v, %v)", vx, vy)}
	}
	in.VX, in.VY = vx, vy
	return in
}
