package pipeline

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
)

// Stats counts descriptor traffic of the most recent Run.
type Stats struct {
	Pipes   int // pipes created
	Dups    int // stdin/stdout installations into started children
	Spawned int // stages that started a process
	Live    int // pipe endpoints still open in the runner after Run
}

// Runner wires, starts and reaps the stages of one pipeline at a time. It is
// not safe for concurrent use.
type Runner struct {
	Spawner Spawner
	Stdin   *os.File // nil means os.Stdin
	Stdout  *os.File // nil means os.Stdout

	stats Stats
}

// Stats returns the counters of the last Run.
func (r *Runner) Stats() Stats { return r.stats }

// Run creates the N-1 pipes of p, spawns stages left to right and waits for
// every started stage. Statuses are returned in stage order for every stage
// that was spawned, including stages that failed before exec.
//
// If a spawn fails, every pipe end still held here is closed at once so the
// stages already running see EOF or EPIPE, those stages are reaped, and the
// error is wrapped in ErrPartialSpawn. ctx is checked between spawns only;
// running stages are never killed.
func (r *Runner) Run(ctx context.Context, p *Pipeline) ([]Status, error) {
	r.stats = Stats{}
	n := p.Len()
	if n == 0 {
		return nil, ErrEmptySegment
	}

	fds := newFDTable()
	defer func() {
		fds.releaseAll()
		r.stats.Live = fds.live()
	}()

	type pipeEnds struct{ r, w *os.File }
	pipes := make([]pipeEnds, n-1)
	for i := range pipes {
		pr, pw, err := fds.pipe()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPipeCreateFailed, err)
		}
		pipes[i] = pipeEnds{pr, pw}
		r.stats.Pipes++
	}

	procs := make([]*Process, 0, n)
	var spawnErr error
	for _, w := range Plan(p) {
		if err := ctx.Err(); err != nil {
			spawnErr = err
			break
		}
		st := Stage{Index: w.Stage, Segment: w.Segment, Stdin: r.stdin(), Stdout: r.stdout()}
		if w.In != Inherit {
			st.Stdin = pipes[w.In].r
		}
		if w.Out != Inherit {
			st.Stdout = pipes[w.Out].w
		}

		proc, err := r.Spawner.Spawn(st)
		if err != nil {
			spawnErr = err
			break
		}
		procs = append(procs, proc)
		if proc.Pid != 0 {
			r.stats.Spawned++
			r.stats.Dups += 2
		}

		// The child has its copies now.
		if w.In != Inherit {
			fds.release(pipes[w.In].r)
		}
		if w.Out != Inherit {
			fds.release(pipes[w.Out].w)
		}
	}
	if spawnErr != nil {
		fds.releaseAll()
	}

	statuses, waitErr := reap(procs)
	switch {
	case spawnErr != nil && len(procs) == 0:
		return statuses, spawnErr
	case spawnErr != nil:
		return statuses, fmt.Errorf("%w: %w", ErrPartialSpawn, spawnErr)
	}
	return statuses, waitErr
}

// reap waits for every process concurrently; children may exit in any order.
func reap(procs []*Process) ([]Status, error) {
	statuses := make([]Status, len(procs))
	var g errgroup.Group
	for i, proc := range procs {
		g.Go(func() error {
			st, err := proc.Wait()
			statuses[i] = st
			return err
		})
	}
	err := g.Wait()
	return statuses, err
}

func (r *Runner) stdin() *os.File {
	if r.Stdin != nil {
		return r.Stdin
	}
	return os.Stdin
}

func (r *Runner) stdout() *os.File {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}
