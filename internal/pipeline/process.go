package pipeline

import (
	"fmt"
	"os"
	"syscall"
)

// Status is the outcome of one stage.
type Status struct {
	Stage int
	Name  string
	Pid   int // 0 if the stage never started a process
	Code  int // exit code, 128+signal if killed, or one of the Exit* sentinels
}

// Success reports whether the stage exited zero.
func (s Status) Success() bool { return s.Code == 0 }

// Process records one stage from spawn until it is reaped. A record is
// waited on at most once; later Wait calls return the recorded status.
type Process struct {
	Stage   int
	Segment Segment
	Pid     int

	proc   *os.Process
	exited bool
	code   int
}

// Started records a running child.
func Started(stage int, seg Segment, p *os.Process) *Process {
	return &Process{Stage: stage, Segment: seg, Pid: p.Pid, proc: p}
}

// Exited records a stage that failed before any program ran.
func Exited(stage int, seg Segment, code int) *Process {
	return &Process{Stage: stage, Segment: seg, exited: true, code: code}
}

// Exited reports whether the process has been reaped.
func (p *Process) Exited() bool { return p.exited }

// Wait reaps the child if it has not been reaped yet.
func (p *Process) Wait() (Status, error) {
	if !p.exited {
		state, err := p.proc.Wait()
		p.exited = true
		if err != nil {
			p.code = -1
			return p.status(), fmt.Errorf("wait stage %d (%s): %w", p.Stage, p.Segment.Name(), err)
		}
		p.code = exitCode(state)
	}
	return p.status(), nil
}

func (p *Process) status() Status {
	return Status{Stage: p.Stage, Name: p.Segment.Name(), Pid: p.Pid, Code: p.code}
}

func exitCode(state *os.ProcessState) int {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return state.ExitCode()
}
