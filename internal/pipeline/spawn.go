package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/marcelocantos/gosh/internal/lookup"
)

// Stage is one spawn request: a segment plus the descriptors the runner
// hands it for stdin and stdout.
type Stage struct {
	Index   int
	Segment Segment
	Stdin   *os.File
	Stdout  *os.File
}

// Spawner starts the process for one stage and returns without waiting.
// Failures that belong to the stage alone are reported as an already exited
// Process; a returned error means the runner must stop spawning.
type Spawner interface {
	Spawn(st Stage) (*Process, error)
}

// ProcSpawner starts real OS processes.
type ProcSpawner struct {
	Resolver *lookup.Resolver
	Dir      string   // working directory of children; also anchors relative redirects
	Env      []string // nil inherits the current process environment
	Stderr   *os.File // children's stderr and stage diagnostics; nil means os.Stderr
}

// Spawn opens the segment's redirect targets, resolves its program and
// starts it with stdin/stdout installed. Argv[0] is passed unresolved.
// Redirect files are closed in the parent once the child holds its copy.
func (s *ProcSpawner) Spawn(st Stage) (*Process, error) {
	seg := st.Segment
	stdin, stdout := st.Stdin, st.Stdout

	if seg.RedirectIn != "" {
		f, err := os.Open(s.path(seg.RedirectIn))
		if err != nil {
			s.report(seg.Name(), fmt.Errorf("%w: %v", ErrRedirectOpenFailed, err))
			return Exited(st.Index, seg, ExitRedirectFailed), nil
		}
		defer f.Close()
		stdin = f
	}
	if seg.RedirectOut != "" {
		f, err := os.OpenFile(s.path(seg.RedirectOut), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			s.report(seg.Name(), fmt.Errorf("%w: %v", ErrRedirectOpenFailed, err))
			return Exited(st.Index, seg, ExitRedirectFailed), nil
		}
		defer f.Close()
		stdout = f
	}

	path, err := s.resolver().Resolve(seg.Name())
	if err != nil {
		fmt.Fprintf(s.stderr(), "%s: command not found\n", seg.Name())
		return Exited(st.Index, seg, ExitNotFound), nil
	}

	proc, err := os.StartProcess(path, seg.Argv, &os.ProcAttr{
		Dir:   s.Dir,
		Env:   s.Env,
		Files: []*os.File{stdin, stdout, s.stderr()},
	})
	if err != nil {
		if !execFailure(err) {
			return nil, &SpawnError{Stage: st.Index, Name: seg.Name(), Err: fmt.Errorf("%w: %v", ErrForkFailed, err)}
		}
		s.report(seg.Name(), fmt.Errorf("%w: %v", ErrExecFailed, err))
		code := ExitCannotExec
		if errors.Is(err, fs.ErrNotExist) {
			code = ExitNotFound
		}
		return Exited(st.Index, seg, code), nil
	}
	return Started(st.Index, seg, proc), nil
}

func (s *ProcSpawner) path(p string) string {
	if s.Dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.Dir, p)
}

func (s *ProcSpawner) resolver() *lookup.Resolver {
	if s.Resolver != nil {
		return s.Resolver
	}
	return lookup.New(os.Getenv("PATH"), s.Dir)
}

func (s *ProcSpawner) stderr() *os.File {
	if s.Stderr != nil {
		return s.Stderr
	}
	return os.Stderr
}

func (s *ProcSpawner) report(name string, err error) {
	fmt.Fprintf(s.stderr(), "%s: %v\n", name, err)
}

// execFailure reports whether a StartProcess error is about the program
// image or its location rather than the system's ability to create a process.
func execFailure(err error) bool {
	for _, errno := range []syscall.Errno{
		unix.ENOENT, unix.EACCES, unix.ENOEXEC, unix.ENOTDIR, unix.EISDIR,
		unix.ELOOP, unix.ENAMETOOLONG, unix.ETXTBSY, unix.EPERM, unix.E2BIG,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
