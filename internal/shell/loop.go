package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/marcelocantos/gosh/internal/audit"
	"github.com/marcelocantos/gosh/internal/lexer"
)

// DefaultPrompt is the interactive prompt; %d is the line counter.
const DefaultPrompt = "%d: "

// LineReader supplies input lines. n is the number of the line about to be
// read, starting at 1. ReadLine returns io.EOF when input is exhausted.
type LineReader interface {
	ReadLine(n int) (string, error)
	Close() error
}

// NewReader returns a prompting line editor when in is a terminal and a
// plain line reader otherwise.
func NewReader(in *os.File, out io.Writer, prompt string) (LineReader, error) {
	if !term.IsTerminal(int(in.Fd())) {
		return NewPlainReader(in), nil
	}
	if prompt == "" {
		prompt = DefaultPrompt
	}
	rl, err := readline.NewEx(&readline.Config{
		Stdin:  readline.NewCancelableStdin(in),
		Stdout: out,
		Stderr: out,
	})
	if err != nil {
		return nil, fmt.Errorf("init line editor: %w", err)
	}
	return &promptReader{rl: rl, format: prompt}, nil
}

type promptReader struct {
	rl     *readline.Instance
	format string
}

func (r *promptReader) ReadLine(n int) (string, error) {
	r.rl.SetPrompt(fmt.Sprintf(r.format, n))
	line, err := r.rl.Readline()
	if err == readline.ErrInterrupt {
		// ^C abandons the current line.
		return "", nil
	}
	return line, err
}

func (r *promptReader) Close() error { return r.rl.Close() }

type plainReader struct {
	r *bufio.Reader
}

// NewPlainReader reads newline-terminated lines from r without prompting.
func NewPlainReader(r io.Reader) LineReader {
	return &plainReader{r: bufio.NewReader(r)}
}

func (r *plainReader) ReadLine(int) (string, error) {
	line, err := r.r.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *plainReader) Close() error { return nil }

// Shell runs lines against a context and records them in the history.
type Shell struct {
	Context    *Context
	Dispatcher *Dispatcher
	History    *audit.Logger // nil disables history

	diag *color.Color
}

func New(c *Context, d *Dispatcher, history *audit.Logger) *Shell {
	if d == nil {
		d = NewDispatcher()
	}
	return &Shell{
		Context:    c,
		Dispatcher: d,
		History:    history,
		diag:       color.New(color.FgRed),
	}
}

// RunLine tokenizes and executes one line. Blank lines do nothing.
func (s *Shell) RunLine(ctx context.Context, line string) Result {
	if strings.TrimSpace(line) == "" {
		return Result{}
	}
	start := time.Now()

	var res Result
	tokens, err := lexer.Split(line)
	switch {
	case err != nil:
		res = Result{Code: ExitUsage, Err: err}
	case len(tokens) == 0:
		return Result{}
	default:
		res = s.Dispatcher.Run(ctx, s.Context, tokens)
	}

	if res.Err != nil {
		s.Errorf("%v", res.Err)
	}
	s.record(line, res, time.Since(start))
	return res
}

// Loop reads and runs lines until input ends or exit is called. It returns
// the exit code of the session: the argument to exit, or the status of the
// last line.
func (s *Shell) Loop(ctx context.Context, r LineReader) int {
	last := 0
	for n := 1; ; n++ {
		if ctx.Err() != nil {
			return last
		}
		line, err := r.ReadLine(n)
		if errors.Is(err, io.EOF) {
			return last
		}
		if err != nil {
			s.Errorf("read: %v", err)
			return 1
		}
		res := s.RunLine(ctx, line)
		if strings.TrimSpace(line) != "" {
			last = res.Code
		}
		if exited, code := s.Context.Exited(); exited {
			return code
		}
	}
}

// Errorf writes one diagnostic line to the context's stderr.
func (s *Shell) Errorf(format string, args ...any) {
	diag := s.diag
	if diag == nil {
		diag = color.New(color.FgRed)
	}
	diag.Fprintf(s.Context.Stderr, "gosh: "+format+"\n", args...)
}

func (s *Shell) record(line string, res Result, d time.Duration) {
	if s.History == nil {
		return
	}
	e := audit.Entry{
		Line:     line,
		Stages:   res.Names,
		Builtin:  res.Builtin,
		ExitCode: res.Code,
		Cwd:      s.Context.Dir,
	}
	for _, st := range res.Statuses {
		e.Statuses = append(e.Statuses, st.Code)
	}
	if res.Err != nil {
		e.Error = res.Err.Error()
	}
	if err := s.History.Log(e, d); err != nil {
		s.Errorf("history: %v", err)
	}
}
