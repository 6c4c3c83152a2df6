package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/marcelocantos/gosh/internal/audit"
	"github.com/marcelocantos/gosh/internal/config"
	"github.com/marcelocantos/gosh/internal/mcpserver"
	"github.com/marcelocantos/gosh/internal/rc"
	"github.com/marcelocantos/gosh/internal/shell"
)

// Options are the flags shared by every way of starting a session.
type Options struct {
	ConfigPath string
	NoRC       bool
	NoHistory  bool
}

// Streams are the files a session reads from and writes to.
type Streams struct {
	Stdin, Stdout, Stderr *os.File
}

// StdStreams returns the process's standard streams.
func StdStreams() Streams {
	return Streams{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

type session struct {
	cfg     *config.Config
	shell   *shell.Shell
	history *audit.Logger
}

func (s *session) Close() {
	if s.history != nil {
		s.history.Close()
	}
}

// LoadConfig loads the configuration named by opts, or the default location.
func LoadConfig(opts Options) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.LoadFrom(opts.ConfigPath)
	}
	return config.Load()
}

// openSession builds a shell from the configuration: context from the
// process, PATH override, history log and startup script. History and rc
// failures are reported and the session continues without them.
func openSession(opts Options, st Streams, rcOut io.Writer) (*session, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	applyColor(cfg.Color, st.Stderr)

	c, err := shell.FromProcess()
	if err != nil {
		return nil, err
	}
	c.Stdin, c.Stdout, c.Stderr = st.Stdin, st.Stdout, st.Stderr
	if cfg.Path != "" {
		c.Setenv("PATH", cfg.Path)
	}

	s := &session{cfg: cfg}
	if cfg.History.Enabled && !opts.NoHistory {
		logger, err := audit.NewLogger(cfg.History.Path)
		if err != nil {
			fmt.Fprintf(st.Stderr, "gosh: history: %v\n", err)
		} else {
			s.history = logger
		}
	}
	s.shell = shell.New(c, shell.NewDispatcher(), s.history)

	if !opts.NoRC && cfg.RC != "" {
		if err := rc.Load(cfg.RC, c, rcOut); err != nil {
			s.shell.Errorf("%v", err)
		}
	}
	return s, nil
}

func applyColor(mode string, stderr *os.File) {
	switch mode {
	case config.ColorAlways:
		color.NoColor = false
	case config.ColorNever:
		color.NoColor = true
	default:
		color.NoColor = !term.IsTerminal(int(stderr.Fd()))
	}
}

// forwardInterrupts keeps SIGINT from killing the shell while leaving the
// default disposition in place for children, so ^C stops the running
// pipeline rather than the session.
func forwardInterrupts() (stop func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-sigs:
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// RunInteractive reads lines from st.Stdin until end of input or exit.
// A prompt is shown only when stdin is a terminal.
func RunInteractive(ctx context.Context, opts Options, st Streams) int {
	s, err := openSession(opts, st, st.Stdout)
	if err != nil {
		fmt.Fprintf(st.Stderr, "gosh: %v\n", err)
		return 1
	}
	defer s.Close()

	reader, err := shell.NewReader(st.Stdin, st.Stdout, s.cfg.Prompt)
	if err != nil {
		fmt.Fprintf(st.Stderr, "gosh: %v\n", err)
		return 1
	}
	defer reader.Close()

	stop := forwardInterrupts()
	defer stop()
	return s.shell.Loop(ctx, reader)
}

// RunCommand runs a single line and returns its status.
func RunCommand(ctx context.Context, opts Options, st Streams, line string) int {
	s, err := openSession(opts, st, st.Stdout)
	if err != nil {
		fmt.Fprintf(st.Stderr, "gosh: %v\n", err)
		return 1
	}
	defer s.Close()

	stop := forwardInterrupts()
	defer stop()
	res := s.shell.RunLine(ctx, line)
	if exited, code := s.shell.Context.Exited(); exited {
		return code
	}
	return res.Code
}

// RunMCP serves the session as an MCP tool over stdio. Startup script output
// goes to stderr so it cannot corrupt the protocol stream.
func RunMCP(opts Options, st Streams, version string) int {
	s, err := openSession(opts, st, st.Stderr)
	if err != nil {
		fmt.Fprintf(st.Stderr, "gosh: %v\n", err)
		return 1
	}
	defer s.Close()

	if err := mcpserver.New(s.shell, version).ServeStdio(); err != nil {
		fmt.Fprintf(st.Stderr, "gosh: mcp: %v\n", err)
		return 1
	}
	return 0
}
