// Package mcpserver exposes a shell session as an MCP tool server. Each call
// to run_line executes one line in the session and returns its output.
package mcpserver

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/marcelocantos/gosh/internal/lexer"
	"github.com/marcelocantos/gosh/internal/shell"
)

// Server serializes tool calls onto one shell session. Directory and
// environment changes persist between calls.
type Server struct {
	mu    sync.Mutex
	shell *shell.Shell
	mcp   *server.MCPServer
}

func New(sh *shell.Shell, version string) *Server {
	s := &Server{shell: sh}
	s.mcp = server.NewMCPServer("gosh", version, server.WithToolCapabilities(false))

	tool := mcp.NewTool("run_line",
		mcp.WithDescription("Run one gosh command line. Commands may be joined with | and use < and > for file redirection. cd and pwd act on the session directory, which persists between calls."),
		mcp.WithString("line",
			mcp.Required(),
			mcp.Description("The command line to run"),
		),
	)
	s.mcp.AddTool(tool, s.HandleRunLine)
	return s
}

// ServeStdio serves the tool over stdin/stdout until stdin closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// HandleRunLine runs the line argument and returns combined stdout and
// stderr followed by the exit status.
func (s *Server) HandleRunLine(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	line, err := request.RequireString("line")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if tokens, err := lexer.Split(line); err == nil && len(tokens) > 0 && tokens[0] == "exit" {
		return mcp.NewToolResultError("exit is not available in a tool session"), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out, code, err := s.capture(ctx, line)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString(out)
	if out != "" && !strings.HasSuffix(out, "\n") {
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "[exit %d]", code)
	return mcp.NewToolResultText(b.String()), nil
}

// capture runs line with the session's streams pointed at a temp file, then
// restores them.
func (s *Server) capture(ctx context.Context, line string) (string, int, error) {
	c := s.shell.Context

	outf, err := os.CreateTemp("", "gosh-mcp-*")
	if err != nil {
		return "", 0, fmt.Errorf("create capture file: %w", err)
	}
	defer os.Remove(outf.Name())
	defer outf.Close()

	devnull, err := os.Open(os.DevNull)
	if err != nil {
		return "", 0, fmt.Errorf("open %s: %w", os.DevNull, err)
	}
	defer devnull.Close()

	stdin, stdout, stderr := c.Stdin, c.Stdout, c.Stderr
	c.Stdin, c.Stdout, c.Stderr = devnull, outf, outf
	res := s.shell.RunLine(ctx, line)
	c.Stdin, c.Stdout, c.Stderr = stdin, stdout, stderr

	if _, err := outf.Seek(0, io.SeekStart); err != nil {
		return "", 0, fmt.Errorf("rewind capture file: %w", err)
	}
	data, err := io.ReadAll(outf)
	if err != nil {
		return "", 0, fmt.Errorf("read capture file: %w", err)
	}
	return string(data), res.Code, nil
}
