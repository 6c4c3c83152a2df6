package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/marcelocantos/gosh/internal/audit"
)

type testEnv struct {
	dir     string
	config  string
	history string
	st      Streams
}

// newTestEnv writes a config whose history and rc live in a temp dir, and
// opens file-backed streams.
func newTestEnv(t *testing.T, rcBody string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:     dir,
		config:  filepath.Join(dir, "config.yaml"),
		history: filepath.Join(dir, "history.jsonl"),
	}
	rcPath := filepath.Join(dir, "rc.star")
	if rcBody != "" {
		if err := os.WriteFile(rcPath, []byte(rcBody), 0644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := "color: never\nhistory:\n  enabled: true\n  path: " + env.history + "\nrc: " + rcPath + "\n"
	if err := os.WriteFile(env.config, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	env.st = Streams{
		Stdin:  env.open(t, "stdin"),
		Stdout: env.open(t, "stdout"),
		Stderr: env.open(t, "stderr"),
	}
	return env
}

func (e *testEnv) open(t *testing.T, name string) *os.File {
	t.Helper()
	f, err := os.OpenFile(filepath.Join(e.dir, name), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func (e *testEnv) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.dir, name))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func (e *testEnv) execute(t *testing.T, args ...string) int {
	t.Helper()
	code := -1
	root := NewRootCommand("test", e.st, &code)
	root.SetArgs(append([]string{"--config", e.config}, args...))
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute %v: %v", args, err)
	}
	return code
}

func TestCommandExitStatus(t *testing.T) {
	env := newTestEnv(t, "")
	if code := env.execute(t, "-c", "exit 4"); code != 4 {
		t.Errorf("expected 4, got %d", code)
	}
	if code := env.execute(t, "-c", "cd"); code != 1 {
		t.Errorf("expected cd usage status 1, got %d", code)
	}
}

func TestCommandRunsStartupScript(t *testing.T) {
	env := newTestEnv(t, "chdir(\""+"/"+"\")\n")
	if code := env.execute(t, "-c", "pwd"); code != 0 {
		t.Fatalf("expected 0, got %d", code)
	}
	if got := env.read(t, "stdout"); got != "/\n" {
		t.Errorf("expected rc chdir to apply, got %q", got)
	}
}

func TestCommandNoRC(t *testing.T) {
	env := newTestEnv(t, "chdir(\"/\")\n")
	if code := env.execute(t, "--no-rc", "-c", "pwd"); code != 0 {
		t.Fatalf("expected 0, got %d", code)
	}
	wd, _ := os.Getwd()
	if got := env.read(t, "stdout"); got != wd+"\n" {
		t.Errorf("expected %q, got %q", wd+"\n", got)
	}
}

func TestCommandRecordsHistory(t *testing.T) {
	env := newTestEnv(t, "")
	env.execute(t, "-c", "pwd")
	env.execute(t, "-c", "| broken")
	env.execute(t, "--no-history", "-c", "pwd")

	entries, err := audit.Tail(env.history, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if code := env.execute(t, "history", "verify"); code != 0 {
		t.Errorf("verify failed: %s", env.read(t, "stdout"))
	}
	if !strings.Contains(env.read(t, "stdout"), "history integrity verified") {
		t.Errorf("unexpected verify output %q", env.read(t, "stdout"))
	}
}

func TestInteractiveFromFile(t *testing.T) {
	env := newTestEnv(t, "")
	if _, err := env.st.Stdin.WriteString("cd /\npwd\nexit 7\npwd\n"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.st.Stdin.Seek(0, 0); err != nil {
		t.Fatal(err)
	}

	if code := env.execute(t); code != 7 {
		t.Errorf("expected 7, got %d", code)
	}
	if got := env.read(t, "stdout"); got != "/\n" {
		t.Errorf("expected one pwd line without prompts, got %q", got)
	}
}

func TestRejectsPositionalArgs(t *testing.T) {
	env := newTestEnv(t, "")
	code := -1
	root := NewRootCommand("test", env.st, &code)
	root.SetArgs([]string{"echo", "hi"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error for positional arguments")
	}
}

func TestHistoryShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	l, err := audit.NewLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = l.Log(audit.Entry{Line: "pwd", Stages: []string{"pwd"}, Builtin: true}, time.Millisecond)
	_ = l.Log(audit.Entry{Line: "true | false", Stages: []string{"true", "false"}, Statuses: []int{0, 1}, ExitCode: 1}, time.Millisecond)
	_ = l.Log(audit.Entry{Line: "| x", ExitCode: 2, Error: "empty segment"}, time.Millisecond)
	l.Close()

	var buf bytes.Buffer
	if code := RunHistoryShow(&buf, path, 2, false); code != 0 {
		t.Fatalf("expected 0, got %d", code)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if !strings.Contains(lines[0], "0|1") || !strings.HasSuffix(lines[0], "true | false") {
		t.Errorf("unexpected pipeline line %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "# empty segment") {
		t.Errorf("unexpected error line %q", lines[1])
	}

	buf.Reset()
	RunHistoryShow(&buf, path, 1, true)
	if !strings.Contains(buf.String(), `"seq": 3`) {
		t.Errorf("expected JSON entry, got %q", buf.String())
	}
}

func TestHistoryShowEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if code := RunHistoryShow(&buf, path, 5, false); code != 0 {
		t.Fatalf("expected 0, got %d", code)
	}
	if buf.String() != "no history entries\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestHistoryVerifyDetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	l, err := audit.NewLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = l.Log(audit.Entry{Line: "pwd"}, time.Millisecond)
	l.Close()

	data, _ := os.ReadFile(path)
	data = bytes.Replace(data, []byte(`"pwd"`), []byte(`"cd"`), 1)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if code := RunHistoryVerify(&buf, path); code != 1 {
		t.Errorf("expected 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "FAILED") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
