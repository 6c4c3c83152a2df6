// Package shell holds the per-session state of gosh and turns token lines
// into built-in calls or external pipelines.
package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Context is the state that persists across lines: the working directory and
// the environment. Built-ins mutate it; external stages are started from it.
// The process-wide cwd and environment are never touched.
type Context struct {
	Dir    string
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	env      map[string]string
	exited   bool
	exitCode int
}

// NewContext creates a context rooted at dir with the given KEY=VALUE
// environment. Standard streams default to the process's own.
func NewContext(dir string, environ []string) *Context {
	c := &Context{
		Dir:    dir,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		env:    make(map[string]string, len(environ)),
	}
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		c.env[k] = v
	}
	return c
}

// FromProcess creates a context from the current process's cwd and
// environment.
func FromProcess() (*Context, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getwd: %w", err)
	}
	return NewContext(dir, os.Environ()), nil
}

func (c *Context) Getenv(key string) string { return c.env[key] }

func (c *Context) Setenv(key, value string) { c.env[key] = value }

func (c *Context) Unsetenv(key string) { delete(c.env, key) }

// Environ returns the environment as sorted KEY=VALUE pairs.
func (c *Context) Environ() []string {
	out := make([]string, 0, len(c.env))
	for k, v := range c.env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// Abs resolves path against the context directory.
func (c *Context) Abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.Dir, path)
}

// Chdir changes the context directory. The target must be an existing
// directory; PWD and OLDPWD follow the change.
func (c *Context) Chdir(path string) error {
	target := c.Abs(path)
	fi, err := os.Stat(target)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s: not a directory", path)
	}
	c.env["OLDPWD"] = c.Dir
	c.Dir = target
	c.env["PWD"] = target
	return nil
}

// Exit marks the session finished with code.
func (c *Context) Exit(code int) {
	c.exited = true
	c.exitCode = code
}

// Exited reports whether exit was requested and with which code.
func (c *Context) Exited() (bool, int) { return c.exited, c.exitCode }
