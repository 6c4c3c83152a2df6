// Package rc runs the Starlark startup script that prepares a session's
// environment and directory before the first line is read.
package rc

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/marcelocantos/gosh/internal/shell"
)

// Load executes the script at path against c. A missing script is not an
// error. print() writes to out.
func Load(path string, c *shell.Context, out io.Writer) error {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read rc: %w", err)
	}
	return Exec(path, src, c, out)
}

// Exec executes src as a startup script named filename.
func Exec(filename string, src []byte, c *shell.Context, out io.Writer) error {
	thread := &starlark.Thread{
		Name: "rc",
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(out, msg)
		},
	}
	_, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, filename, src, Builtins(c))
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		return fmt.Errorf("rc: %s", evalErr.Backtrace())
	}
	if err != nil {
		return fmt.Errorf("rc: %w", err)
	}
	return nil
}

// Builtins returns the functions a startup script can call, bound to c.
func Builtins(c *shell.Context) starlark.StringDict {
	return starlark.StringDict{
		"setenv": starlark.NewBuiltin("setenv", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var key, value string
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "key", &key, "value", &value); err != nil {
				return nil, err
			}
			if key == "" {
				return nil, fmt.Errorf("%s: empty key", b.Name())
			}
			c.Setenv(key, value)
			return starlark.None, nil
		}),
		"getenv": starlark.NewBuiltin("getenv", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var key, def string
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "key", &key, "default?", &def); err != nil {
				return nil, err
			}
			if v := c.Getenv(key); v != "" {
				return starlark.String(v), nil
			}
			return starlark.String(def), nil
		}),
		"unsetenv": starlark.NewBuiltin("unsetenv", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var key string
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "key", &key); err != nil {
				return nil, err
			}
			c.Unsetenv(key)
			return starlark.None, nil
		}),
		"chdir": starlark.NewBuiltin("chdir", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var dir string
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "dir", &dir); err != nil {
				return nil, err
			}
			if err := c.Chdir(dir); err != nil {
				return nil, fmt.Errorf("%s: %w", b.Name(), err)
			}
			return starlark.None, nil
		}),
		"cwd": starlark.NewBuiltin("cwd", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
				return nil, err
			}
			return starlark.String(c.Dir), nil
		}),
	}
}
