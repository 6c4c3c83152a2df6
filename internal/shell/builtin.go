package shell

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
)

// Builtin is a command run in the shell's own process.
type Builtin struct {
	Name        string
	Description string
	Run         func(c *Context, args []string) int // args[0] is the name
}

// Registry maps built-in names to implementations. Lookup is exact and
// case-sensitive.
type Registry struct {
	mu       sync.RWMutex
	builtins map[string]*Builtin
}

func NewRegistry() *Registry {
	return &Registry{builtins: make(map[string]*Builtin)}
}

// Register adds b, replacing any built-in of the same name.
func (r *Registry) Register(b *Builtin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builtins[b.Name] = b
}

// Lookup returns the built-in called name.
func (r *Registry) Lookup(name string) (*Builtin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.builtins[name]
	return b, ok
}

// All returns all built-ins sorted by name.
func (r *Registry) All() []*Builtin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*Builtin, 0, len(r.builtins))
	for _, b := range r.builtins {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Name < all[j].Name
	})
	return all
}

// DefaultRegistry returns the fixed built-in table: exit, help/?, pwd, cd.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	help := func(c *Context, _ []string) int {
		for _, b := range r.All() {
			fmt.Fprintf(c.Stdout, "%s - %s\n", b.Name, b.Description)
		}
		return 0
	}
	r.Register(&Builtin{Name: "?", Description: "show this help menu", Run: help})
	r.Register(&Builtin{Name: "help", Description: "show this help menu", Run: help})
	r.Register(&Builtin{Name: "exit", Description: "exit the command shell", Run: builtinExit})
	r.Register(&Builtin{Name: "pwd", Description: "show the current directory", Run: builtinPwd})
	r.Register(&Builtin{Name: "cd", Description: "change the current directory to the one named by its only argument", Run: builtinCd})
	return r
}

func builtinExit(c *Context, args []string) int {
	code := 0
	switch len(args) {
	case 1:
	case 2:
		n, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(c.Stderr, "exit: %s: numeric argument required\n", args[1])
			return 2
		}
		code = n
	default:
		fmt.Fprintln(c.Stderr, "exit: too many arguments")
		return 1
	}
	c.Exit(code)
	return code
}

func builtinPwd(c *Context, _ []string) int {
	fmt.Fprintln(c.Stdout, c.Dir)
	return 0
}

func builtinCd(c *Context, args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(c.Stderr, "cd: usage: cd <directory>")
		return 1
	}
	if err := c.Chdir(args[1]); err != nil {
		fmt.Fprintf(c.Stderr, "cd: %v\n", err)
		return 1
	}
	return 0
}
