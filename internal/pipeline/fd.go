package pipeline

import (
	"os"

	"golang.org/x/sys/unix"
)

// fdTable owns every pipe endpoint created for one pipeline. An endpoint
// leaves the table exactly once, when it is closed; children hold their own
// duplicates, so closing here never affects a started stage.
type fdTable struct {
	open map[*os.File]struct{}
}

func newFDTable() *fdTable {
	return &fdTable{open: make(map[*os.File]struct{})}
}

// pipe creates a close-on-exec pipe so the raw endpoints never leak into a
// child; a child only sees the copies installed as its stdin/stdout.
func (t *fdTable) pipe() (r, w *os.File, err error) {
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_CLOEXEC); err != nil {
		return nil, nil, err
	}
	r = os.NewFile(uintptr(p[0]), "|0")
	w = os.NewFile(uintptr(p[1]), "|1")
	t.open[r] = struct{}{}
	t.open[w] = struct{}{}
	return r, w, nil
}

// release closes f if the table still owns it.
func (t *fdTable) release(f *os.File) {
	if f == nil {
		return
	}
	if _, ok := t.open[f]; !ok {
		return
	}
	delete(t.open, f)
	_ = f.Close()
}

func (t *fdTable) releaseAll() {
	for f := range t.open {
		t.release(f)
	}
}

func (t *fdTable) live() int { return len(t.open) }
