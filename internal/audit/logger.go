package audit

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const genesisInput = "gosh-genesis"

// Logger appends entries to a history file, chaining each to the previous
// entry's hash.
type Logger struct {
	mu       sync.Mutex
	f        *os.File
	seq      uint64
	prevHash string
}

// NewLogger opens or creates the history file at path and resumes the chain
// from its last entry.
func NewLogger(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	l := &Logger{prevHash: genesisHash()}
	if last, ok, err := lastEntry(path); err != nil {
		return nil, err
	} else if ok {
		l.seq = last.Seq
		l.prevHash = last.Hash
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	l.f = f
	return l, nil
}

// Log stamps e with sequence, time, duration and chain hashes and appends it.
func (l *Logger) Log(e Entry, duration time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	e.Seq = l.seq
	e.Time = time.Now().UTC()
	e.PrevHash = l.prevHash
	e.Duration = float64(duration.Microseconds()) / 1000.0
	e.Hash = computeHash(e)

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}
	data = append(data, '\n')
	if _, err := l.f.Write(data); err != nil {
		return fmt.Errorf("write history entry: %w", err)
	}
	l.prevHash = e.Hash
	return nil
}

// Path returns the history file path.
func (l *Logger) Path() string { return l.f.Name() }

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

func lastEntry(path string) (Entry, bool, error) {
	var last Entry
	found := false
	err := scan(path, func(_ int, line []byte) error {
		var e Entry
		if err := json.Unmarshal(line, &e); err == nil {
			last, found = e, true
		}
		return nil
	})
	if os.IsNotExist(err) {
		return Entry{}, false, nil
	}
	return last, found, err
}

// scan calls fn for every non-empty line of path, numbered from 1.
func scan(path string, fn func(n int, line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	return sc.Err()
}

func genesisHash() string {
	h := sha256.Sum256([]byte(genesisInput))
	return fmt.Sprintf("%x", h)
}

func computeHash(e Entry) string {
	e.Hash = ""
	data, _ := json.Marshal(e)
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h)
}
