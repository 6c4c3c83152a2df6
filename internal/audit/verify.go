package audit

import (
	"encoding/json"
	"fmt"
	"os"
)

// Verify walks the history file and checks sequence numbers and the hash
// chain. It returns the first violation found.
func Verify(path string) error {
	expectedPrev := genesisHash()
	var prevSeq uint64

	err := scan(path, func(n int, line []byte) error {
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return fmt.Errorf("line %d: invalid JSON: %w", n, err)
		}
		if e.Seq != prevSeq+1 {
			return fmt.Errorf("line %d: sequence gap: expected %d, got %d", n, prevSeq+1, e.Seq)
		}
		if e.PrevHash != expectedPrev {
			return fmt.Errorf("line %d: prev_hash mismatch: expected %s, got %s", n, short(expectedPrev), short(e.PrevHash))
		}
		if computed := computeHash(e); e.Hash != computed {
			return fmt.Errorf("line %d: hash mismatch: expected %s, got %s", n, short(computed), short(e.Hash))
		}
		expectedPrev = e.Hash
		prevSeq = e.Seq
		return nil
	})
	if err != nil && os.IsNotExist(err) {
		return fmt.Errorf("read history: %w", err)
	}
	return err
}

// Tail returns up to the last n entries. Lines that do not decode are skipped.
func Tail(path string, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	ring := make([]Entry, 0, n)
	err := scan(path, func(_ int, line []byte) error {
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil
		}
		if len(ring) == n {
			ring = append(ring[:0], ring[1:]...)
		}
		ring = append(ring, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return ring, nil
}

func short(h string) string {
	if len(h) <= 16 {
		return h
	}
	return h[:16] + "..."
}
