// Package audit keeps an append-only, hash-chained history of the lines a
// shell session executed.
package audit

import "time"

// Entry is one executed line.
type Entry struct {
	Seq      uint64    `json:"seq"`
	Time     time.Time `json:"ts"`
	PrevHash string    `json:"prev_hash"`
	Line     string    `json:"line"`               // input line as typed
	Stages   []string  `json:"stages"`             // command name per stage, or the built-in name
	Statuses []int     `json:"statuses,omitempty"` // exit status per spawned stage
	Builtin  bool      `json:"builtin,omitempty"`
	ExitCode int       `json:"exit_code"`
	Error    string    `json:"error,omitempty"`
	Duration float64   `json:"duration_ms"`
	Cwd      string    `json:"cwd"`
	Hash     string    `json:"hash"` // SHA-256 of this entry with Hash empty
}
