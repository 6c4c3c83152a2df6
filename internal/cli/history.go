package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/marcelocantos/gosh/internal/audit"
)

// DefaultShowCount is how many entries history show prints without -n.
const DefaultShowCount = 20

// RunHistoryVerify handles gosh history verify.
func RunHistoryVerify(w io.Writer, logPath string) int {
	if err := audit.Verify(logPath); err != nil {
		fmt.Fprintf(w, "history verification FAILED: %v\n", err)
		return 1
	}
	fmt.Fprintln(w, "history integrity verified")
	return 0
}

// RunHistoryShow handles gosh history show. Entries print one per line, or
// as indented JSON when asJSON is set.
func RunHistoryShow(w io.Writer, logPath string, n int, asJSON bool) int {
	entries, err := audit.Tail(logPath, n)
	if err != nil {
		fmt.Fprintf(w, "gosh history: %v\n", err)
		return 1
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "no history entries")
		return 0
	}
	for _, e := range entries {
		if asJSON {
			data, _ := json.MarshalIndent(e, "", "  ")
			fmt.Fprintf(w, "%s\n", data)
			continue
		}
		fmt.Fprintln(w, formatEntry(e))
	}
	return 0
}

func formatEntry(e audit.Entry) string {
	status := fmt.Sprintf("%d", e.ExitCode)
	if len(e.Statuses) > 1 {
		codes := make([]string, len(e.Statuses))
		for i, c := range e.Statuses {
			codes[i] = fmt.Sprintf("%d", c)
		}
		status = strings.Join(codes, "|")
	}
	line := fmt.Sprintf("%5d  %s  %-7s %s", e.Seq, e.Time.Local().Format(time.DateTime), status, e.Line)
	if e.Error != "" {
		line += "  # " + e.Error
	}
	return line
}
