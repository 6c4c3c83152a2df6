// Package lexer turns one input line into the token stream consumed by the
// dispatcher. Words follow POSIX quoting; the operators |, < and > become
// tokens of their own when they appear unquoted.
package lexer

import (
	"fmt"
	"strings"

	"github.com/anmitsu/go-shlex"
)

const operators = "|<>"

// Split tokenizes line. A quoted operator character is kept inside its word,
// but once unquoted by the word splitter it is indistinguishable from the
// operator itself.
func Split(line string) ([]string, error) {
	padded, err := padOperators(line)
	if err != nil {
		return nil, err
	}
	tokens, err := shlex.Split(padded, true)
	if err != nil {
		return nil, fmt.Errorf("syntax error: %w", err)
	}
	return tokens, nil
}

// padOperators surrounds unquoted operator characters with spaces so the word
// splitter emits them as separate tokens.
func padOperators(line string) (string, error) {
	var b strings.Builder
	var quote rune
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case strings.ContainsRune(operators, r):
			b.WriteByte(' ')
			b.WriteRune(r)
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	if quote != 0 {
		return "", fmt.Errorf("syntax error: unterminated %c quote", quote)
	}
	return b.String(), nil
}
