package pipeline

import (
	"fmt"
)

// ParseRedirects scans one segment's tokens left to right, pulling out < and >
// with their file operands. Later redirects of the same direction replace
// earlier ones. Everything else is returned in order as argv.
func ParseRedirects(tokens []string) (argv []string, in, out string, err error) {
	argv = make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case OpRedirectIn, OpRedirectOut:
			if i+1 >= len(tokens) || isOperator(tokens[i+1]) {
				return nil, "", "", fmt.Errorf("%w: %s", ErrMalformedRedirect, tokens[i])
			}
			if tokens[i] == OpRedirectIn {
				in = tokens[i+1]
			} else {
				out = tokens[i+1]
			}
			i++
		default:
			argv = append(argv, tokens[i])
		}
	}
	if len(argv) == 0 {
		return nil, "", "", ErrEmptySegment
	}
	return argv, in, out, nil
}

// Build splits tokens on | into segments and parses each segment's
// redirects. Leading, trailing, or doubled pipe markers fail with
// ErrEmptySegment. The result has one segment more than there are | tokens.
func Build(tokens []string) (*Pipeline, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty pipeline", ErrEmptySegment)
	}

	p := &Pipeline{Tokens: tokens}
	start := 0
	for i := 0; i <= len(tokens); i++ {
		if i < len(tokens) && tokens[i] != OpPipe {
			continue
		}
		if i == start {
			return nil, fmt.Errorf("%w at token %d", ErrEmptySegment, i)
		}
		seg, err := parseSegment(tokens, start, i)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", len(p.Segments), err)
		}
		p.Segments = append(p.Segments, seg)
		start = i + 1
	}
	return p, nil
}

func parseSegment(tokens []string, start, end int) (Segment, error) {
	argv, in, out, err := ParseRedirects(tokens[start:end])
	if err != nil {
		return Segment{}, err
	}
	return Segment{
		Start:       start,
		End:         end,
		Argv:        argv,
		RedirectIn:  in,
		RedirectOut: out,
	}, nil
}

func isOperator(tok string) bool {
	switch tok {
	case OpPipe, OpRedirectIn, OpRedirectOut:
		return true
	}
	return false
}
