package pipeline

// Operator tokens recognized in a token stream. The tokenizer delivers each
// one as a token of its own.
const (
	OpPipe        = "|" // stdout → next stage's stdin
	OpRedirectIn  = "<" // stdin from file
	OpRedirectOut = ">" // stdout to file (create, truncate)
)

// Segment is one command between pipe markers: a half-open range
// [Start, End) into the originating token stream plus what the redirection
// parser extracted from it. Segments are built once and never mutated.
type Segment struct {
	Start, End  int
	Argv        []string // Argv[0] is the command name; operators and their targets removed
	RedirectIn  string   // file path for stdin redirect, empty if none
	RedirectOut string   // file path for stdout redirect, empty if none
}

// Name returns the unresolved command name.
func (s Segment) Name() string {
	if len(s.Argv) == 0 {
		return ""
	}
	return s.Argv[0]
}

// Pipeline is the ordered chain of segments for one input line.
type Pipeline struct {
	Tokens   []string
	Segments []Segment
}

// Len returns the number of stages.
func (p *Pipeline) Len() int { return len(p.Segments) }

// Names returns the command name of every stage.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		names[i] = s.Name()
	}
	return names
}
