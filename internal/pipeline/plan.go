package pipeline

// Inherit marks a stage stream that comes from the runner's own stdin or
// stdout rather than from a pipe.
const Inherit = -1

// Wiring says where one stage's standard streams are connected. In and Out
// are indexes into the runner's pipe list, or Inherit. A segment's own
// redirects override either side when the stage is spawned.
type Wiring struct {
	Stage   int
	Segment Segment
	In      int
	Out     int
}

// Plan computes the wiring of every stage before anything is spawned: stage
// i reads pipe i-1 and writes pipe i, the ends of the chain inherit.
func Plan(p *Pipeline) []Wiring {
	n := len(p.Segments)
	plan := make([]Wiring, n)
	for i, seg := range p.Segments {
		w := Wiring{Stage: i, Segment: seg, In: i - 1, Out: i}
		if i == 0 {
			w.In = Inherit
		}
		if i == n-1 {
			w.Out = Inherit
		}
		plan[i] = w
	}
	return plan
}
