package pipeline

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseRedirectsOutput(t *testing.T) {
	argv, in, out, err := ParseRedirects([]string{"cmd", "arg1", ">", "out.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(argv, []string{"cmd", "arg1"}) {
		t.Errorf("expected argv [cmd arg1], got %v", argv)
	}
	if in != "" {
		t.Errorf("expected no input redirect, got %q", in)
	}
	if out != "out.txt" {
		t.Errorf("expected out.txt, got %q", out)
	}
}

func TestParseRedirectsLastWins(t *testing.T) {
	argv, in, out, err := ParseRedirects([]string{"cmd", ">", "a.txt", "<", "x", ">", "b.txt", "<", "y"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(argv, []string{"cmd"}) {
		t.Errorf("expected argv [cmd], got %v", argv)
	}
	if out != "b.txt" {
		t.Errorf("expected b.txt, got %q", out)
	}
	if in != "y" {
		t.Errorf("expected y, got %q", in)
	}
}

func TestParseRedirectsAnywhere(t *testing.T) {
	argv, in, out, err := ParseRedirects([]string{"<", "in.txt", "sort", "-r", ">", "out.txt", "-u"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(argv, []string{"sort", "-r", "-u"}) {
		t.Errorf("unexpected argv %v", argv)
	}
	if in != "in.txt" || out != "out.txt" {
		t.Errorf("unexpected redirects in=%q out=%q", in, out)
	}
}

func TestParseRedirectsErrors(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   error
	}{
		{"trailing in", []string{"cat", "<"}, ErrMalformedRedirect},
		{"trailing out", []string{"cat", ">"}, ErrMalformedRedirect},
		{"operator operand", []string{"cat", ">", "<", "f"}, ErrMalformedRedirect},
		{"only redirects", []string{">", "out.txt"}, ErrEmptySegment},
		{"no tokens", nil, ErrEmptySegment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := ParseRedirects(tt.tokens)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestBuildSingleSegment(t *testing.T) {
	p, err := Build([]string{"grep", "-r", "TODO", "src/"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 1 {
		t.Fatalf("expected 1 segment, got %d", p.Len())
	}
	seg := p.Segments[0]
	if seg.Start != 0 || seg.End != 4 {
		t.Errorf("expected range [0,4), got [%d,%d)", seg.Start, seg.End)
	}
	if seg.Name() != "grep" {
		t.Errorf("expected grep, got %s", seg.Name())
	}
}

func TestBuildPipeline(t *testing.T) {
	tokens := []string{"grep", "-r", "TODO", "src/", "|", "sort", "|", "uniq", "-c", "|", "head", "-20", ">", "top.txt"}
	p, err := Build(tokens)
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 4 {
		t.Fatalf("expected 4 segments, got %d", p.Len())
	}
	expected := []struct {
		name       string
		argc       int
		start, end int
	}{
		{"grep", 4, 0, 4},
		{"sort", 1, 5, 6},
		{"uniq", 2, 7, 9},
		{"head", 2, 10, 14},
	}
	for i, e := range expected {
		seg := p.Segments[i]
		if seg.Name() != e.name {
			t.Errorf("segment %d: expected %s, got %s", i, e.name, seg.Name())
		}
		if len(seg.Argv) != e.argc {
			t.Errorf("segment %d: expected %d argv, got %d", i, e.argc, len(seg.Argv))
		}
		if seg.Start != e.start || seg.End != e.end {
			t.Errorf("segment %d: expected [%d,%d), got [%d,%d)", i, e.start, e.end, seg.Start, seg.End)
		}
	}
	if p.Segments[3].RedirectOut != "top.txt" {
		t.Errorf("expected last stage redirect top.txt, got %q", p.Segments[3].RedirectOut)
	}
	if got := p.Names(); !reflect.DeepEqual(got, []string{"grep", "sort", "uniq", "head"}) {
		t.Errorf("unexpected names %v", got)
	}
}

func TestBuildStageCountMatchesPipes(t *testing.T) {
	for n := 1; n <= 6; n++ {
		var tokens []string
		for i := 0; i < n; i++ {
			if i > 0 {
				tokens = append(tokens, OpPipe)
			}
			tokens = append(tokens, "cat")
		}
		p, err := Build(tokens)
		if err != nil {
			t.Fatal(err)
		}
		if p.Len() != n {
			t.Errorf("expected %d stages, got %d", n, p.Len())
		}
	}
}

func TestBuildEmptySegments(t *testing.T) {
	cases := [][]string{
		{"|", "cmd"},
		{"cmd", "|"},
		{"cmd1", "|", "|", "cmd2"},
		{"|"},
		{},
		{"cat", "|", ">", "x"},
	}
	for _, tokens := range cases {
		_, err := Build(tokens)
		if !errors.Is(err, ErrEmptySegment) {
			t.Errorf("%v: expected ErrEmptySegment, got %v", tokens, err)
		}
	}
}

func TestBuildMalformedRedirect(t *testing.T) {
	_, err := Build([]string{"cat", "<", "|", "wc"})
	if !errors.Is(err, ErrMalformedRedirect) {
		t.Errorf("expected ErrMalformedRedirect, got %v", err)
	}
}
