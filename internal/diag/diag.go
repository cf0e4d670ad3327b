// Package diag implements the single-slot diagnostic sink shared by the
// lexer and the parser: the first error reported freezes the sink, and
// every later report is a no-op. There is no accumulation and no
// recovery; a frozen sink is the signal callers use to abort a parse.
package diag

import "fmt"

// Stage identifies which phase produced a diagnostic.
type Stage string

const (
	StageLexer  Stage = "lexer"
	StageParser Stage = "parser"
)

// Diagnostic is the payload carried by a frozen Sink.
type Diagnostic struct {
	Stage   Stage
	Path    string
	Line    int
	Col     int
	Message string
}

func (d Diagnostic) String() string {
	if d.Path == "" {
		return fmt.Sprintf("%d:%d: %s", d.Line, d.Col, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", d.Path, d.Line, d.Col, d.Message)
}

// Sink holds at most one Diagnostic. The zero value is ready to use.
type Sink struct {
	path   string
	frozen bool
	d      Diagnostic
}

// NewSink returns a Sink scoped to the given source path.
func NewSink(path string) *Sink {
	return &Sink{path: path}
}

// OK reports whether no diagnostic has been recorded yet.
func (s *Sink) OK() bool {
	return !s.frozen
}

// Report records a diagnostic at (line, col) if the sink is not already
// frozen. Subsequent calls after the first are no-ops, matching the
// fail-fast policy: the first error wins and nothing else is produced.
func (s *Sink) Report(stage Stage, line, col int, format string, args ...any) {
	if s.frozen {
		return
	}
	s.frozen = true
	s.d = Diagnostic{
		Stage:   stage,
		Path:    s.path,
		Line:    line,
		Col:     col,
		Message: fmt.Sprintf(format, args...),
	}
}

// Diagnostic returns the recorded diagnostic and whether one exists.
func (s *Sink) Diagnostic() (Diagnostic, bool) {
	if !s.frozen {
		return Diagnostic{}, false
	}
	return s.d, true
}
