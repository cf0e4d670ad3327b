package diag_test

import (
	"testing"

	"github.com/ergo-lang/ergo/internal/diag"
	"github.com/stretchr/testify/require"
)

func TestSinkStartsOK(t *testing.T) {
	s := diag.NewSink("a.cask")
	require.True(t, s.OK())
	_, ok := s.Diagnostic()
	require.False(t, ok)
}

func TestFirstReportFreezes(t *testing.T) {
	s := diag.NewSink("a.cask")
	s.Report(diag.StageLexer, 3, 7, "unexpected character %q", '$')
	require.False(t, s.OK())

	d, ok := s.Diagnostic()
	require.True(t, ok)
	require.Equal(t, "a.cask", d.Path)
	require.Equal(t, 3, d.Line)
	require.Equal(t, 7, d.Col)
	require.Contains(t, d.Message, "unexpected character")
}

func TestSecondReportIsNoOp(t *testing.T) {
	s := diag.NewSink("a.cask")
	s.Report(diag.StageLexer, 1, 1, "first")
	s.Report(diag.StageParser, 99, 99, "second")

	d, _ := s.Diagnostic()
	require.Equal(t, "first", d.Message)
	require.Equal(t, 1, d.Line)
}
