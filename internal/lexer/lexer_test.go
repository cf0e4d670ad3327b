package lexer_test

import (
	"testing"

	"github.com/ergo-lang/ergo/internal/arena"
	"github.com/ergo-lang/ergo/internal/diag"
	"github.com/ergo-lang/ergo/internal/lexer"
	"github.com/stretchr/testify/require"
)

func lexString(t *testing.T, src string) ([]lexer.Token, *diag.Sink) {
	t.Helper()
	a := arena.New()
	d := diag.NewSink("test.cask")
	toks, _ := lexer.Lex("test.cask", []byte(src), a, d)
	return toks, d
}

func kinds(toks []lexer.Token) []lexer.TokenKind {
	out := make([]lexer.TokenKind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestKeywordsAndIdents(t *testing.T) {
	toks, d := lexString(t, "fun entry class struct enum pub lock seal def let const if else elif return true false null for match new in break continue bring cask macro foobar")
	require.True(t, d.OK())

	want := []lexer.TokenKind{
		lexer.KW_FUN, lexer.KW_ENTRY, lexer.KW_CLASS, lexer.KW_STRUCT, lexer.KW_ENUM,
		lexer.KW_PUB, lexer.KW_LOCK, lexer.KW_SEAL, lexer.KW_DEF, lexer.KW_LET,
		lexer.KW_CONST, lexer.KW_IF, lexer.KW_ELSE, lexer.KW_ELIF, lexer.KW_RETURN,
		lexer.KW_TRUE, lexer.KW_FALSE, lexer.KW_NULL, lexer.KW_FOR, lexer.KW_MATCH,
		lexer.KW_NEW, lexer.KW_IN, lexer.KW_BREAK, lexer.KW_CONTINUE, lexer.KW_BRING,
		lexer.KW_CASK, lexer.KW_MACRO, lexer.IDENT,
	}
	// trailing SEMI (ASI at EOF, since IDENT is terminating) + EOF
	require.Equal(t, append(want, lexer.SEMI, lexer.EOF), kinds(toks))
}

func TestTwoCharOperators(t *testing.T) {
	toks, d := lexString(t, "== != <= >= && || => += -= *= /= ??")
	require.True(t, d.OK())
	want := []lexer.TokenKind{
		lexer.EQ, lexer.NEQ, lexer.LE, lexer.GE, lexer.AND, lexer.OR, lexer.FATARROW,
		lexer.PLUSEQ, lexer.MINUSEQ, lexer.STAREQ, lexer.SLASHEQ, lexer.COALESCE, lexer.EOF,
	}
	require.Equal(t, want, kinds(toks))
}

// Boundary scenario 1: ASI after `}`.
func TestASIAfterBrace(t *testing.T) {
	src := "fun f() ((--)) { let x = 1 }\nfun g() ((--)) {}"
	toks, d := lexString(t, src)
	require.True(t, d.OK())

	semiCount := 0
	for i, tok := range toks {
		if tok.Kind == lexer.SEMI {
			semiCount++
			// each must sit right after a '}': one between the two fun
			// declarations, one before EOF.
			require.Equal(t, lexer.RBRACE, toks[i-1].Kind)
		}
	}
	require.Equal(t, 2, semiCount, "one inserted SEMI between the two decls, plus the final SEMI at EOF")
}

// Boundary scenario 2: return-mode void.
func TestReturnModeVoid(t *testing.T) {
	toks, d := lexString(t, "fun k() ((--)) { return }")
	require.True(t, d.OK())

	want := []lexer.TokenKind{
		lexer.KW_FUN, lexer.IDENT, lexer.LPAREN, lexer.RPAREN,
		lexer.RET_L, lexer.RET_VOID, lexer.RET_R,
		lexer.LBRACE, lexer.KW_RETURN, lexer.RBRACE, lexer.SEMI, lexer.EOF,
	}
	require.Equal(t, want, kinds(toks))
}

func TestLineCommentOutsideReturnMode(t *testing.T) {
	toks, d := lexString(t, "let x = 1 -- this is a comment\nlet y = 2")
	require.True(t, d.OK())
	want := []lexer.TokenKind{
		lexer.KW_LET, lexer.IDENT, lexer.ASSIGN, lexer.INT, lexer.SEMI,
		lexer.KW_LET, lexer.IDENT, lexer.ASSIGN, lexer.INT, lexer.SEMI, lexer.EOF,
	}
	require.Equal(t, want, kinds(toks))
}

// Boundary scenario 3: string with placeholder and format.
func TestStringPlaceholderWithFormat(t *testing.T) {
	toks, d := lexString(t, `"hi <user.name:>"`)
	require.True(t, d.OK())
	require.Len(t, toks, 2) // STR, EOF
	str := toks[0]
	require.Equal(t, lexer.STR, str.Kind)
	require.Len(t, str.Parts, 2)
	require.Equal(t, lexer.PartText, str.Parts[0].Kind)
	require.Equal(t, "hi ", str.Parts[0].Text)
	require.Equal(t, lexer.PartExprRaw, str.Parts[1].Kind)
	require.Equal(t, "user.name:", str.Parts[1].Text)
}

// Boundary scenario 4 relies on parser-level validation (§4.5); the lexer
// only needs to find the closing '>' and hand the raw text onward.
func TestStringPlaceholderWithOperatorIsCapturedRaw(t *testing.T) {
	toks, d := lexString(t, `"<a+b>"`)
	require.True(t, d.OK())
	require.Equal(t, "a+b", toks[0].Parts[0].Text)
}

func TestUnterminatedStringAnchoredAtOpenQuote(t *testing.T) {
	_, d := lexString(t, "\"abc\ndef\"")
	require.False(t, d.OK())
	dg, _ := d.Diagnostic()
	require.Equal(t, 1, dg.Line)
	require.Equal(t, 1, dg.Col)
	require.Contains(t, dg.Message, "unterminated string")
}

func TestUnicodeEscape(t *testing.T) {
	toks, d := lexString(t, `"\u{48}\u{65}\u{6c}\u{6c}\u{6f}"`)
	require.True(t, d.OK())
	require.Equal(t, "Hello", toks[0].Parts[0].Text)
}

func TestBadUnicodeEscape(t *testing.T) {
	_, d := lexString(t, `"\u{}"`)
	require.False(t, d.OK())
	dg, _ := d.Diagnostic()
	require.Contains(t, dg.Message, "bad \\u{...} escape")
}

func TestUnknownEscapeRejected(t *testing.T) {
	_, d := lexString(t, `"\q"`)
	require.False(t, d.OK())
	dg, _ := d.Diagnostic()
	require.Contains(t, dg.Message, "unknown escape")
}

func TestConsecutiveSemiCoalesced(t *testing.T) {
	toks, d := lexString(t, "let x = 1;;;\nlet y = 2")
	require.True(t, d.OK())
	for i := 1; i < len(toks); i++ {
		if toks[i].Kind == lexer.SEMI {
			require.NotEqual(t, lexer.SEMI, toks[i-1].Kind, "no two adjacent SEMI tokens")
		}
	}
}

func TestBalancedBracketsReturnToZeroNesting(t *testing.T) {
	// Exercised indirectly: a well-formed nested structure lexes without
	// leaving unmatched return-mode state, which would otherwise make
	// trailing `((`/`))` ambiguous in a following snippet.
	toks, d := lexString(t, "fun f(a = Int) ((Int)) { return a }")
	require.True(t, d.OK())
	require.NotEmpty(t, toks)
}
