package lexer

import (
	"strconv"
	"strings"

	"github.com/ergo-lang/ergo/internal/arena"
	"github.com/ergo-lang/ergo/internal/diag"
)

// lexer turns UTF-8 source into a token stream. It tracks the bracket
// nesting depth (for automatic semicolon insertion), the return-mode
// nesting depth (for the `((` ... `))` return-type grammar), and the kind
// of the last emitted token that was not a semicolon, since that is what
// both ASI and return-mode-open consult.
type lexer struct {
	path string
	src  []rune
	pos  int

	line int
	col  int

	nestDepth   int
	returnDepth int

	lastSignificant TokenKind
	lastReal        TokenKind
	haveLast        bool

	arena *arena.Arena
	diag  *diag.Sink

	toks []Token
}

// Lex scans src and returns its token stream. The bool result is false if
// and only if diag was frozen with an error during the scan; the token
// slice may be partially populated in that case and is safe to discard.
func Lex(path string, src []byte, a *arena.Arena, d *diag.Sink) ([]Token, bool) {
	l := &lexer{
		path:  path,
		src:   []rune(string(src)),
		line:  1,
		col:   1,
		arena: a,
		diag:  d,
	}
	l.run()
	return l.toks, d.OK()
}

func (l *lexer) run() {
	for l.diag.OK() {
		if !l.step() {
			return
		}
	}
}

func (l *lexer) fail(format string, args ...any) {
	l.diag.Report(diag.StageLexer, l.line, l.col, format, args...)
}

func (l *lexer) failAt(line, col int, format string, args ...any) {
	l.diag.Report(diag.StageLexer, line, col, format, args...)
}

func (l *lexer) atEOF() bool {
	return l.pos >= len(l.src)
}

func (l *lexer) peekAt(off int) rune {
	i := l.pos + off
	if i < 0 || i >= len(l.src) {
		return 0
	}
	return l.src[i]
}

func (l *lexer) peek() rune {
	return l.peekAt(0)
}

func (l *lexer) peek2() rune {
	return l.peekAt(1)
}

// advance consumes and returns the current rune, updating line/col.
func (l *lexer) advance() rune {
	ch := l.src[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *lexer) emit(kind TokenKind, text string, span Span) {
	tok := arena.Make(l.arena, Token{Kind: kind, Text: text, Span: span})
	l.toks = append(l.toks, *tok)
	if kind != SEMI {
		l.lastSignificant = kind
	}
	l.lastReal = kind
	l.haveLast = true
}

func (l *lexer) emitAt(kind TokenKind, text string, line, col int) {
	l.emit(kind, text, Span{Line: line, Col: col})
}

// step scans and emits at most one token (or none, for a consumed
// comment or a newline that inserts no SEMI); at EOF it emits the final
// SEMI, if one is due, and the EOF token, and returns false.
func (l *lexer) step() bool {
	// 1. skip ASCII whitespace.
	for !l.atEOF() {
		ch := l.peek()
		if ch == ' ' || ch == '\t' || ch == '\r' {
			l.advance()
			continue
		}
		break
	}

	if l.atEOF() {
		l.maybeInsertFinalSemi()
		l.emitAt(EOF, "", l.line, l.col)
		l.coalesceSemis()
		return false
	}

	startLine, startCol := l.line, l.col
	ch := l.peek()

	// 2. newline -> possible ASI.
	if ch == '\n' {
		l.advance()
		if l.nestDepth == 0 && l.haveLast && IsStatementTerminating(l.lastSignificant) {
			l.emitAt(SEMI, ";", startLine, startCol)
		}
		return true
	}

	// 3/4/5/6: return-mode triplets and `--` line comment.
	if ch == '(' && l.peek2() == '(' {
		if l.returnDepth == 0 && l.haveLast && l.lastSignificant == RPAREN {
			l.advance()
			l.advance()
			l.returnDepth++
			l.emitAt(RET_L, "((", startLine, startCol)
			return true
		}
	}
	if ch == ')' && l.peek2() == ')' {
		if l.returnDepth > 0 {
			l.advance()
			l.advance()
			l.returnDepth--
			l.emitAt(RET_R, "))", startLine, startCol)
			return true
		}
	}
	if ch == '-' && l.peek2() == '-' {
		if l.returnDepth > 0 {
			l.advance()
			l.advance()
			l.emitAt(RET_VOID, "--", startLine, startCol)
			return true
		}
		// line comment to end of line.
		l.advance()
		l.advance()
		for !l.atEOF() && l.peek() != '\n' {
			l.advance()
		}
		return true
	}

	// 7. two-character operators.
	if two, ok := l.twoCharOp(ch, l.peek2()); ok {
		l.advance()
		l.advance()
		l.emitAt(two, string(ch)+string(l.src[l.pos-1]), startLine, startCol)
		return true
	}

	// 8. explicit semicolon: does not update last_significant.
	if ch == ';' {
		l.advance()
		tok := arena.Make(l.arena, Token{Kind: SEMI, Text: ";", Span: Span{Line: startLine, Col: startCol}})
		l.toks = append(l.toks, *tok)
		l.lastReal = SEMI
		l.haveLast = true
		return true
	}

	// 9. single-character punctuation, bracket nesting.
	if kind, ok := singlePunct[ch]; ok {
		l.advance()
		switch ch {
		case '(', '[', '{':
			l.nestDepth++
		case ')', ']', '}':
			if l.nestDepth > 0 {
				l.nestDepth--
			}
		}
		l.emitAt(kind, string(ch), startLine, startCol)
		return true
	}

	// 10. meta tokens.
	if ch == '?' {
		l.advance()
		l.emitAt(QMARK, "?", startLine, startCol)
		return true
	}
	if ch == '#' {
		l.advance()
		l.emitAt(HASH, "#", startLine, startCol)
		return true
	}

	// 11. string literal.
	if ch == '"' {
		l.lexString(startLine, startCol)
		return l.diag.OK()
	}

	// 12. numbers.
	if ch >= '0' && ch <= '9' {
		l.lexNumber(startLine, startCol)
		return true
	}

	// 13. identifiers and keywords.
	if isIdentStart(ch) {
		l.lexIdent(startLine, startCol)
		return true
	}

	// 14. unexpected character.
	if ch >= 0x20 && ch < 0x7f {
		l.fail("unexpected character '%c' at line %d, column %d", ch, startLine, startCol)
	} else {
		l.fail("unexpected character '\\x%x' at line %d, column %d", ch, startLine, startCol)
	}
	return false
}

var twoCharTable = map[[2]rune]TokenKind{
	{'=', '='}: EQ,
	{'!', '='}: NEQ,
	{'<', '='}: LE,
	{'>', '='}: GE,
	{'&', '&'}: AND,
	{'|', '|'}: OR,
	{'=', '>'}: FATARROW,
	{'+', '='}: PLUSEQ,
	{'-', '='}: MINUSEQ,
	{'*', '='}: STAREQ,
	{'/', '='}: SLASHEQ,
	{'?', '?'}: COALESCE,
}

func (l *lexer) twoCharOp(a, b rune) (TokenKind, bool) {
	k, ok := twoCharTable[[2]rune{a, b}]
	return k, ok
}

var singlePunct = map[rune]TokenKind{
	'(': LPAREN,
	')': RPAREN,
	'[': LBRACKET,
	']': RBRACKET,
	'{': LBRACE,
	'}': RBRACE,
	',': COMMA,
	'.': DOT,
	':': COLON,
	'+': PLUS,
	'-': MINUS,
	'*': STAR,
	'/': SLASH,
	'%': PCT,
	'!': BANG,
	'=': ASSIGN,
	'<': LT,
	'>': GT,
	'|': PIPE,
}

func isIdentStart(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentCont(ch rune) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

func (l *lexer) lexIdent(startLine, startCol int) {
	var b strings.Builder
	for !l.atEOF() && isIdentCont(l.peek()) {
		b.WriteRune(l.advance())
	}
	text := b.String()
	if kind, ok := LookupKeyword(text); ok {
		l.emitAt(kind, text, startLine, startCol)
		return
	}
	l.emitAt(IDENT, text, startLine, startCol)
}

func (l *lexer) lexNumber(startLine, startCol int) {
	var b strings.Builder
	for !l.atEOF() && l.peek() >= '0' && l.peek() <= '9' {
		b.WriteRune(l.advance())
	}
	isFloat := false
	if l.peek() == '.' && l.peek2() >= '0' && l.peek2() <= '9' {
		isFloat = true
		b.WriteRune(l.advance())
		for !l.atEOF() && l.peek() >= '0' && l.peek() <= '9' {
			b.WriteRune(l.advance())
		}
	}
	text := b.String()
	kind := TokenKind(INT)
	if isFloat {
		kind = FLOAT
		v, _ := strconv.ParseFloat(text, 64)
		tok := arena.Make(l.arena, Token{Kind: FLOAT, Text: text, Span: Span{Line: startLine, Col: startCol}, FloatVal: v})
		l.toks = append(l.toks, *tok)
	} else {
		v, _ := strconv.ParseInt(text, 10, 64)
		tok := arena.Make(l.arena, Token{Kind: INT, Text: text, Span: Span{Line: startLine, Col: startCol}, IntVal: v})
		l.toks = append(l.toks, *tok)
	}
	l.lastSignificant = kind
	l.lastReal = kind
	l.haveLast = true
}

// lexString scans a string literal starting at the opening quote, which
// has not yet been consumed.
func (l *lexer) lexString(startLine, startCol int) {
	startPos := l.pos
	l.advance() // consume opening '"'
	var parts []StrPart
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			sp := arena.Make(l.arena, StrPart{Kind: PartText, Text: buf.String()})
			parts = append(parts, *sp)
			buf.Reset()
		}
	}

	for {
		if l.atEOF() {
			l.failAt(startLine, startCol, "unterminated string")
			return
		}
		ch := l.peek()
		if ch == '\n' {
			l.failAt(startLine, startCol, "unterminated string")
			return
		}
		if ch == '"' {
			l.advance()
			break
		}
		if ch == '\\' {
			l.advance()
			if !l.lexEscape(&buf) {
				return
			}
			continue
		}
		if ch == '<' {
			l.advance()
			flush()
			raw, ok := l.lexPlaceholder()
			if !ok {
				return
			}
			sp := arena.Make(l.arena, StrPart{Kind: PartExprRaw, Text: raw})
			parts = append(parts, *sp)
			continue
		}
		buf.WriteRune(l.advance())
	}
	flush()
	tok := arena.Make(l.arena, Token{Kind: STR, Text: string(l.src[startPos:l.pos]), Span: Span{Line: startLine, Col: startCol}, Parts: arena.MakeSlice(l.arena, parts)})
	l.toks = append(l.toks, *tok)
	l.lastSignificant = STR
	l.lastReal = STR
	l.haveLast = true
}

func (l *lexer) lexEscape(buf *strings.Builder) bool {
	if l.atEOF() {
		l.fail("unterminated string")
		return false
	}
	ch := l.advance()
	switch ch {
	case 'n':
		buf.WriteByte('\n')
	case 't':
		buf.WriteByte('\t')
	case 'r':
		buf.WriteByte('\r')
	case '\\':
		buf.WriteByte('\\')
	case '"':
		buf.WriteByte('"')
	case '<':
		buf.WriteByte('<')
	case '>':
		buf.WriteByte('>')
	case 'u':
		if l.peek() != '{' {
			l.fail("bad \\u{...} escape")
			return false
		}
		l.advance()
		var hex strings.Builder
		for !l.atEOF() && l.peek() != '}' {
			hex.WriteRune(l.advance())
		}
		if l.atEOF() {
			l.fail("bad \\u{...} escape")
			return false
		}
		l.advance() // consume '}'
		hexStr := hex.String()
		if len(hexStr) == 0 {
			l.fail("bad \\u{...} escape")
			return false
		}
		for _, c := range hexStr {
			if !isHexDigit(c) {
				l.fail("bad \\u{...} escape")
				return false
			}
		}
		cp, err := strconv.ParseInt(hexStr, 16, 64)
		if err != nil || cp > 0x10FFFF {
			l.fail("bad \\u{...} escape")
			return false
		}
		buf.WriteRune(rune(cp))
	default:
		l.fail("unknown escape")
		return false
	}
	return true
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// lexPlaceholder scans a <...> placeholder body, having already consumed
// the opening '<'. It returns the raw inner text, having consumed the
// closing '>'.
func (l *lexer) lexPlaceholder() (string, bool) {
	var raw strings.Builder

	if l.atEOF() || !isIdentStart(l.peek()) {
		l.fail("unterminated placeholder")
		return "", false
	}
	for !l.atEOF() && isIdentCont(l.peek()) {
		raw.WriteRune(l.advance())
	}

	if l.peek() == ':' {
		raw.WriteRune(l.advance())
		for {
			if l.atEOF() || l.peek() == '\n' {
				l.fail("unterminated placeholder")
				return "", false
			}
			if l.peek() == '>' {
				break
			}
			raw.WriteRune(l.advance())
		}
	} else {
	suffixLoop:
		for {
			switch {
			case l.peek() == '.' && isIdentStart(l.peek2()):
				raw.WriteRune(l.advance()) // '.'
				for !l.atEOF() && isIdentCont(l.peek()) {
					raw.WriteRune(l.advance())
				}
			case l.peek() == '[':
				raw.WriteRune(l.advance())
				depth := 1
				for depth > 0 {
					if l.atEOF() || l.peek() == '\n' {
						l.fail("unterminated placeholder")
						return "", false
					}
					c := l.peek()
					if c == '[' {
						depth++
					} else if c == ']' {
						depth--
					}
					raw.WriteRune(l.advance())
				}
			default:
				break suffixLoop
			}
		}
	}

	if l.peek() == '>' {
		l.advance()
		return raw.String(), true
	}

	// scan forward for the closing '>'.
	for {
		if l.atEOF() || l.peek() == '\n' {
			l.fail("unterminated placeholder")
			return "", false
		}
		if l.peek() == '<' {
			l.fail("invalid interpolation: nested '<' in placeholder")
			return "", false
		}
		if l.peek() == '>' {
			l.advance()
			return raw.String(), true
		}
		raw.WriteRune(l.advance())
	}
}

func (l *lexer) maybeInsertFinalSemi() {
	if l.nestDepth == 0 && l.haveLast && IsStatementTerminating(l.lastSignificant) {
		tok := arena.Make(l.arena, Token{Kind: SEMI, Text: ";", Span: Span{Line: l.line, Col: l.col}})
		l.toks = append(l.toks, *tok)
		l.lastReal = SEMI
	}
}

// coalesceSemis drops consecutive SEMI tokens in place, keeping the first
// of each run.
func (l *lexer) coalesceSemis() {
	out := l.toks[:0]
	prevWasSemi := false
	for _, t := range l.toks {
		if t.Kind == SEMI {
			if prevWasSemi {
				continue
			}
			prevWasSemi = true
		} else {
			prevWasSemi = false
		}
		out = append(out, t)
	}
	l.toks = out
}
