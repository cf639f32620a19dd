package expr

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPow
	tokLParen
	tokRParen
	tokComma
	tokAssign
	tokSep // newline or semicolon, terminates a statement
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of formula"
	case tokNumber:
		return "number"
	case tokIdent:
		return "identifier"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	case tokStar:
		return "'*'"
	case tokSlash:
		return "'/'"
	case tokPow:
		return "'**'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	case tokAssign:
		return "'='"
	case tokSep:
		return "end of statement"
	default:
		return "unknown token"
	}
}

type token struct {
	kind tokenKind
	text string
	val  float64 // decoded value for tokNumber
	pos  int     // byte offset of the token start
}

// lex scans src into a token stream terminated by tokEOF. Runs of blank
// separators collapse into a single tokSep.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	emit := func(kind tokenKind, text string, pos int) {
		if kind == tokSep && (len(toks) == 0 || toks[len(toks)-1].kind == tokSep) {
			return // skip leading and repeated separators
		}
		toks = append(toks, token{kind: kind, text: text, pos: pos})
	}

	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '\n' || c == ';':
			emit(tokSep, string(c), i)
			i++
		case c == '#': // comment to end of line
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c >= '0' && c <= '9' || c == '.':
			start := i
			i = scanNumber(src, i)
			text := src[start:i]
			val, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &CompileError{Msg: fmt.Sprintf("invalid number %q", text), Pos: start}
			}
			toks = append(toks, token{kind: tokNumber, text: text, val: val, pos: start})
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: start})
		case c == '*':
			if i+1 < len(src) && src[i+1] == '*' {
				emit(tokPow, "**", i)
				i += 2
			} else {
				emit(tokStar, "*", i)
				i++
			}
		case c == '^':
			emit(tokPow, "^", i)
			i++
		case c == '+':
			emit(tokPlus, "+", i)
			i++
		case c == '-':
			emit(tokMinus, "-", i)
			i++
		case c == '/':
			emit(tokSlash, "/", i)
			i++
		case c == '(':
			emit(tokLParen, "(", i)
			i++
		case c == ')':
			emit(tokRParen, ")", i)
			i++
		case c == ',':
			emit(tokComma, ",", i)
			i++
		case c == '=':
			emit(tokAssign, "=", i)
			i++
		default:
			return nil, &CompileError{Msg: fmt.Sprintf("unexpected character %q", string(c)), Pos: i}
		}
	}

	// Drop a trailing separator so the parser only sees separators between
	// statements.
	if len(toks) > 0 && toks[len(toks)-1].kind == tokSep {
		toks = toks[:len(toks)-1]
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})

	return toks, nil
}

// scanNumber consumes a float literal (123, 1.5, .5, 1e-3) starting at i and
// returns the index one past its end.
func scanNumber(src string, i int) int {
	for i < len(src) && src[i] >= '0' && src[i] <= '9' {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && src[i] >= '0' && src[i] <= '9' {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && src[j] >= '0' && src[j] <= '9' {
			i = j
			for i < len(src) && src[i] >= '0' && src[i] <= '9' {
				i++
			}
		}
	}

	return i
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

// splitDecl splits a comma-separated parameter declaration into names,
// dropping empty entries. Name validity is checked by the caller.
func splitDecl(decl string) []string {
	var names []string
	for _, part := range strings.Split(decl, ",") {
		name := strings.TrimSpace(part)
		if name != "" {
			names = append(names, name)
		}
	}

	return names
}
