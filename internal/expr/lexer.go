package expr

import (
	"strconv"
	"unicode/utf8"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	typ tokenType
	val string
	num float64
	pos int // 1-based column
}

func (t token) describe() string {
	if t.typ == tokEOF {
		return "end of expression"
	}
	return strconv.Quote(t.val)
}

// tokenize splits src into tokens, always ending with a tokEOF.
func tokenize(src string) ([]token, error) {
	tokens := make([]token, 0, len(src)/2+1)
	i := 0
	for i < len(src) {
		c := src[i]
		start := i
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '\n' || c == '\r':
			// Expressions are stored one per line.
			return nil, errorf(SyntaxError, start+1, "line break in expression")
		case isDigit(c) || c == '.':
			i = scanNumber(src, i)
			text := src[start:i]
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, errorf(SyntaxError, start+1, "invalid number %q", text)
			}
			tokens = append(tokens, token{typ: tokNumber, val: text, num: v, pos: start + 1})
		case isAlpha(c):
			i++
			for i < len(src) && (isAlpha(src[i]) || isDigit(src[i])) {
				i++
			}
			tokens = append(tokens, token{typ: tokIdent, val: src[start:i], pos: start + 1})
		case c == '+' || c == '-' || c == '*' || c == '/' || c == '^' || c == '%':
			i++
			tokens = append(tokens, token{typ: tokOp, val: string(c), pos: start + 1})
		case c == '(':
			i++
			tokens = append(tokens, token{typ: tokLParen, val: "(", pos: start + 1})
		case c == ')':
			i++
			tokens = append(tokens, token{typ: tokRParen, val: ")", pos: start + 1})
		case c == ',':
			i++
			tokens = append(tokens, token{typ: tokComma, val: ",", pos: start + 1})
		default:
			r, _ := utf8.DecodeRuneInString(src[i:])
			return nil, errorf(SyntaxError, start+1, "unexpected character %q", r)
		}
	}
	tokens = append(tokens, token{typ: tokEOF, pos: len(src) + 1})
	return tokens, nil
}

// scanNumber returns the end offset of the numeric literal starting at i.
// An exponent is only consumed when digits follow it, so "2e" stays "2" "e".
func scanNumber(src string, i int) int {
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}
