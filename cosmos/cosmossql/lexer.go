// Copyright 2026 The Go Cloud Development Kit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cosmossql

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// An Error is a syntax or semantic error in a query.
type Error struct {
	// Pos is the byte offset in the query text where the problem was found.
	Pos int
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("cosmossql: syntax error at position %d: %s", e.Pos, e.Msg)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokKeyword
	tokNumber
	tokString
	tokParam
	tokPunct
)

type token struct {
	kind tokenKind
	// text is the token as written, except for keywords which are upper-cased,
	// and strings which are unquoted.
	text string
	// raw is the token as written.
	raw string
	num float64
	pos int
}

var keywords = map[string]bool{
	"SELECT":    true,
	"TOP":       true,
	"VALUE":     true,
	"FROM":      true,
	"AS":        true,
	"WHERE":     true,
	"AND":       true,
	"OR":        true,
	"NOT":       true,
	"IN":        true,
	"ORDER":     true,
	"BY":        true,
	"ASC":       true,
	"DESC":      true,
	"OFFSET":    true,
	"LIMIT":     true,
	"TRUE":      true,
	"FALSE":     true,
	"NULL":      true,
	"UNDEFINED": true,
}

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for {
		for i < len(src) && isSpace(src[i]) {
			i++
		}
		if i >= len(src) {
			toks = append(toks, token{kind: tokEOF, pos: i})
			return toks, nil
		}
		start := i
		c := src[i]
		switch {
		case isIdentStart(c):
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			word := src[start:i]
			if up := strings.ToUpper(word); keywords[up] {
				toks = append(toks, token{kind: tokKeyword, text: up, raw: word, pos: start})
			} else {
				toks = append(toks, token{kind: tokIdent, text: word, raw: word, pos: start})
			}
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
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
					i = j
					for i < len(src) && isDigit(src[i]) {
						i++
					}
				}
			}
			f, err := strconv.ParseFloat(src[start:i], 64)
			if err != nil {
				return nil, &Error{start, fmt.Sprintf("invalid number %q", src[start:i])}
			}
			toks = append(toks, token{kind: tokNumber, raw: src[start:i], text: src[start:i], num: f, pos: start})
		case c == '\'' || c == '"':
			s, n, err := lexString(src[i:])
			if err != nil {
				return nil, &Error{start, err.Error()}
			}
			i += n
			toks = append(toks, token{kind: tokString, text: s, raw: src[start:i], pos: start})
		case c == '@':
			i++
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			if i == start+1 {
				return nil, &Error{start, "parameter name expected after '@'"}
			}
			toks = append(toks, token{kind: tokParam, text: src[start:i], raw: src[start:i], pos: start})
		default:
			if i+1 < len(src) {
				switch two := src[i : i+2]; two {
				case "!=", "<>", "<=", ">=":
					i += 2
					toks = append(toks, token{kind: tokPunct, text: two, raw: two, pos: start})
					continue
				}
			}
			if strings.IndexByte("*,.()[]=<>+-/%", c) < 0 {
				r, _ := utf8.DecodeRuneInString(src[i:])
				return nil, &Error{start, fmt.Sprintf("unexpected character %q", r)}
			}
			i++
			toks = append(toks, token{kind: tokPunct, text: string(c), raw: string(c), pos: start})
		}
	}
}

// lexString scans a quoted string at the start of s, returning its value and
// the number of bytes consumed.
func lexString(s string) (string, int, error) {
	quote := s[0]
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == quote:
			return b.String(), i + 1, nil
		case c == '\\':
			i++
			if i >= len(s) {
				return "", 0, fmt.Errorf("unterminated string")
			}
			switch e := s[i]; e {
			case '\'', '"', '\\', '/':
				b.WriteByte(e)
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'u':
				if i+4 >= len(s) {
					return "", 0, fmt.Errorf("invalid unicode escape")
				}
				n, err := strconv.ParseUint(s[i+1:i+5], 16, 32)
				if err != nil {
					return "", 0, fmt.Errorf("invalid unicode escape %q", s[i-1:i+5])
				}
				b.WriteRune(rune(n))
				i += 4
			default:
				return "", 0, fmt.Errorf("unknown escape sequence \\%c", e)
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, fmt.Errorf("unterminated string")
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
