package meta

import (
	"strconv"
	"strings"

	"fortio.org/safecast"

	"modbind/internal/ast"
	"modbind/internal/source"
)

// ParseArgs splits raw into arguments. base is the span of raw inside its
// file; argument spans are derived from it. Errors are *Error.
func ParseArgs(raw string, base source.Span) ([]ast.Arg, error) {
	p := argParser{src: raw, base: base}
	return p.parse()
}

type argParser struct {
	src  string
	pos  int
	base source.Span
}

func (p *argParser) parse() ([]ast.Arg, error) {
	var (
		args        []ast.Arg
		expectEntry = true
	)
	for {
		p.skipSpace()
		if p.eof() {
			break
		}
		if p.peek() == ',' {
			if expectEntry {
				return nil, p.errAt(p.pos, p.pos+1, "unexpected ','")
			}
			p.pos++
			expectEntry = true
			continue
		}
		if !expectEntry && !p.sawSeparator() {
			return nil, p.errAt(p.pos, p.pos+1, "expected separator between arguments")
		}
		arg, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		expectEntry = false
	}
	if expectEntry && len(args) > 0 {
		return nil, p.errAt(len(p.src), len(p.src), "trailing ','")
	}
	return args, nil
}

func (p *argParser) parseArg() (ast.Arg, error) {
	start := p.pos
	key := p.ident()
	if key == "" {
		return ast.Arg{}, p.errAt(start, start+1, "expected argument name")
	}
	arg := ast.Arg{Key: key}
	if !p.eof() && p.peek() == '=' {
		p.pos++
		value, err := p.value()
		if err != nil {
			return ast.Arg{}, err
		}
		arg.Value = value
		arg.HasValue = true
	}
	arg.Span = p.span(start, p.pos)
	return arg, nil
}

func (p *argParser) value() (string, error) {
	start := p.pos
	if p.eof() || isSpace(p.peek()) || p.peek() == ',' {
		return "", p.errAt(start, start, "expected value after '='")
	}
	if p.peek() == '"' {
		end := p.pos + 1
		for end < len(p.src) {
			switch p.src[end] {
			case '\\':
				end += 2
				continue
			case '"':
				lit := p.src[p.pos : end+1]
				v, err := strconv.Unquote(lit)
				if err != nil {
					return "", p.errAt(start, end+1, "invalid quoted value "+lit)
				}
				p.pos = end + 1
				return v, nil
			}
			end++
		}
		return "", p.errAt(start, len(p.src), "unterminated quoted value")
	}
	for !p.eof() && !isSpace(p.peek()) && p.peek() != ',' {
		if p.peek() == '=' || p.peek() == '"' {
			return "", p.errAt(p.pos, p.pos+1, "unexpected "+strconv.QuoteRune(rune(p.peek()))+" in value")
		}
		p.pos++
	}
	return p.src[start:p.pos], nil
}

func (p *argParser) ident() string {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || (p.pos > start && '0' <= c && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

// sawSeparator reports whether the byte before pos is whitespace.
func (p *argParser) sawSeparator() bool {
	return p.pos > 0 && isSpace(p.src[p.pos-1])
}

func (p *argParser) skipSpace() {
	for !p.eof() && isSpace(p.peek()) {
		p.pos++
	}
}

func (p *argParser) eof() bool  { return p.pos >= len(p.src) }
func (p *argParser) peek() byte { return p.src[p.pos] }

func (p *argParser) span(start, end int) source.Span {
	if p.base == (source.Span{}) {
		return source.Span{}
	}
	off, err := safecast.Conv[int](p.base.Start)
	if err != nil {
		return p.base
	}
	return source.SpanFromOffsets(p.base.File, off+start, off+end)
}

func (p *argParser) errAt(start, end int, msg string) *Error {
	return &Error{Span: p.span(start, end), Msg: msg}
}

func isSpace(c byte) bool {
	return strings.IndexByte(" \t\r\n", c) >= 0
}
