package commands

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Evaluation errors. ErrInvalidExpression covers syntax problems; ErrEvaluation
// covers well-formed expressions with undefined results (division by zero,
// overflow to a non-finite value).
var (
	ErrInvalidExpression = errors.New("invalid expression")
	ErrEvaluation        = errors.New("expression could not be evaluated")
)

// Eval evaluates a basic arithmetic expression over real numbers with the four
// operators and parentheses. It is a recursive-descent parser over a closed
// token set; user input is never handed to anything that can execute code.
//
//	expr   := term (('+'|'-') term)*
//	term   := factor (('*'|'/') factor)*
//	factor := number | '(' expr ')' | ('+'|'-') factor
func Eval(input string) (float64, error) {
	p := &exprParser{input: input}
	p.skipSpaces()
	if p.eof() {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidExpression)
	}

	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}

	p.skipSpaces()
	if !p.eof() {
		return 0, fmt.Errorf("%w: unexpected %q at position %d", ErrInvalidExpression, p.input[p.pos], p.pos)
	}

	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, fmt.Errorf("%w: result is not finite", ErrEvaluation)
	}
	return value, nil
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *exprParser) peek() byte {
	return p.input[p.pos]
}

func (p *exprParser) skipSpaces() {
	for !p.eof() {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *exprParser) parseExpr() (float64, error) {
	value, err := p.parseTerm()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpaces()
		if p.eof() {
			return value, nil
		}
		switch p.peek() {
		case '+':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			value += rhs
		case '-':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			value -= rhs
		default:
			return value, nil
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	value, err := p.parseFactor()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpaces()
		if p.eof() {
			return value, nil
		}
		switch p.peek() {
		case '*':
			p.pos++
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			value *= rhs
		case '/':
			p.pos++
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				return 0, fmt.Errorf("%w: division by zero", ErrEvaluation)
			}
			value /= rhs
		default:
			return value, nil
		}
	}
}

func (p *exprParser) parseFactor() (float64, error) {
	p.skipSpaces()
	if p.eof() {
		return 0, fmt.Errorf("%w: unexpected end of input", ErrInvalidExpression)
	}

	switch p.peek() {
	case '+':
		p.pos++
		return p.parseFactor()
	case '-':
		p.pos++
		value, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return -value, nil
	case '(':
		p.pos++
		value, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if p.eof() || p.peek() != ')' {
			return 0, fmt.Errorf("%w: missing closing parenthesis", ErrInvalidExpression)
		}
		p.pos++
		return value, nil
	}

	return p.parseNumber()
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	sawDigit := false
	sawDot := false

	for !p.eof() {
		c := p.peek()
		switch {
		case c >= '0' && c <= '9':
			sawDigit = true
			p.pos++
		case c == '.':
			if sawDot {
				return 0, fmt.Errorf("%w: malformed number at position %d", ErrInvalidExpression, start)
			}
			sawDot = true
			p.pos++
		default:
			goto done
		}
	}

done:
	if !sawDigit {
		var got string
		if p.eof() {
			got = "end of input"
		} else {
			got = strconv.QuoteRune(rune(p.peek()))
		}
		return 0, fmt.Errorf("%w: expected number, got %s at position %d", ErrInvalidExpression, got, p.pos)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(p.input[start:p.pos]), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed number %q", ErrInvalidExpression, p.input[start:p.pos])
	}
	return value, nil
}
