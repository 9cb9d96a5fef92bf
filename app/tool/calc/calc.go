package calc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Evaluate computes a plain arithmetic expression with + - * / ^,
// parentheses and unary minus. Anything else is rejected.
func Evaluate(expr string) (float64, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return 0, err
	}
	if len(tokens) == 0 {
		return 0, fmt.Errorf("empty expression")
	}

	rpn, err := toRPN(tokens)
	if err != nil {
		return 0, err
	}

	return evalRPN(rpn)
}

// Format renders a result without a trailing ".000000" for whole numbers.
func Format(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', 10, 64)
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokOperator
	tokLeftParen
	tokRightParen
)

type token struct {
	kind  tokenKind
	value float64
	op    byte
}

func tokenize(expr string) ([]token, error) {
	var tokens []token

	runes := []rune(strings.TrimSpace(expr))
	for i := 0; i < len(runes); {
		r := runes[i]

		switch {
		case unicode.IsSpace(r):
			i++

		case unicode.IsDigit(r) || r == '.':
			j := i
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.' || runes[j] == ',') {
				j++
			}
			raw := strings.ReplaceAll(string(runes[i:j]), ",", ".")
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("bad number %q: %w", raw, err)
			}
			tokens = append(tokens, token{kind: tokNumber, value: v})
			i = j

		case r == '(':
			tokens = append(tokens, token{kind: tokLeftParen})
			i++

		case r == ')':
			tokens = append(tokens, token{kind: tokRightParen})
			i++

		case r == '+' || r == '-' || r == '*' || r == '/' || r == '^':
			op := byte(r)
			// Unary minus at expression or group start becomes "0 -".
			if op == '-' && startsOperand(tokens) {
				tokens = append(tokens, token{kind: tokNumber, value: 0})
			}
			tokens = append(tokens, token{kind: tokOperator, op: op})
			i++

		case r == '×':
			tokens = append(tokens, token{kind: tokOperator, op: '*'})
			i++

		case r == '÷' || r == ':':
			tokens = append(tokens, token{kind: tokOperator, op: '/'})
			i++

		default:
			return nil, fmt.Errorf("unexpected character %q", string(r))
		}
	}

	return tokens, nil
}

func startsOperand(tokens []token) bool {
	if len(tokens) == 0 {
		return true
	}
	last := tokens[len(tokens)-1]
	return last.kind == tokOperator || last.kind == tokLeftParen
}

func precedence(op byte) int {
	switch op {
	case '+', '-':
		return 1
	case '*', '/':
		return 2
	case '^':
		return 3
	}
	return 0
}

func toRPN(tokens []token) ([]token, error) {
	var out, stack []token

	for _, tok := range tokens {
		switch tok.kind {
		case tokNumber:
			out = append(out, tok)

		case tokOperator:
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.kind != tokOperator {
					break
				}
				// ^ is right-associative, the rest are left-associative.
				if precedence(top.op) > precedence(tok.op) ||
					(precedence(top.op) == precedence(tok.op) && tok.op != '^') {
					out = append(out, top)
					stack = stack[:len(stack)-1]
					continue
				}
				break
			}
			stack = append(stack, tok)

		case tokLeftParen:
			stack = append(stack, tok)

		case tokRightParen:
			matched := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.kind == tokLeftParen {
					matched = true
					break
				}
				out = append(out, top)
			}
			if !matched {
				return nil, fmt.Errorf("unbalanced parentheses")
			}
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.kind == tokLeftParen {
			return nil, fmt.Errorf("unbalanced parentheses")
		}
		out = append(out, top)
	}

	return out, nil
}

func evalRPN(rpn []token) (float64, error) {
	var stack []float64

	for _, tok := range rpn {
		if tok.kind == tokNumber {
			stack = append(stack, tok.value)
			continue
		}

		if len(stack) < 2 {
			return 0, fmt.Errorf("malformed expression")
		}
		b := stack[len(stack)-1]
		a := stack[len(stack)-2]
		stack = stack[:len(stack)-2]

		var v float64
		switch tok.op {
		case '+':
			v = a + b
		case '-':
			v = a - b
		case '*':
			v = a * b
		case '/':
			if b == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			v = a / b
		case '^':
			v = math.Pow(a, b)
		}
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, fmt.Errorf("result out of range")
		}
		stack = append(stack, v)
	}

	if len(stack) != 1 {
		return 0, fmt.Errorf("malformed expression")
	}
	return stack[0], nil
}
