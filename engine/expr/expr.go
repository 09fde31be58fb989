// Package expr implements the condition expression language used by event
// preconditions, computed resource deltas, and ending triggers.
//
// Boolean precedence, loosest first: OR (`|`) splits before AND (`&`), so AND
// binds tighter; then leading `!` negation; then the fixed named conditions;
// then a single comparison. Anything unrecognized evaluates to false.
// Evaluation is a pure function of the resource and time snapshots supplied
// at construction.
package expr

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mkwok/lifecore/types"
)

// Evaluator evaluates expressions against frozen snapshots. Construct a new
// one whenever the underlying state may have changed.
type Evaluator struct {
	resources map[int]float64
	time      types.TimeInfo
}

// New creates an evaluator over the given snapshots.
func New(resources map[int]float64, ti types.TimeInfo) *Evaluator {
	return &Evaluator{resources: resources, time: ti}
}

var (
	reResource    = regexp.MustCompile(`^resource\[(\d+)\]$`)
	reTime        = regexp.MustCompile(`^time\[(\w+)\]$`)
	reCalc        = regexp.MustCompile(`^calc\[(.+)\]$`)
	reFloor       = regexp.MustCompile(`^floor\[(.+)\]$`)
	reConditional = regexp.MustCompile(`^conditional\[(.+?)\?(.+?):(.+?)\]$`)
	reSet         = regexp.MustCompile(`^set\[(\d+)\]=(\d+)$`)
	reReset       = regexp.MustCompile(`^reset\[(\d+)\]$`)

	// Unanchored: used for textual substitution inside calc[...].
	reResourceRef = regexp.MustCompile(`resource\[(\d+)\]`)
	reTimeRef     = regexp.MustCompile(`time\[(\w+)\]`)
)

// Resources whose collective range the named attribute conditions test.
var attributeIDs = []int{13, 14, 15, 16, 17, 18, 19, 20}

// Evaluate evaluates a boolean condition. Missing or empty conditions fail
// open (true); evaluation errors are logged and degrade to false, never
// propagated to the caller.
func (ev *Evaluator) Evaluate(condition string) bool {
	condition = strings.TrimSpace(condition)
	if condition == "" || condition == "always" {
		return true
	}
	if condition == "never" {
		return false
	}
	v, err := ev.evalCond(condition)
	if err != nil {
		slog.Warn("condition evaluation failed", "condition", condition, "error", err)
		return false
	}
	return v
}

func (ev *Evaluator) evalCond(condition string) (bool, error) {
	condition = strings.TrimSpace(condition)
	if condition == "" || condition == "always" {
		return true, nil
	}
	if condition == "never" {
		return false, nil
	}

	// OR: split first, so it binds loosest.
	if strings.Contains(condition, "|") {
		for _, part := range strings.Split(condition, "|") {
			v, err := ev.evalCond(part)
			if err != nil {
				return false, err
			}
			if v {
				return true, nil
			}
		}
		return false, nil
	}

	// AND.
	if strings.Contains(condition, "&") {
		for _, part := range strings.Split(condition, "&") {
			v, err := ev.evalCond(part)
			if err != nil {
				return false, err
			}
			if !v {
				return false, nil
			}
		}
		return true, nil
	}

	// NOT.
	if strings.HasPrefix(condition, "!") {
		v, err := ev.evalCond(condition[1:])
		return !v, err
	}

	// Named conditions. Matched by exact string ahead of the comparison
	// scan: two of the names contain comparison operators themselves.
	switch condition {
	case "rent_payment_failed":
		return ev.resources[2] < 2800, nil
	case "all_attributes>60":
		for _, id := range attributeIDs {
			if ev.resources[id] <= 60 {
				return false, nil
			}
		}
		return true, nil
	case "no_attribute<30":
		for _, id := range attributeIDs {
			if ev.resources[id] < 30 {
				return false, nil
			}
		}
		return true, nil
	}

	// Comparison: leftmost operator wins, longer operators checked first at
	// each position.
	if lhs, op, rhs, ok := splitComparison(condition); ok {
		lv, err := ev.evalNum(lhs)
		if err != nil {
			return false, err
		}
		rv, err := ev.evalNum(rhs)
		if err != nil {
			return false, err
		}
		switch op {
		case "==":
			return lv == rv, nil
		case "!=":
			return lv != rv, nil
		case ">=":
			return lv >= rv, nil
		case "<=":
			return lv <= rv, nil
		case ">":
			return lv > rv, nil
		case "<":
			return lv < rv, nil
		}
	}

	// Unrecognized conditions fail closed. Not an error.
	return false, nil
}

// splitComparison finds the leftmost comparison operator with a non-empty
// left side, trying two-character operators before one-character ones.
func splitComparison(s string) (lhs, op, rhs string, ok bool) {
	for i := 1; i < len(s); i++ {
		if i+1 < len(s) {
			switch s[i : i+2] {
			case "==", "!=", ">=", "<=":
				return s[:i], s[i : i+2], s[i+2:], len(s[i+2:]) > 0
			}
		}
		switch s[i] {
		case '>', '<':
			return s[:i], s[i : i+1], s[i+1:], len(s[i+1:]) > 0
		}
	}
	return "", "", "", false
}

// EvaluateExpression evaluates a numeric expression. Errors are logged and
// degrade to 0.
func (ev *Evaluator) EvaluateExpression(expression string) float64 {
	v, err := ev.evalNum(expression)
	if err != nil {
		slog.Warn("expression evaluation failed", "expression", expression, "error", err)
		return 0
	}
	return v
}

func (ev *Evaluator) evalNum(expression string) (float64, error) {
	expression = strings.TrimSpace(expression)

	if m := reResource.FindStringSubmatch(expression); m != nil {
		id, _ := strconv.Atoi(m[1])
		return ev.resources[id], nil
	}

	if m := reTime.FindStringSubmatch(expression); m != nil {
		return ev.timeProperty(m[1]), nil
	}

	if m := reCalc.FindStringSubmatch(expression); m != nil {
		return ev.evalCalc(m[1])
	}

	if m := reFloor.FindStringSubmatch(expression); m != nil {
		inner, err := ev.evalNum(m[1])
		if err != nil {
			return 0, err
		}
		return math.Floor(inner), nil
	}

	if m := reConditional.FindStringSubmatch(expression); m != nil {
		cond, err := ev.evalCond(m[1])
		if err != nil {
			return 0, err
		}
		if cond {
			return ev.evalNum(m[2])
		}
		return ev.evalNum(m[3])
	}

	if expression == "true" {
		return 1, nil
	}
	if expression == "false" {
		return 0, nil
	}

	if n, err := strconv.ParseFloat(expression, 64); err == nil {
		return n, nil
	}

	return 0, nil
}

// evalCalc substitutes resource/time references textually, then evaluates the
// remainder as restricted arithmetic.
func (ev *Evaluator) evalCalc(calc string) (float64, error) {
	sub := reResourceRef.ReplaceAllStringFunc(calc, func(ref string) string {
		m := reResourceRef.FindStringSubmatch(ref)
		id, _ := strconv.Atoi(m[1])
		return strconv.FormatFloat(ev.resources[id], 'f', -1, 64)
	})
	sub = reTimeRef.ReplaceAllStringFunc(sub, func(ref string) string {
		m := reTimeRef.FindStringSubmatch(ref)
		return strconv.FormatFloat(ev.timeProperty(m[1]), 'f', -1, 64)
	})
	return evalArithmetic(sub)
}

func (ev *Evaluator) timeProperty(property string) float64 {
	switch property {
	case "hour":
		return float64(ev.time.Hour)
	case "day":
		return float64(ev.time.Day)
	case "day_of_week":
		return float64(ev.time.DayOfWeek)
	case "workday":
		return boolToNum(ev.time.IsWorkday)
	case "weekend":
		return boolToNum(ev.time.IsWeekend)
	case "last_day_of_month":
		return boolToNum(ev.time.Day == 30)
	case "activated":
		// Reserved for scheduled-task activation. Always on for now.
		return 1
	default:
		return 0
	}
}

func boolToNum(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// SetOp is a recognized set[id]=value or reset[id] operation.
type SetOp struct {
	Resource int
	Value    float64
}

// EvaluateSetOperation recognizes the set/reset operators used by event
// effects. Returns false when the string is neither.
func (ev *Evaluator) EvaluateSetOperation(operation string) (SetOp, bool) {
	return ParseSetOperation(operation)
}

// ParseSetOperation is the stateless form of EvaluateSetOperation, usable at
// content-load time before any state exists.
func ParseSetOperation(operation string) (SetOp, bool) {
	operation = strings.TrimSpace(operation)
	if m := reSet.FindStringSubmatch(operation); m != nil {
		id, _ := strconv.Atoi(m[1])
		value, _ := strconv.ParseFloat(m[2], 64)
		return SetOp{Resource: id, Value: value}, true
	}
	if m := reReset.FindStringSubmatch(operation); m != nil {
		id, _ := strconv.Atoi(m[1])
		return SetOp{Resource: id, Value: 0}, true
	}
	return SetOp{}, false
}

// evalArithmetic parses and evaluates `expr` over digits, + - * / ( ) and the
// decimal point. Any other character is a hard failure.
func evalArithmetic(expr string) (float64, error) {
	expr = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, expr)
	if expr == "" {
		return 0, fmt.Errorf("empty arithmetic expression")
	}
	for _, r := range expr {
		switch {
		case r >= '0' && r <= '9':
		case r == '+' || r == '-' || r == '*' || r == '/' || r == '(' || r == ')' || r == '.':
		default:
			return 0, fmt.Errorf("illegal character %q in arithmetic expression", r)
		}
	}
	p := &arithParser{src: expr}
	v, err := p.parseSum()
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.src) {
		return 0, fmt.Errorf("unexpected %q at offset %d", p.src[p.pos], p.pos)
	}
	return v, nil
}

type arithParser struct {
	src string
	pos int
}

func (p *arithParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *arithParser) parseSum() (float64, error) {
	v, err := p.parseProduct()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			rhs, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			v += rhs
		case '-':
			p.pos++
			rhs, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			v -= rhs
		default:
			return v, nil
		}
	}
}

func (p *arithParser) parseProduct() (float64, error) {
	v, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			rhs, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			v *= rhs
		case '/':
			p.pos++
			rhs, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			v /= rhs
		default:
			return v, nil
		}
	}
}

func (p *arithParser) parseUnary() (float64, error) {
	if p.peek() == '-' {
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	}
	if p.peek() == '+' {
		p.pos++
		return p.parseUnary()
	}
	return p.parseAtom()
}

func (p *arithParser) parseAtom() (float64, error) {
	if p.peek() == '(' {
		p.pos++
		v, err := p.parseSum()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis at offset %d", p.pos)
		}
		p.pos++
		return v, nil
	}
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return 0, fmt.Errorf("expected number at offset %d", start)
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed number %q", p.src[start:p.pos])
	}
	return v, nil
}
