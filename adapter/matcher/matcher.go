// Package matcher contains the default implementation of [domain.Matcher]
// evaluating normalized criteria against raw documents.
package matcher

import (
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/vinicius-lino-figueiredo/godm/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/godm/adapter/fieldnavigator"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/pkg/structure"
)

var (
	// ErrMixedOperators is returned when user provides a query with mixed
	// use of normal fields and operators.
	ErrMixedOperators = errors.New("cannot mix operators and normal fields")
)

// ErrUnknownOperator is returned when user provides an unknown top level
// dollar field.
type ErrUnknownOperator struct {
	Operator string
}

// Error implements [error].
func (e ErrUnknownOperator) Error() string {
	return fmt.Sprintf("unknown operator %q", e.Operator)
}

// ErrUnknownComparison is returned when an unknown compare field is provided.
type ErrUnknownComparison struct {
	Comparison string
}

// Error implements [error].
func (e ErrUnknownComparison) Error() string {
	return fmt.Sprintf("unknown comparison %q", e.Comparison)
}

// ErrCompArgType is returned when a comparison operator is called with an
// argument of invalid type.
type ErrCompArgType struct {
	Comp   string
	Want   string
	Actual any
}

// Error implements [error].
func (e ErrCompArgType) Error() string {
	return fmt.Sprintf(
		"%s value should be of type %s, got %T",
		e.Comp, e.Want, e.Actual,
	)
}

const optionsKey = "$options"

// Matcher implements [domain.Matcher].
type Matcher struct {
	comparer       domain.Comparer
	fieldNavigator domain.FieldNavigator
	query          Query
}

// NewMatcher returns a new implementation of domain.Matcher.
func NewMatcher(options ...Option) domain.Matcher {
	m := &Matcher{
		comparer:       comparer.NewComparer(),
		fieldNavigator: fieldnavigator.NewFieldNavigator(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// SetQuery implements [domain.Matcher].
func (m *Matcher) SetQuery(criteria domain.Criteria) error {
	qry, err := m.makeQuery(criteria)
	if err == nil {
		m.query = qry
	}
	return err
}

func (m *Matcher) makeQuery(criteria map[string]any) (Query, error) {
	lo := LogicOp{Type: And}
	for key, value := range criteria {
		if !domain.IsOperator(key) {
			fr, err := m.makeFieldRule(key, value)
			if err != nil {
				return Query{}, err
			}
			lo.Rules = append(lo.Rules, fr)
			continue
		}

		var sub LogicOp
		var err error
		switch key {
		case domain.OpAnd:
			sub, err = m.makeLogicOp(And, key, value)
		case domain.OpOr:
			sub, err = m.makeLogicOp(Or, key, value)
		case domain.OpNor:
			sub, err = m.makeLogicOp(Nor, key, value)
		case domain.OpWhere:
			sub, err = m.makeWhere(value)
		default:
			return Query{}, ErrUnknownOperator{Operator: key}
		}
		if err != nil {
			return Query{}, err
		}
		lo.Sub = append(lo.Sub, sub)
	}
	return Query{Lo: []LogicOp{lo}}, nil
}

func (m *Matcher) makeLogicOp(typ uint8, name string, v any) (LogicOp, error) {
	lo := LogicOp{Type: typ}
	items, ok := structure.ToSlice(v)
	if !ok {
		return lo, ErrCompArgType{Comp: name, Want: "list", Actual: v}
	}
	lo.Sub = make([]LogicOp, 0, len(items))
	for _, item := range items {
		criteria, ok := structure.ToMap(item)
		if !ok {
			return lo, ErrCompArgType{Comp: name, Want: "list of documents", Actual: item}
		}
		qry, err := m.makeQuery(criteria)
		if err != nil {
			return lo, err
		}
		lo.Sub = append(lo.Sub, qry.Lo...)
	}
	return lo, nil
}

func (m *Matcher) makeWhere(v any) (LogicOp, error) {
	switch t := v.(type) {
	case func(domain.M) (bool, error):
		return LogicOp{Type: Where, Where: t}, nil
	case func(domain.M) bool:
		where := func(doc domain.M) (bool, error) { return t(doc), nil }
		return LogicOp{Type: Where, Where: where}, nil
	}
	return LogicOp{}, ErrCompArgType{Comp: domain.OpWhere, Want: "func(domain.M) (bool, error)", Actual: v}
}

func (m *Matcher) makeFieldRule(field string, obj any) (FieldRule, error) {
	addr, err := m.fieldNavigator.GetAddress(field)
	if err != nil {
		return FieldRule{}, err
	}

	if r, ok := obj.(*regexp.Regexp); ok {
		return FieldRule{Addr: addr, Conds: []Cond{{Op: Regex, Val: r}}}, nil
	}

	mapping, ok := structure.ToMap(obj)
	if !ok || len(mapping) == 0 {
		return FieldRule{Addr: addr, Conds: []Cond{{Op: Eq, Val: obj}}}, nil
	}

	dollar, err := m.ensureNotMixed(mapping)
	if err != nil {
		return FieldRule{}, err
	}
	if !dollar {
		return FieldRule{Addr: addr, Conds: []Cond{{Op: Eq, Val: obj}}}, nil
	}

	conds, err := m.makeConds(mapping)
	if err != nil {
		return FieldRule{}, err
	}
	return FieldRule{Addr: addr, Conds: conds}, nil
}

// ensureNotMixed reports whether every key is an operator, failing if only
// some of them are.
func (m *Matcher) ensureNotMixed(mapping map[string]any) (bool, error) {
	var dollar int
	for k := range mapping {
		if domain.IsOperator(k) {
			dollar++
		}
	}
	if dollar > 0 && dollar != len(mapping) {
		return false, ErrMixedOperators
	}
	return dollar > 0, nil
}

func (m *Matcher) makeConds(mapping map[string]any) ([]Cond, error) {
	conds := make([]Cond, 0, len(mapping))
	for key, value := range mapping {
		if key == optionsKey {
			continue
		}
		var cond Cond
		var err error
		if key == domain.OpRegex {
			cond, err = m.makeRegex(value, mapping[optionsKey])
		} else {
			cond, err = m.makeCond(key, value)
		}
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

func (m *Matcher) makeCond(k string, v any) (Cond, error) {
	switch k {
	case domain.OpEq:
		return Cond{Op: Eq, Val: v}, nil
	case domain.OpNe:
		return Cond{Op: Ne, Val: v}, nil
	case domain.OpLt:
		return Cond{Op: Lt, Val: v}, nil
	case domain.OpLte:
		return Cond{Op: Lte, Val: v}, nil
	case domain.OpGt:
		return Cond{Op: Gt, Val: v}, nil
	case domain.OpGte:
		return Cond{Op: Gte, Val: v}, nil
	case domain.OpIn:
		return m.makeList(In, k, v)
	case domain.OpNin:
		return m.makeList(Nin, k, v)
	case domain.OpAll:
		return m.makeList(All, k, v)
	case domain.OpExists:
		return m.makeExists(v)
	case domain.OpSize:
		return m.makeSize(v)
	case domain.OpMod:
		return m.makeMod(v)
	case "$elemMatch":
		return m.makeElemMatch(v)
	case "$not":
		return m.makeNot(v)
	default:
		return Cond{}, ErrUnknownComparison{Comparison: k}
	}
}

func (m *Matcher) makeList(op uint8, name string, v any) (Cond, error) {
	l, ok := structure.ToSlice(v)
	if !ok {
		return Cond{}, ErrCompArgType{Comp: name, Want: "list", Actual: v}
	}
	return Cond{Op: op, Val: l}, nil
}

func (m *Matcher) makeRegex(v any, options any) (Cond, error) {
	switch t := v.(type) {
	case *regexp.Regexp:
		return Cond{Op: Regex, Val: t}, nil
	case string:
		if flags, _ := options.(string); flags != "" {
			t = "(?" + flags + ")" + t
		}
		r, err := regexp.Compile(t)
		if err != nil {
			return Cond{}, fmt.Errorf("%w: %w", ErrCompArgType{Comp: domain.OpRegex, Want: "regex", Actual: v}, err)
		}
		return Cond{Op: Regex, Val: r}, nil
	}
	return Cond{}, ErrCompArgType{Comp: domain.OpRegex, Want: "regex", Actual: v}
}

func (m *Matcher) makeExists(v any) (Cond, error) {
	switch t := v.(type) {
	case nil:
		return Cond{Op: Exists, Val: false}, nil
	case bool:
		return Cond{Op: Exists, Val: t}, nil
	case string:
		return Cond{Op: Exists, Val: t != ""}, nil
	}
	if f, ok := structure.AsFloat(v); ok {
		return Cond{Op: Exists, Val: f != 0}, nil
	}
	return Cond{Op: Exists, Val: true}, nil
}

func (m *Matcher) makeSize(v any) (Cond, error) {
	i, ok := structure.AsInteger(v)
	if !ok {
		return Cond{}, ErrCompArgType{Comp: domain.OpSize, Want: "integer", Actual: v}
	}
	return Cond{Op: Size, Val: i}, nil
}

func (m *Matcher) makeMod(v any) (Cond, error) {
	l, ok := structure.ToSlice(v)
	if !ok || len(l) != 2 {
		return Cond{}, ErrCompArgType{Comp: domain.OpMod, Want: "[divisor, remainder]", Actual: v}
	}
	divisor, ok := structure.AsFloat(l[0])
	if !ok || math.Trunc(divisor) == 0 {
		return Cond{}, ErrCompArgType{Comp: domain.OpMod, Want: "non-zero divisor", Actual: l[0]}
	}
	remainder, ok := structure.AsFloat(l[1])
	if !ok {
		return Cond{}, ErrCompArgType{Comp: domain.OpMod, Want: "number", Actual: l[1]}
	}
	return Cond{Op: Mod, Val: [2]float64{math.Trunc(divisor), math.Trunc(remainder)}}, nil
}

func (m *Matcher) makeElemMatch(v any) (Cond, error) {
	mapping, ok := structure.ToMap(v)
	if !ok {
		return Cond{}, ErrCompArgType{Comp: "$elemMatch", Want: "document", Actual: v}
	}
	dollar, err := m.ensureNotMixed(mapping)
	if err != nil {
		return Cond{}, err
	}
	if dollar {
		conds, err := m.makeConds(mapping)
		if err != nil {
			return Cond{}, err
		}
		return Cond{Op: ElemMatch, Sub: conds}, nil
	}
	qry, err := m.makeQuery(mapping)
	if err != nil {
		return Cond{}, err
	}
	return Cond{Op: ElemMatch, Query: &qry}, nil
}

func (m *Matcher) makeNot(v any) (Cond, error) {
	if r, ok := v.(*regexp.Regexp); ok {
		return Cond{Op: Not, Sub: []Cond{{Op: Regex, Val: r}}}, nil
	}
	mapping, ok := structure.ToMap(v)
	if !ok {
		return Cond{}, ErrCompArgType{Comp: "$not", Want: "document or regex", Actual: v}
	}
	if dollar, err := m.ensureNotMixed(mapping); err != nil || !dollar {
		return Cond{}, ErrCompArgType{Comp: "$not", Want: "operator document", Actual: v}
	}
	conds, err := m.makeConds(mapping)
	if err != nil {
		return Cond{}, err
	}
	return Cond{Op: Not, Sub: conds}, nil
}

// Match implements [domain.Matcher].
func (m *Matcher) Match(doc domain.M) (bool, error) {
	return m.matchQuery(doc, m.query)
}

func (m *Matcher) matchQuery(doc domain.M, query Query) (bool, error) {
	for _, lo := range query.Lo {
		matches, err := m.matchLogicOp(doc, lo)
		if err != nil || !matches {
			return matches, err
		}
	}
	return true, nil
}

func (m *Matcher) matchLogicOp(doc domain.M, lo LogicOp) (bool, error) {
	switch lo.Type {
	case And:
		for _, sub := range lo.Sub {
			matches, err := m.matchLogicOp(doc, sub)
			if err != nil || !matches {
				return matches, err
			}
		}
		for _, rule := range lo.Rules {
			matches, err := m.matchRule(doc, rule)
			if err != nil || !matches {
				return matches, err
			}
		}
		return true, nil
	case Or, Nor:
		for _, sub := range lo.Sub {
			matches, err := m.matchLogicOp(doc, sub)
			if err != nil {
				return false, err
			}
			if matches {
				return lo.Type == Or, nil
			}
		}
		return lo.Type == Nor, nil
	case Where:
		return lo.Where(doc)
	default:
		return false, nil
	}
}

func (m *Matcher) matchRule(doc domain.M, rule FieldRule) (bool, error) {
	values, _, err := m.fieldNavigator.GetField(doc, rule.Addr...)
	if err != nil {
		return false, err
	}
	return m.matchConds(values, rule.Conds)
}

func (m *Matcher) matchConds(values []any, conds []Cond) (bool, error) {
	for _, cond := range conds {
		matches, err := m.matchCond(values, cond)
		if err != nil || !matches {
			return matches, err
		}
	}
	return true, nil
}

func (m *Matcher) matchCond(values []any, cond Cond) (bool, error) {
	switch cond.Op {
	case Eq:
		return m.eq(values, cond.Val)
	case Ne:
		matches, err := m.eq(values, cond.Val)
		return !matches, err
	case Lt:
		return m.order(values, cond.Val, func(c int) bool { return c < 0 })
	case Lte:
		return m.order(values, cond.Val, func(c int) bool { return c <= 0 })
	case Gt:
		return m.order(values, cond.Val, func(c int) bool { return c > 0 })
	case Gte:
		return m.order(values, cond.Val, func(c int) bool { return c >= 0 })
	case In:
		return m.in(values, cond.Val.([]any))
	case Nin:
		matches, err := m.in(values, cond.Val.([]any))
		return !matches, err
	case All:
		return m.all(values, cond.Val.([]any))
	case Exists:
		return (len(values) > 0) == cond.Val.(bool), nil
	case Size:
		return m.size(values, cond.Val.(int)), nil
	case Mod:
		return m.mod(values, cond.Val.([2]float64)), nil
	case Regex:
		return m.regex(values, cond.Val.(*regexp.Regexp)), nil
	case ElemMatch:
		return m.elemMatch(values, cond)
	case Not:
		matches, err := m.matchConds(values, cond.Sub)
		return !matches, err
	default:
		return false, nil
	}
}

// candidates returns the values and the elements of the list values, so
// operators on list fields match any element.
func (m *Matcher) candidates(values []any) []any {
	res := make([]any, 0, len(values))
	for _, v := range values {
		res = append(res, v)
		if l, ok := m.list(v); ok {
			res = append(res, l...)
		}
	}
	return res
}

func (m *Matcher) list(v any) ([]any, bool) {
	if !structure.IsList(v) {
		return nil, false
	}
	return structure.ToSlice(v)
}

func (m *Matcher) eq(values []any, expected any) (bool, error) {
	if expected == nil && len(values) == 0 {
		return true, nil
	}
	if r, ok := expected.(*regexp.Regexp); ok {
		return m.regex(values, r), nil
	}
	for _, v := range m.candidates(values) {
		c, err := m.comparer.Compare(v, expected)
		if err != nil {
			return false, err
		}
		if c == 0 {
			return true, nil
		}
	}
	return false, nil
}

func (m *Matcher) order(values []any, bound any, ok func(int) bool) (bool, error) {
	for _, v := range m.candidates(values) {
		if !m.comparer.Comparable(v, bound) {
			continue
		}
		c, err := m.comparer.Compare(v, bound)
		if err != nil {
			return false, err
		}
		if ok(c) {
			return true, nil
		}
	}
	return false, nil
}

func (m *Matcher) in(values []any, items []any) (bool, error) {
	for _, item := range items {
		matches, err := m.eq(values, item)
		if err != nil || matches {
			return matches, err
		}
	}
	return false, nil
}

func (m *Matcher) all(values []any, items []any) (bool, error) {
	if len(items) == 0 {
		return false, nil
	}
	for _, item := range items {
		matches, err := m.eq(values, item)
		if err != nil || !matches {
			return false, err
		}
	}
	return true, nil
}

func (m *Matcher) size(values []any, size int) bool {
	for _, v := range values {
		if l, ok := m.list(v); ok && len(l) == size {
			return true
		}
	}
	return false
}

func (m *Matcher) mod(values []any, mod [2]float64) bool {
	for _, v := range m.candidates(values) {
		f, ok := structure.AsFloat(v)
		if !ok {
			continue
		}
		if math.Mod(math.Trunc(f), mod[0]) == mod[1] {
			return true
		}
	}
	return false
}

func (m *Matcher) regex(values []any, r *regexp.Regexp) bool {
	for _, v := range m.candidates(values) {
		if s, ok := v.(string); ok && r.MatchString(s) {
			return true
		}
	}
	return false
}

func (m *Matcher) elemMatch(values []any, cond Cond) (bool, error) {
	for _, v := range values {
		l, ok := m.list(v)
		if !ok {
			continue
		}
		for _, elem := range l {
			matches, err := m.matchElem(elem, cond)
			if err != nil || matches {
				return matches, err
			}
		}
	}
	return false, nil
}

func (m *Matcher) matchElem(elem any, cond Cond) (bool, error) {
	if cond.Query == nil {
		return m.matchConds([]any{elem}, cond.Sub)
	}
	doc, ok := structure.ToMap(elem)
	if !ok {
		return false, nil
	}
	return m.matchQuery(doc, *cond.Query)
}
