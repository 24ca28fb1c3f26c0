package matcher

import "github.com/vinicius-lino-figueiredo/godm/domain"

// Numeric representations of supported logic operators.
const (
	And uint8 = iota
	Or
	Nor
	Where
)

// Numeric representations of supported operators.
const (
	Eq uint8 = iota
	Ne
	Exists
	Lt
	Lte
	Gt
	Gte
	Size
	In
	Nin
	All
	Mod
	ElemMatch
	Regex
	Not
)

// Query stores criteria in a typed and easier to iterate struct.
type Query struct {
	Lo []LogicOp
}

// LogicOp stores a logic operator (and, or, nor) and its children, which can be
// either a set of rules or a nested set of LogicOps.
type LogicOp struct {
	Type  uint8
	Rules []FieldRule
	Sub   []LogicOp
	Where func(domain.M) (bool, error)
}

// FieldRule stores a set of conditions used to match a given document field.
type FieldRule struct {
	Addr  []string
	Conds []Cond
}

// Cond stores a single operation on a document field (such as $gt, $size).
// Sub holds the conditions negated by $not or applied by $elemMatch to each
// element, and Query the document query of $elemMatch.
type Cond struct {
	Op    uint8
	Val   any
	Sub   []Cond
	Query *Query
}
