package domain

import (
	"regexp"
)

// M is a raw document, as exchanged with a [Store].
type M = map[string]any

// Criteria is a normalized match expression: a flat map from field name (or
// logical operator) to a scalar, a list or an operator sub-map.
type Criteria = M

// Sort represents an ordered list of fields which should be used to sort query
// results, applied in sequence.
type Sort = []SortName

// SortName represents a single field and the order which should be used to sort
// it. A positive Order value means ascending order and a negative value means
// descending order.
type SortName struct {
	Key   string
	Order int64
}

// Sort directions.
const (
	Ascending  int64 = 1
	Descending int64 = -1
)

// QueryOptions is the normalized set of modifiers that accompanies criteria.
type QueryOptions struct {
	// Fields lists the projected fields. Nil means every field.
	Fields []string
	// Skip is the number of matching documents to skip.
	Skip int64
	// Limit is the maximum number of documents to return. Zero means
	// unbounded.
	Limit int64
	// Sort is the ordered list of sort criteria. Nil means natural order.
	Sort Sort
}

// Operators understood by criteria. The builder only produces the logical
// vocabulary, translating it to an actual wire protocol is a store concern.
const (
	OpEq     = "$eq"
	OpNe     = "$ne"
	OpIn     = "$in"
	OpNin    = "$nin"
	OpGt     = "$gt"
	OpGte    = "$gte"
	OpLt     = "$lt"
	OpLte    = "$lte"
	OpAll    = "$all"
	OpExists = "$exists"
	OpMod    = "$mod"
	OpSize   = "$size"
	OpWhere  = "$where"
	OpRegex  = "$regex"
	OpOr     = "$or"
	OpAnd    = "$and"
	OpNor    = "$nor"
)

// OperatorMarker is the first character of every operator key.
const OperatorMarker = '$'

// IsOperator reports whether the given key is operator-shaped.
func IsOperator(key string) bool {
	return len(key) > 0 && key[0] == OperatorMarker
}

// Changes describes an update of stored documents. Fields in Set are assigned
// and fields in Unset are removed. Both accept dotted paths.
type Changes struct {
	Set   M
	Unset []string
}

// Length restricts the length of a value. Zero fields are unset.
type Length struct {
	Exact int `yaml:"is"`
	Min   int `yaml:"minimum"`
	Max   int `yaml:"maximum"`
}

// KeyOptions holds the options given when a key is declared. Entries other
// than the recognized ones are kept in Extra and never interpreted here.
type KeyOptions struct {
	// Default is either a value or a func() any producer.
	Default    any
	HasDefault bool
	Required   bool
	Unique     bool
	Numeric    bool
	Index      bool
	Format     *regexp.Regexp
	Length     *Length
	Extra      map[string]any
}

// FinderKind identifies what a dynamic finder request returns.
type FinderKind uint8

// Supported dynamic finder kinds.
const (
	FindFirst FinderKind = iota
	FindAll
	FindLast
	FindOrCreate
	FindOrInitialize
)

// String implements [fmt.Stringer].
func (k FinderKind) String() string {
	switch k {
	case FindFirst:
		return "find_by"
	case FindAll:
		return "find_all_by"
	case FindLast:
		return "find_last_by"
	case FindOrCreate:
		return "find_or_create_by"
	case FindOrInitialize:
		return "find_or_initialize_by"
	default:
		return "unknown"
	}
}

// FinderRequest is the explicit form of a dynamic finder such as
// find_by_name_and_age.
type FinderRequest struct {
	Kind       FinderKind
	Attributes []string
	// Bang requests an error when no document is found.
	Bang bool
}
