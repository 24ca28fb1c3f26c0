// Package finder parses dynamic finder names, such as find_by_name_and_age,
// into explicit requests.
package finder

import (
	"regexp"
	"strings"

	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/pkg/structure"
)

var (
	finderPattern = regexp.MustCompile(`^find_(all_by|last_by|by|or_initialize_by|or_create_by)_([_a-zA-Z]\w*)$`)
	bangPattern   = regexp.MustCompile(`^find_by_([_a-zA-Z]\w*)!$`)
)

const (
	attributeSeparator = "_and_"
	conditionsField    = "conditions"
)

// Request is a dynamic finder request.
type Request struct {
	domain.FinderRequest
}

// New returns a request of the given kind over attributes.
func New(kind domain.FinderKind, bang bool, attributes ...string) *Request {
	return &Request{FinderRequest: domain.FinderRequest{
		Kind:       kind,
		Attributes: attributes,
		Bang:       bang,
	}}
}

// Parse reads a finder name. Only find_by accepts the trailing "!".
func Parse(name string) (*Request, error) {
	if m := bangPattern.FindStringSubmatch(name); m != nil {
		return newRequest(domain.FindFirst, true, m[1])
	}

	m := finderPattern.FindStringSubmatch(name)
	if m == nil {
		return nil, domain.ErrInvalidFinder{Name: name}
	}

	var kind domain.FinderKind
	switch m[1] {
	case "by":
		kind = domain.FindFirst
	case "all_by":
		kind = domain.FindAll
	case "last_by":
		kind = domain.FindLast
	case "or_create_by":
		kind = domain.FindOrCreate
	case "or_initialize_by":
		kind = domain.FindOrInitialize
	}
	req, err := newRequest(kind, false, m[2])
	if err != nil {
		return nil, domain.ErrInvalidFinder{Name: name}
	}
	return req, nil
}

func newRequest(kind domain.FinderKind, bang bool, names string) (*Request, error) {
	attrs := strings.Split(names, attributeSeparator)
	for _, attr := range attrs {
		if attr == "" {
			return nil, domain.ErrInvalidFinder{Name: names}
		}
	}
	return New(kind, bang, attrs...), nil
}

// Name returns the finder name of the request.
func (r *Request) Name() string {
	name := r.Kind.String() + "_" + strings.Join(r.Attributes, attributeSeparator)
	if r.Bang {
		name += "!"
	}
	return name
}

// Conditions pairs each attribute with its argument.
func (r *Request) Conditions(args ...any) (domain.M, error) {
	if len(args) != len(r.Attributes) {
		return nil, domain.ErrArgumentCount{Want: len(r.Attributes), Got: len(args)}
	}
	res := make(domain.M, len(args))
	for n, attr := range r.Attributes {
		res[attr] = args[n]
	}
	return res, nil
}

// Spec returns a query specification for the given arguments. Attribute
// conditions are placed under "conditions", so attributes named like query
// modifiers stay conditions. An extra map argument is merged into the
// specification as query modifiers, and its own "conditions" are merged with
// the attribute conditions.
func (r *Request) Spec(args ...any) (domain.M, error) {
	var extra map[string]any
	if len(args) == len(r.Attributes)+1 {
		if m, ok := structure.ToMap(args[len(args)-1]); ok {
			extra = m
			args = args[:len(args)-1]
		}
	}

	conditions, err := r.Conditions(args...)
	if err != nil {
		return nil, err
	}

	spec := make(domain.M, len(extra)+1)
	for k, v := range extra {
		spec[k] = v
	}
	if c, ok := structure.ToMap(extra[conditionsField]); ok {
		merged := make(domain.M, len(c)+len(conditions))
		for k, v := range c {
			merged[k] = v
		}
		for k, v := range conditions {
			merged[k] = v
		}
		conditions = merged
	}
	spec[conditionsField] = conditions
	return spec, nil
}
