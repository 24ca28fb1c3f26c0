// Package projector contains the default [domain.Projector] implementation.
package projector

import (
	"github.com/vinicius-lino-figueiredo/godm/adapter/fieldnavigator"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/pkg/structure"
)

// DefaultIdentifierField is the field kept in every projection unless
// another one is set with [WithIdentifierField].
const DefaultIdentifierField = "_id"

// Projector implements [domain.Projector].
type Projector struct {
	fn              domain.FieldNavigator
	identifierField string
}

// NewProjector returns a new implementation of [domain.Projector].
func NewProjector(opts ...Option) domain.Projector {
	p := Projector{identifierField: DefaultIdentifierField}
	for _, opt := range opts {
		opt(&p)
	}
	if p.fn == nil {
		p.fn = fieldnavigator.NewFieldNavigator()
	}
	return &p
}

// Project implements [domain.Projector].
func (q *Projector) Project(docs []domain.M, fields []string) ([]domain.M, error) {
	if len(fields) == 0 {
		return docs, nil
	}

	projection := make([][]string, 0, len(fields)+1)
	projection = append(projection, []string{q.identifierField})
	for _, field := range fields {
		addr, err := q.fn.GetAddress(field)
		if err != nil {
			return nil, err
		}
		projection = append(projection, addr)
	}

	res := make([]domain.M, len(docs))
	for n, doc := range docs {
		projected := make(domain.M, len(projection))
		for _, addr := range projection {
			q.projectPath(doc, projected, addr)
		}
		res[n] = projected
	}
	return res, nil
}

// projectPath copies the value at addr from src to dst. Lists of documents
// are projected element by element.
func (q *Projector) projectPath(src map[string]any, dst domain.M, addr []string) {
	v, ok := src[addr[0]]
	if !ok {
		return
	}
	if len(addr) == 1 {
		dst[addr[0]] = v
		return
	}

	if m, ok := structure.ToMap(v); ok {
		sub, _ := dst[addr[0]].(domain.M)
		if sub == nil {
			sub = make(domain.M)
		}
		q.projectPath(m, sub, addr[1:])
		dst[addr[0]] = sub
		return
	}

	if !structure.IsList(v) {
		return
	}
	l, _ := structure.ToSlice(v)
	prev, _ := dst[addr[0]].([]any)
	list := make([]any, 0, len(l))
	for n, elem := range l {
		m, ok := structure.ToMap(elem)
		if !ok {
			continue
		}
		var sub domain.M
		if n < len(prev) {
			sub, _ = prev[n].(domain.M)
		}
		if sub == nil {
			sub = make(domain.M)
		}
		q.projectPath(m, sub, addr[1:])
		list = append(list, sub)
	}
	dst[addr[0]] = list
}
