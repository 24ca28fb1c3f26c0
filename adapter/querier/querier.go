// Package querier contains the default [domain.Querier] implementation.
package querier

import (
	"fmt"
	"iter"
	"slices"

	"github.com/vinicius-lino-figueiredo/godm/adapter/comparer"
	"github.com/vinicius-lino-figueiredo/godm/adapter/fieldnavigator"
	"github.com/vinicius-lino-figueiredo/godm/adapter/matcher"
	"github.com/vinicius-lino-figueiredo/godm/adapter/projector"
	"github.com/vinicius-lino-figueiredo/godm/domain"
)

// Querier implements [domain.Querier]. It is not safe for concurrent use
// because the underlying [domain.Matcher] keeps the current query.
type Querier struct {
	mtchr    domain.Matcher
	cmpr     domain.Comparer
	fn       domain.FieldNavigator
	proj     domain.Projector
	capacity int
}

// NewQuerier returns a new implementation of [domain.Querier].
func NewQuerier(opts ...Option) domain.Querier {
	q := Querier{
		cmpr:     comparer.NewComparer(),
		capacity: 256,
	}
	for _, opt := range opts {
		opt(&q)
	}
	if q.fn == nil {
		q.fn = fieldnavigator.NewFieldNavigator()
	}
	if q.proj == nil {
		q.proj = projector.NewProjector(projector.WithFieldNavigator(q.fn))
	}
	if q.mtchr == nil {
		q.mtchr = matcher.NewMatcher(
			matcher.WithComparer(q.cmpr),
			matcher.WithFieldNavigator(q.fn),
		)
	}
	return &q
}

// Query implements [domain.Querier].
func (q *Querier) Query(data iter.Seq2[domain.M, error], criteria domain.Criteria, opts domain.QueryOptions) ([]domain.M, error) {
	if data == nil {
		return make([]domain.M, 0), nil
	}

	res, finished, err := q.filter(data, criteria, opts)
	if err != nil {
		return nil, err
	}

	if !finished && opts.Sort != nil {
		sorted, err := q.sort(res, opts.Sort)
		if err != nil {
			return nil, fmt.Errorf("sorting: %w", err)
		}
		res = q.skipAndLimit(sorted, opts.Skip, opts.Limit)
	}

	res, err = q.proj.Project(res, opts.Fields)
	if err != nil {
		return nil, fmt.Errorf("projecting: %w", err)
	}
	return res, nil
}

// filter collects the matching documents. Without sorting, skip and limit
// are applied while reading and finished reports that the limit was reached.
func (q *Querier) filter(data iter.Seq2[domain.M, error], criteria domain.Criteria, opts domain.QueryOptions) ([]domain.M, bool, error) {
	var skipped int64
	res := make([]domain.M, 0, q.capacity)

	if len(criteria) > 0 {
		if err := q.mtchr.SetQuery(criteria); err != nil {
			return nil, false, err
		}
	}

	for doc, err := range data {
		if err != nil {
			return nil, false, err
		}
		if len(criteria) > 0 {
			matches, err := q.mtchr.Match(doc)
			if err != nil {
				return nil, false, fmt.Errorf("matching document: %w", err)
			}
			if !matches {
				continue
			}
		}
		if opts.Sort == nil {
			if skipped < opts.Skip {
				skipped++
				continue
			}
			if opts.Limit > 0 && int64(len(res)) == opts.Limit {
				return res, true, nil
			}
		}
		res = append(res, doc)
	}
	return res, false, nil
}

func (q *Querier) sort(data []domain.M, sort domain.Sort) ([]domain.M, error) {
	res := slices.Clone(data)
	var err error
	slices.SortStableFunc(res, func(a, b domain.M) int {
		if err != nil {
			return 0
		}
		for _, crit := range sort {
			comp, cErr := q.compareByCriterion(a, b, crit)
			if cErr != nil {
				err = cErr
				return 0
			}
			if comp != 0 {
				return comp
			}
		}
		return 0
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (q *Querier) compareByCriterion(a, b domain.M, crit domain.SortName) (int, error) {
	addr, err := q.fn.GetAddress(crit.Key)
	if err != nil {
		return 0, fmt.Errorf("getting address: %w", err)
	}

	critA, err := q.sortKey(a, addr)
	if err != nil {
		return 0, err
	}
	critB, err := q.sortKey(b, addr)
	if err != nil {
		return 0, err
	}

	comp, err := q.cmpr.Compare(critA, critB)
	if err != nil {
		return 0, fmt.Errorf("comparing: %w", err)
	}
	if crit.Order < 0 {
		return -comp, nil
	}
	return comp, nil
}

// sortKey returns the value at addr. Missing fields sort as nil and values
// expanded from lists sort as a list.
func (q *Querier) sortKey(doc domain.M, addr []string) (any, error) {
	values, expanded, err := q.fn.GetField(doc, addr...)
	if err != nil {
		return nil, fmt.Errorf("getting field: %w", err)
	}
	if expanded {
		return values, nil
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values[0], nil
}

func (q *Querier) skipAndLimit(data []domain.M, skip, limit int64) []domain.M {

	length := int64(len(data))

	skip = max(skip, 0)      // skip cannot be negative
	skip = min(skip, length) // cannot skip more than length

	if limit <= 0 { // zero limit returns every document
		return data[skip:]
	}
	return data[skip:min(skip+limit, length)]
}
