package memstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"iter"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/godm/domain"
)

type M = domain.M

type A = []any

type querierMock struct{ mock.Mock }

// Query implements [domain.Querier].
func (q *querierMock) Query(data iter.Seq2[M, error], criteria domain.Criteria, opts domain.QueryOptions) ([]M, error) {
	call := q.Called(data, criteria, opts)
	return call.Get(0).([]M), call.Error(1)
}

type MemstoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
	ids   []uuid.UUID
}

func (s *MemstoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewStore()
	s.ids = []uuid.UUID{
		uuid.MustParse("00000000-0000-4000-8000-000000000001"),
		uuid.MustParse("00000000-0000-4000-8000-000000000002"),
		uuid.MustParse("00000000-0000-4000-8000-000000000003"),
	}
	s.Require().NoError(s.store.Insert(s.ctx, "planets",
		M{"_id": s.ids[0], "name": "Earth", "n": int64(3), "tags": A{"blue"}},
		M{"_id": s.ids[1], "name": "Mars", "n": int64(4), "tags": A{"red", "dusty"}},
		M{"_id": s.ids[2], "name": "Venus", "n": int64(2)},
	))
}

func (s *MemstoreTestSuite) find(criteria M, opts domain.QueryOptions) []M {
	cur, err := s.store.Find(s.ctx, "planets", criteria, opts)
	s.Require().NoError(err)
	var res []M
	for cur.Next() {
		var doc M
		s.Require().NoError(cur.Scan(s.ctx, &doc))
		res = append(res, doc)
	}
	s.NoError(cur.Err())
	s.NoError(cur.Close())
	return res
}

func (s *MemstoreTestSuite) names(docs []M) A {
	res := make(A, len(docs))
	for n, d := range docs {
		res[n] = d["name"]
	}
	return res
}

// Documents are found by criteria in identifier order.
func (s *MemstoreTestSuite) TestFind() {
	s.Equal(A{"Earth", "Mars", "Venus"}, s.names(s.find(M{}, domain.QueryOptions{})))
	s.Equal(A{"Mars"}, s.names(s.find(M{"tags": M{"$in": A{"red"}}}, domain.QueryOptions{})))
	s.Equal(A{"Earth", "Mars"}, s.names(s.find(M{"n": M{"$gt": 2}}, domain.QueryOptions{})))
	s.Empty(s.find(M{"name": "Pluto"}, domain.QueryOptions{}))
}

// Options sort, paginate and project the results.
func (s *MemstoreTestSuite) TestFindOptions() {
	res := s.find(M{}, domain.QueryOptions{
		Sort:   domain.Sort{{Key: "n", Order: domain.Descending}},
		Skip:   1,
		Limit:  1,
		Fields: []string{"name"},
	})
	s.Equal([]M{{"_id": s.ids[0], "name": "Earth"}}, res)
}

// Unknown collections are empty.
func (s *MemstoreTestSuite) TestUnknownCollection() {
	cur, err := s.store.Find(s.ctx, "moons", M{}, domain.QueryOptions{})
	s.NoError(err)
	s.False(cur.Next())

	count, err := s.store.Count(s.ctx, "moons", M{})
	s.NoError(err)
	s.Zero(count)

	count, err = s.store.Remove(s.ctx, "moons", M{})
	s.NoError(err)
	s.Zero(count)
}

// Identifier lookups use the primary index.
func (s *MemstoreTestSuite) TestFindByIdentifier() {
	s.Equal(A{"Mars"}, s.names(s.find(M{"_id": s.ids[1]}, domain.QueryOptions{})))
	s.Equal(A{"Earth", "Venus"}, s.names(s.find(M{"_id": M{"$in": A{s.ids[2], s.ids[0], s.ids[0]}}}, domain.QueryOptions{})))
	s.Equal(A{"Venus"}, s.names(s.find(M{"_id": M{"$gte": s.ids[2]}}, domain.QueryOptions{})))
	s.Empty(s.find(M{"_id": s.ids[1], "name": "Earth"}, domain.QueryOptions{}))
}

// Documents given to and returned by the store are copies.
func (s *MemstoreTestSuite) TestIsolation() {
	doc := M{"_id": uuid.New(), "name": "Pluto", "moons": A{"Charon"}}
	s.NoError(s.store.Insert(s.ctx, "dwarfs", doc))
	doc["moons"].(A)[0] = "changed"

	cur, err := s.store.Find(s.ctx, "dwarfs", M{}, domain.QueryOptions{})
	s.NoError(err)
	s.True(cur.Next())
	var res M
	s.NoError(cur.Scan(s.ctx, &res))
	s.Equal(A{"Charon"}, res["moons"])
}

// Documents without identifier are rejected.
func (s *MemstoreTestSuite) TestInsertWithoutIdentifier() {
	err := s.store.Insert(s.ctx, "planets", M{"name": "Pluto"})
	s.ErrorIs(err, ErrMissingIdentifier)
}

// Repeated identifiers violate the primary index and nothing is inserted.
func (s *MemstoreTestSuite) TestInsertDuplicated() {
	pluto := M{"_id": uuid.New(), "name": "Pluto"}
	err := s.store.Insert(s.ctx, "planets", pluto, M{"_id": s.ids[0]})
	s.ErrorIs(err, domain.ErrConstraintViolated)

	count, err := s.store.Count(s.ctx, "planets", M{})
	s.NoError(err)
	s.Equal(int64(3), count)
}

// Unique indexes reject repeated values and skip missing ones.
func (s *MemstoreTestSuite) TestEnsureIndex() {
	s.NoError(s.store.EnsureIndex(s.ctx, "planets", "name", true))
	s.NoError(s.store.EnsureIndex(s.ctx, "planets", "name", true))

	err := s.store.Insert(s.ctx, "planets", M{"_id": uuid.New(), "name": "Mars"})
	s.ErrorIs(err, domain.ErrConstraintViolated)
	s.NoError(s.store.Insert(s.ctx, "planets", M{"_id": uuid.New()}, M{"_id": uuid.New()}))

	s.Equal(A{"Mars"}, s.names(s.find(M{"name": "Mars"}, domain.QueryOptions{})))

	s.NoError(s.store.EnsureIndex(s.ctx, "planets", "tags", false))
	s.Equal(A{"Mars"}, s.names(s.find(M{"tags": "dusty"}, domain.QueryOptions{})))

	s.NoError(s.store.EnsureIndex(s.ctx, "planets", "n", true))
	s.NoError(s.store.Insert(s.ctx, "other", M{"_id": 1, "n": 1}, M{"_id": 2, "n": 1}))
	s.ErrorIs(s.store.EnsureIndex(s.ctx, "other", "n", true), domain.ErrConstraintViolated)
}

// Count returns the number of matching documents.
func (s *MemstoreTestSuite) TestCount() {
	count, err := s.store.Count(s.ctx, "planets", M{"n": M{"$lt": 4}})
	s.NoError(err)
	s.Equal(int64(2), count)
}

// Updates assign changes to every matching document.
func (s *MemstoreTestSuite) TestUpdate() {
	n, err := s.store.Update(s.ctx, "planets", M{"n": M{"$gte": 3}}, domain.Changes{Set: M{"visited": true, "orbit.period": 1}})
	s.NoError(err)
	s.Equal(int64(2), n)

	res := s.find(M{"visited": true}, domain.QueryOptions{})
	s.Equal(A{"Earth", "Mars"}, s.names(res))
	s.Equal(M{"period": 1}, res[0]["orbit"])

	n, err = s.store.Update(s.ctx, "planets", M{"name": "Pluto"}, domain.Changes{Set: M{"visited": true}})
	s.NoError(err)
	s.Zero(n)
}

// Updates cannot change identifiers nor break unique indexes.
func (s *MemstoreTestSuite) TestUpdateConstraints() {
	_, err := s.store.Update(s.ctx, "planets", M{"name": "Mars"}, domain.Changes{Set: M{"_id": uuid.New()}})
	s.ErrorIs(err, ErrIdentifierChange)

	n, err := s.store.Update(s.ctx, "planets", M{"name": "Mars"}, domain.Changes{Set: M{"_id": s.ids[1], "n": int64(5)}})
	s.NoError(err)
	s.Equal(int64(1), n)

	s.NoError(s.store.EnsureIndex(s.ctx, "planets", "name", true))
	_, err = s.store.Update(s.ctx, "planets", M{"name": "Mars"}, domain.Changes{Set: M{"name": "Earth"}})
	s.ErrorIs(err, domain.ErrConstraintViolated)
	s.Equal(A{"Mars"}, s.names(s.find(M{"name": "Mars"}, domain.QueryOptions{})))
}

// Unset fields are deleted from matching documents.
func (s *MemstoreTestSuite) TestUpdateUnset() {
	n, err := s.store.Update(s.ctx, "planets", M{"name": "Mars"}, domain.Changes{
		Set:   M{"orbit.period": 687},
		Unset: []string{"tags", "missing.path"},
	})
	s.NoError(err)
	s.Equal(int64(1), n)

	s.Equal(A{"Mars"}, s.names(s.find(M{"tags": M{"$exists": false}, "orbit.period": 687}, domain.QueryOptions{})))
	s.Empty(s.find(M{"tags": "red"}, domain.QueryOptions{}))

	_, err = s.store.Update(s.ctx, "planets", M{"name": "Mars"}, domain.Changes{Set: M{"orbit.moons": 2}, Unset: []string{"orbit.period"}})
	s.NoError(err)
	res := s.find(M{"name": "Mars"}, domain.QueryOptions{})
	s.Require().Len(res, 1)
	s.Equal(M{"moons": 2}, res[0]["orbit"])

	_, err = s.store.Update(s.ctx, "planets", M{"name": "Mars"}, domain.Changes{Unset: []string{"_id"}})
	s.ErrorIs(err, ErrIdentifierChange)
}

// Removed documents are no longer found.
func (s *MemstoreTestSuite) TestRemove() {
	n, err := s.store.Remove(s.ctx, "planets", M{"tags": M{"$exists": true}})
	s.NoError(err)
	s.Equal(int64(2), n)
	s.Equal(A{"Venus"}, s.names(s.find(M{}, domain.QueryOptions{})))
}

// Export writes one JSON document per line.
func (s *MemstoreTestSuite) TestExport() {
	buf := new(bytes.Buffer)
	s.NoError(s.store.Export(s.ctx, "planets", buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	s.Len(lines, 3)
	var first M
	s.NoError(json.Unmarshal([]byte(lines[0]), &first))
	s.Equal(s.ids[0].String(), first["_id"])
	s.Equal("Earth", first["name"])

	buf.Reset()
	s.NoError(s.store.Export(s.ctx, "moons", buf))
	s.Zero(buf.Len())
}

// Cancelled contexts stop every operation.
func (s *MemstoreTestSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := s.store.Find(ctx, "planets", M{}, domain.QueryOptions{})
	s.ErrorIs(err, context.Canceled)
	s.ErrorIs(s.store.Insert(ctx, "planets", M{"_id": 1}), context.Canceled)
	s.ErrorIs(s.store.Export(ctx, "planets", new(bytes.Buffer)), context.Canceled)
}

// Querier errors are returned.
func (s *MemstoreTestSuite) TestQuerierError() {
	errQuery := errors.New("query error")
	q := new(querierMock)
	q.On("Query", mock.Anything, mock.Anything, mock.Anything).Return([]M(nil), errQuery)
	store := NewStore(WithQuerier(q))
	s.NoError(store.Insert(s.ctx, "c", M{"_id": 1}))

	_, err := store.Count(s.ctx, "c", M{})
	s.ErrorIs(err, errQuery)
	s.Equal([]string{"c"}, store.Collections())
}

func TestMemstoreTestSuite(t *testing.T) {
	suite.Run(t, new(MemstoreTestSuite))
}
