package document

import (
	"maps"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/godm/adapter/coder"
	"github.com/vinicius-lino-figueiredo/godm/adapter/key"
	"github.com/vinicius-lino-figueiredo/godm/adapter/registry"
	"github.com/vinicius-lino-figueiredo/godm/domain"
)

type M = domain.M

var testID = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

type person struct {
	ID     uuid.UUID `godm:"_id"`
	Name   string
	Age    int64
	Active bool
}

type DocumentTestSuite struct {
	suite.Suite
	reg *registry.Registry
}

func (s *DocumentTestSuite) SetupTest() {
	s.reg = registry.New("Person")
	s.NoError(s.reg.Declare(key.MustKey("name", coder.Text{})))
	s.NoError(s.reg.Declare(key.MustKey("age", coder.Integer{})))
	s.NoError(s.reg.Declare(key.MustKey("active", coder.Boolean{}, domain.WithDefault(true))))
}

// New documents are initialized with defaults and have no changes.
func (s *DocumentTestSuite) TestNew() {
	d := New(s.reg)
	s.False(d.Persisted())
	s.Equal(true, d.Get("active"))
	s.Equal(M{"active": true}, d.ToWire())
	s.Empty(d.Changes())
	s.False(d.Has("name"))
	s.Nil(d.Get("name"))
}

// Declared fields are converted through their keys.
func (s *DocumentTestSuite) TestDeclaredFields() {
	d := New(s.reg)
	d.Set("name", 42)
	d.Set("age", "21 years")
	s.Equal("42", d.Get("name"))
	s.Equal(int64(21), d.Get("age"))
	s.Equal(M{"name": "42", "age": int64(21), "active": true}, d.ToWire())
}

// Undeclared fields are stored as given.
func (s *DocumentTestSuite) TestDynamicFields() {
	d := New(s.reg)
	d.Set("nickname", []any{"jo"})
	s.True(d.Has("nickname"))
	s.Equal([]any{"jo"}, d.Get("nickname"))
	s.Equal([]any{"jo"}, d.ToWire()["nickname"])

	d.Unset("nickname")
	s.False(d.Has("nickname"))
}

// The identifier alias refers to the identifier field.
func (s *DocumentTestSuite) TestIdentifier() {
	d := New(s.reg)
	_, ok := d.ID()
	s.False(ok)

	d.Set("id", testID.String())
	id, ok := d.ID()
	s.True(ok)
	s.Equal(testID, id)
	s.Equal(testID, d.ToWire()["_id"])
	s.Equal(testID, d.Get("id"))
}

// Documents read from the store are persisted and get missing defaults.
func (s *DocumentTestSuite) TestFromWire() {
	raw := M{"_id": testID, "name": "Joe", "extra": 1}
	d := FromWire(s.reg, raw)
	s.True(d.Persisted())
	s.Equal("Joe", d.Get("name"))
	s.Equal(1, d.Get("extra"))
	s.Equal(true, d.Get("active"))
	s.Empty(d.Changes())

	d.Set("name", "Ann")
	s.Equal("Joe", raw["name"])
}

// Stored nil values read as the default.
func (s *DocumentTestSuite) TestDefaultOnRead() {
	d := FromWire(s.reg, M{"active": nil})
	s.Equal(true, d.Get("active"))
}

// Subtype documents carry the discriminator.
func (s *DocumentTestSuite) TestDiscriminator() {
	sub, err := s.reg.Subtype("Admin")
	s.NoError(err)

	d := New(sub)
	s.Equal("Admin", d.Get("_type"))

	d = FromWire(sub, M{"_type": "SuperAdmin"})
	s.Equal("SuperAdmin", d.Get("_type"))

	d = New(s.reg)
	s.False(d.Has("_type"))
}

// Changes keep the first previous value and the current one.
func (s *DocumentTestSuite) TestChanges() {
	d := FromWire(s.reg, M{"name": "Joe", "age": int64(20)})

	d.Set("name", "Joe")
	s.False(d.Changed("name"))

	d.Set("name", "Ann")
	d.Set("name", "Bob")
	d.Set("age", 20.0)
	s.True(d.Changed("name"))
	s.False(d.Changed("age"))
	s.Equal(map[string]Change{"name": {Old: "Joe", New: "Bob"}}, d.Changes())

	d.Set("name", "Joe")
	s.False(d.Changed("name"))

	d.Set("email", "joe@example.com")
	d.Unset("age")
	s.Equal(map[string]Change{
		"email": {Old: nil, New: "joe@example.com"},
		"age":   {Old: int64(20), New: nil},
	}, d.Changes())

	d.ClearChanges()
	s.Empty(d.Changes())
}

// Setting nil on a missing field and unsetting a nil field are changes.
func (s *DocumentTestSuite) TestChangesPresence() {
	d := FromWire(s.reg, M{"name": "Joe", "nickname": nil})

	d.Set("email", nil)
	s.True(d.Changed("email"))
	s.True(d.Has("email"))

	d.Unset("nickname")
	s.True(d.Changed("nickname"))
	s.False(d.Has("nickname"))

	d.Set("nickname", nil)
	s.False(d.Changed("nickname"))
	d.Unset("email")
	s.False(d.Changed("email"))
	s.Empty(d.Changes())
}

// Saving clears changes.
func (s *DocumentTestSuite) TestMarkPersisted() {
	d := New(s.reg)
	d.Set("name", "Joe")
	s.True(d.Changed("name"))
	d.MarkPersisted()
	s.True(d.Persisted())
	s.False(d.Changed("name"))
}

// Structs and maps can be assigned at once.
func (s *DocumentTestSuite) TestSetAll() {
	d := New(s.reg)
	s.NoError(d.SetAll(M{"name": "Joe", "age": "3"}))
	s.Equal(int64(3), d.Get("age"))

	s.NoError(d.SetAll(struct {
		Nickname string `godm:"nickname"`
	}{Nickname: "jo"}))
	s.Equal("jo", d.Get("nickname"))

	s.Error(d.SetAll(1))
}

// Attributes lists declared keys in order, then dynamic ones.
func (s *DocumentTestSuite) TestAttributes() {
	d := New(s.reg)
	d.Set("extra", 1)
	d.Set("age", 4)
	d.Set("name", "Joe")

	var names []string
	for name := range d.Attributes() {
		names = append(names, name)
	}
	s.Equal([]string{"name", "age", "active", "extra"}, names)
	s.Equal(M{"name": "Joe", "age": int64(4), "active": true, "extra": 1}, maps.Collect(d.Attributes()))
}

// Documents decode into structs.
func (s *DocumentTestSuite) TestDecode() {
	d := FromWire(s.reg, M{"_id": testID, "name": "Joe", "age": int64(30)})

	var p person
	s.NoError(d.Decode(&p))
	s.Equal(person{ID: testID, Name: "Joe", Age: 30, Active: true}, p)

	var m M
	s.NoError(d.Decode(&m))
	s.Equal("Joe", m["name"])

	s.ErrorIs(d.Decode(p), domain.ErrNonPointer)
}

// Documents are embedded as their wire form.
func (s *DocumentTestSuite) TestEmbedded() {
	addr := registry.New("Address", registry.WithIdentifierKey(false))
	s.NoError(addr.Declare(key.MustKey("since", coder.NewTimestamp())))
	s.NoError(s.reg.Declare(key.MustKey("address", coder.NewEmbedded(addr, nil))))

	since := time.Date(2020, 1, 2, 3, 4, 5, 6000000, time.UTC)
	a := New(addr)
	a.Set("since", since)

	d := New(s.reg)
	d.Set("address", a)
	s.Equal(M{"since": since}, d.ToWire()["address"])
	s.Equal(M{"since": since}, d.Get("address"))
}

func TestDocumentTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentTestSuite))
}
