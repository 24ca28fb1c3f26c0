package registry

import (
	"bytes"
	"strconv"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/godm/adapter/coder"
	"github.com/vinicius-lino-figueiredo/godm/adapter/key"
	"github.com/vinicius-lino-figueiredo/godm/domain"
)

type RegistryTestSuite struct {
	suite.Suite
}

func names(r *Registry) []string {
	res := []string{}
	for name := range r.Keys() {
		res = append(res, name)
	}
	return res
}

// A new registry declares the identifier key.
func (s *RegistryTestSuite) TestNew() {
	r := New("User")
	s.Equal("User", r.Name())
	s.Equal("User", r.Collection())
	s.Equal("_id", r.IdentifierFieldName())
	s.Equal([]string{"_id"}, names(r))

	id, ok := r.Get("_id")
	s.True(ok)
	s.True(id.Identifier())

	_, _, ok = r.Discriminator()
	s.False(ok)
	s.Nil(r.Parent())
	s.Same(r, r.Root())

	r = New("Address", WithIdentifierKey(false), WithEmbeddable(true))
	s.Zero(r.Len())
	s.True(r.Embeddable())

	r = New("Post", WithCollection("posts"), WithIdentifierField("key"), WithTimestamps(true))
	s.Equal("posts", r.Collection())
	s.Equal([]string{"key", "created_at", "updated_at"}, r.Names())
	s.True(r.Timestamped())
}

// The reserved alias and blank names cannot become the identifier field.
func (s *RegistryTestSuite) TestReservedIdentifierField() {
	for _, f := range []string{"id", " id ", "", "  "} {
		var r *Registry
		s.NotPanics(func() { r = New("User", WithIdentifierField(f)) }, "%q", f)
		s.Equal("_id", r.IdentifierFieldName())
		s.Equal([]string{"_id"}, r.Names())
	}

	r := New("User", WithIdentifierField(" uid "))
	s.Equal("uid", r.IdentifierFieldName())
}

// Keys are kept in declaration order and redeclaring replaces in place.
func (s *RegistryTestSuite) TestDeclare() {
	r := New("User")
	s.NoError(r.Declare(key.MustKey("name", coder.Text{})))
	s.NoError(r.Declare(key.MustKey("age", coder.Integer{})))
	s.NoError(r.Declare(key.MustKey("name", coder.Text{}, domain.WithRequired(true))))

	s.Equal([]string{"_id", "name", "age"}, names(r))
	s.Equal(3, r.Len())
	name, ok := r.Get("name")
	s.True(ok)
	s.True(name.Options().Required)

	_, ok = r.Get("missing")
	s.False(ok)

	s.ErrorIs(r.Declare(nil), domain.ErrEmptyFieldName)
}

// Subtypes share the root collection and get a discriminator.
func (s *RegistryTestSuite) TestSubtype() {
	animal := New("Animal", WithCollection("animals"))
	s.NoError(animal.Declare(key.MustKey("name", coder.Text{})))

	dog, err := animal.Subtype("Dog", WithCollection("dogs"))
	s.NoError(err)
	s.Equal("animals", dog.Collection())
	s.Same(animal, dog.Parent())
	s.Same(animal, dog.Root())
	s.Equal([]*Registry{dog}, animal.Subtypes())

	field, value, ok := dog.Discriminator()
	s.True(ok)
	s.Equal("_type", field)
	s.Equal("Dog", value)

	_, ok = animal.Get("_type")
	s.True(ok)
	s.Equal([]string{"_id", "name", "_type"}, names(dog))

	_, err = animal.Subtype("Dog")
	s.ErrorIs(err, domain.ErrDuplicateModel{Name: "Dog"})
	_, err = dog.Subtype("Animal")
	s.ErrorIs(err, domain.ErrDuplicateModel{Name: "Animal"})
}

// Subtypes are found by name below the registry they are looked up from.
func (s *RegistryTestSuite) TestLookup() {
	animal := New("Animal")
	dog, err := animal.Subtype("Dog")
	s.NoError(err)
	puppy, err := dog.Subtype("Puppy")
	s.NoError(err)

	found, ok := animal.Lookup("Puppy")
	s.True(ok)
	s.Same(puppy, found)

	found, ok = dog.Lookup("Dog")
	s.True(ok)
	s.Same(dog, found)

	_, ok = dog.Lookup("Animal")
	s.False(ok)
	s.Equal("_type", puppy.DiscriminatorField())
}

// Keys declared on a parent reach every known subtype, recursively and in
// registration order, while keys declared on a subtype stay there.
func (s *RegistryTestSuite) TestPropagation() {
	animal := New("Animal", WithDiscriminatorField("kind"))
	dog, err := animal.Subtype("Dog")
	s.NoError(err)
	cat, err := animal.Subtype("Cat")
	s.NoError(err)
	puppy, err := dog.Subtype("Puppy")
	s.NoError(err)

	s.NoError(dog.Declare(key.MustKey("breed", coder.Text{})))
	s.NoError(animal.Declare(key.MustKey("legs", coder.Integer{})))

	s.Equal([]string{"_id", "kind", "legs"}, names(animal))
	s.Equal([]string{"_id", "kind", "breed", "legs"}, names(dog))
	s.Equal([]string{"_id", "kind", "legs"}, names(cat))
	s.Equal([]string{"_id", "kind", "breed", "legs"}, names(puppy))

	field, value, ok := puppy.Discriminator()
	s.True(ok)
	s.Equal("kind", field)
	s.Equal("Puppy", value)

	// subtypes created later copy the current keys
	kitten, err := cat.Subtype("Kitten")
	s.NoError(err)
	s.Equal([]string{"_id", "kind", "legs"}, names(kitten))
}

// A snapshot taken by Keys is not affected by later declarations.
func (s *RegistryTestSuite) TestSnapshot() {
	r := New("User")
	seq := r.Keys()
	s.NoError(r.Declare(key.MustKey("name", coder.Text{})))

	count := 0
	for range seq {
		count++
	}
	s.Equal(1, count)
	s.Equal(2, r.Len())
}

// Concurrent declarations and reads never observe a partial registry.
func (s *RegistryTestSuite) TestConcurrentDeclarations() {
	r := New("User", WithIdentifierKey(false))
	sub, err := r.Subtype("Admin")
	s.NoError(err)

	var wg sync.WaitGroup
	for n := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.NoError(r.Declare(key.MustKey("f"+strconv.Itoa(n), coder.Text{})))
		}()
		go func() {
			defer wg.Done()
			for name, k := range sub.Keys() {
				if k == nil || k.Name() != name {
					s.Fail("inconsistent snapshot")
				}
			}
		}()
	}
	wg.Wait()

	s.Equal(51, r.Len())
	s.Equal(51, sub.Len())
}

// Declarations are logged at debug level.
func (s *RegistryTestSuite) TestLogger() {
	buf := new(bytes.Buffer)
	r := New("User", WithLogger(zerolog.New(buf).Level(zerolog.DebugLevel)))
	s.NoError(r.Declare(key.MustKey("name", coder.Text{})))
	s.Contains(buf.String(), `"key":"name"`)
	s.Contains(buf.String(), `"type":"string"`)
}

func TestRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}
