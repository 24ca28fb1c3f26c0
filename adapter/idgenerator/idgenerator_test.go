package idgenerator

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type IDGeneratorTestSuite struct {
	suite.Suite
	ig *IDGenerator
}

func (s *IDGeneratorTestSuite) SetupTest() {
	s.ig = NewIDGenerator().(*IDGenerator)
}

// Generated ids are random UUIDs.
func (s *IDGeneratorTestSuite) TestVersion() {
	id, err := s.ig.GenerateID()
	s.NoError(err)
	s.Equal(uuid.Version(4), id.Version())
	s.Equal(uuid.RFC4122, id.Variant())
	s.NotEqual(uuid.Nil, id)
}

// If the value in the random reader does not repeat, IDs multiple times will
// not result in collision.
func (s *IDGeneratorTestSuite) TestCollision() {
	t := `abcdefghijklmnopqrstuvwxy0123456789ABCDEFGHIJKLMNOPQRSTUVWXY`
	s.ig = NewIDGenerator(WithReader(strings.NewReader(t))).(*IDGenerator)

	id1, err := s.ig.GenerateID()
	s.NoError(err)

	id2, err := s.ig.GenerateID()
	s.NoError(err)

	s.NotEqual(id1, id2)
}

// The same random bytes always produce the same id.
func (s *IDGeneratorTestSuite) TestDeterministic() {
	src := bytes.Repeat([]byte{7}, 16)
	a, err := NewIDGenerator(WithReader(bytes.NewReader(src))).GenerateID()
	s.NoError(err)
	b, err := NewIDGenerator(WithReader(bytes.NewReader(src))).GenerateID()
	s.NoError(err)
	s.Equal(a, b)
}

// Time-ordered ids are version 7 and never decrease.
func (s *IDGeneratorTestSuite) TestTimeOrdered() {
	s.ig = NewIDGenerator(WithTimeOrdered(true)).(*IDGenerator)

	a, err := s.ig.GenerateID()
	s.NoError(err)
	b, err := s.ig.GenerateID()
	s.NoError(err)

	s.Equal(uuid.Version(7), a.Version())
	s.LessOrEqual(a.String(), b.String())
}

// Reader errors are returned.
func (s *IDGeneratorTestSuite) TestReadError() {
	s.ig = NewIDGenerator(WithReader(strings.NewReader(""))).(*IDGenerator)

	id, err := s.ig.GenerateID()
	s.ErrorIs(err, io.EOF)
	s.Equal(uuid.Nil, id)
}

func TestIDGeneratorTestSuite(t *testing.T) {
	suite.Run(t, new(IDGeneratorTestSuite))
}
