package idgenerator

import (
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

func (s *IDGeneratorTestSuite) TestFormat() {
	id, err := s.ig.GenerateID()
	s.NoError(err)
	s.Len(id, 36)

	parsed, err := uuid.Parse(id)
	s.NoError(err)
	s.Equal(uuid.Version(4), parsed.Version())
}

// If the value in the random reader does not repeat, IDs generated multiple
// times will not collide.
func (s *IDGeneratorTestSuite) TestCollision() {
	t := `abcdefghijklmnopqrstuvwxy0123456789ABCDEFGHIJKLMNOPQRSTUVWXY`
	s.ig = NewIDGenerator(WithReader(strings.NewReader(t))).(*IDGenerator)

	id1, err := s.ig.GenerateID()
	s.NoError(err)

	id2, err := s.ig.GenerateID()
	s.NoError(err)

	s.NotEqual(id1, id2)
}

func (s *IDGeneratorTestSuite) TestReadError() {
	s.ig = NewIDGenerator(WithReader(strings.NewReader(""))).(*IDGenerator)

	id, err := s.ig.GenerateID()
	s.ErrorIs(err, io.EOF)
	s.Zero(id)
}

func (s *IDGeneratorTestSuite) TestTimeOrdered() {
	s.ig = NewIDGenerator(WithTimeOrdered(true)).(*IDGenerator)

	id, err := s.ig.GenerateID()
	s.NoError(err)

	parsed, err := uuid.Parse(id)
	s.NoError(err)
	s.Equal(uuid.Version(7), parsed.Version())
}

func TestIDGeneratorTestSuite(t *testing.T) {
	suite.Run(t, new(IDGeneratorTestSuite))
}
