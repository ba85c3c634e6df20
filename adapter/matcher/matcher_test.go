package matcher

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/data"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

type M = data.M

type A = []any

type fieldNavigatorMock struct{ mock.Mock }

// GetAddress implements [domain.FieldNavigator].
func (f *fieldNavigatorMock) GetAddress(field string) ([]string, error) {
	call := f.Called(field)
	return call.Get(0).([]string), call.Error(1)
}

// GetField implements [domain.FieldNavigator].
func (f *fieldNavigatorMock) GetField(obj any, addr ...string) (domain.Getter, error) {
	call := f.Called(obj, addr)
	g, _ := call.Get(0).(domain.Getter)
	return g, call.Error(1)
}

type MatcherTestSuite struct {
	suite.Suite
	mtchr *Matcher
}

func (s *MatcherTestSuite) p(field string, op domain.Operator, value any) domain.Predicate {
	return domain.Predicate{Field: field, Operator: op, Value: value}
}

func (s *MatcherTestSuite) TestSimpleFieldEquality() {
	p := s.p("test", domain.Eq, "yeah")

	s.NotMatches(s.mtchr.Match(M{"test": "yea"}, p))
	s.NotMatches(s.mtchr.Match(M{"test": "yeahh"}, p))
	s.Matches(s.mtchr.Match(M{"test": "yeah"}, p))
}

func (s *MatcherTestSuite) TestLooseEquality() {
	s.Matches(s.mtchr.Match(M{"age": "3"}, s.p("age", domain.Eq, 3)))
	s.Matches(s.mtchr.Match(M{"age": 3}, s.p("age", domain.Eq, "3")))
	s.Matches(s.mtchr.Match(M{"flag": true}, s.p("flag", domain.Eq, 1)))
	s.NotMatches(s.mtchr.Match(M{"age": "3"}, s.p("age", domain.Neq, 3)))
}

func (s *MatcherTestSuite) TestNestedField() {
	doc := M{"address": M{"city": "London", "geo": M{"lat": 51.5}}}

	s.Matches(s.mtchr.Match(doc, s.p("address.city", domain.Eq, "London")))
	s.Matches(s.mtchr.Match(doc, s.p("address.geo.lat", domain.Gt, 50)))
	s.NotMatches(s.mtchr.Match(doc, s.p("address.city", domain.Eq, "Paris")))
}

func (s *MatcherTestSuite) TestUndefinedField() {
	doc := M{"name": "Alice"}

	s.NotMatches(s.mtchr.Match(doc, s.p("missing.key", domain.Gte, 5)))
	s.NotMatches(s.mtchr.Match(doc, s.p("missing", domain.Lt, 5)))
	s.NotMatches(s.mtchr.Match(doc, s.p("missing", domain.Lte, 5)))
	s.NotMatches(s.mtchr.Match(doc, s.p("missing", domain.Gt, 5)))
	s.NotMatches(s.mtchr.Match(doc, s.p("missing", domain.Eq, 5)))
	s.Matches(s.mtchr.Match(doc, s.p("missing", domain.Neq, 5)))
	s.Matches(s.mtchr.Match(doc, s.p("missing", domain.Eq, nil)))
}

func (s *MatcherTestSuite) TestCompare() {
	s.False(s.mtchr.Compare(domain.Undefined, domain.Gte, 5))
	s.True(s.mtchr.Compare(domain.Undefined, domain.Neq, 5))
	s.True(s.mtchr.Compare("3", domain.Eq, 3))
	s.True(s.mtchr.Compare(4, domain.Gte, 4))
	s.True(s.mtchr.Compare(4, domain.Lte, 4))
	s.False(s.mtchr.Compare(4, domain.Lt, 4))
	s.False(s.mtchr.Compare(4, domain.Gt, 4))
	s.True(s.mtchr.Compare("b", domain.Gt, "a"))
	s.False(s.mtchr.Compare("abc", domain.Gt, 1))
	s.False(s.mtchr.Compare("abc", domain.Lte, 1))
}

func (s *MatcherTestSuite) TestUnknownOperatorIsEq() {
	s.True(s.mtchr.Compare(3, "like", 3))
	s.False(s.mtchr.Compare(3, "like", 4))
	s.True(s.mtchr.Compare(3, "", "3"))
}

func (s *MatcherTestSuite) TestArraysAreOpaque() {
	doc := M{"tags": A{"a", "b"}}

	s.Matches(s.mtchr.Match(doc, s.p("tags", domain.Eq, "a,b")))
	s.Matches(s.mtchr.Match(doc, s.p("tags", domain.Eq, A{"a", "b"})))
	s.NotMatches(s.mtchr.Match(doc, s.p("tags", domain.Eq, "a")))
	s.NotMatches(s.mtchr.Match(doc, s.p("tags.0", domain.Eq, "a")))
}

func (s *MatcherTestSuite) TestMatchAll() {
	doc := M{"city": "London", "age": 28}

	s.Matches(s.mtchr.MatchAll(doc, nil))
	s.Matches(s.mtchr.MatchAll(doc, []domain.Predicate{
		s.p("city", domain.Eq, "London"),
		s.p("age", domain.Lt, 30),
	}))
	s.NotMatches(s.mtchr.MatchAll(doc, []domain.Predicate{
		s.p("city", domain.Eq, "London"),
		s.p("age", domain.Gt, 30),
	}))
}

func (s *MatcherTestSuite) TestMatchAny() {
	doc := M{"city": "London", "age": 28}

	s.NotMatches(s.mtchr.MatchAny(doc, nil))
	s.Matches(s.mtchr.MatchAny(doc, []domain.Predicate{
		s.p("city", domain.Eq, "Paris"),
		s.p("age", domain.Lt, 30),
	}))
	s.NotMatches(s.mtchr.MatchAny(doc, []domain.Predicate{
		s.p("city", domain.Eq, "Paris"),
		s.p("age", domain.Gt, 30),
	}))
}

func (s *MatcherTestSuite) TestMatchFields() {
	doc := M{"name": "Alice", "address": M{"city": "London"}, "age": 28}

	s.Matches(s.mtchr.MatchFields(doc, nil))
	s.Matches(s.mtchr.MatchFields(doc, M{}))
	s.Matches(s.mtchr.MatchFields(doc, M{"address.city": "London", "age": "28"}))
	s.NotMatches(s.mtchr.MatchFields(doc, M{"address.city": "London", "age": 29}))
	s.NotMatches(s.mtchr.MatchFields(doc, M{"address.zip": "N1"}))
}

func (s *MatcherTestSuite) TestFieldNavigatorErrors() {
	errAddr := errors.New("address error")
	fn := new(fieldNavigatorMock)
	fn.On("GetAddress", "a").Return([]string(nil), errAddr).Once()

	s.mtchr = NewMatcher(WithFieldNavigator(fn)).(*Matcher)

	_, err := s.mtchr.Match(M{"a": 1}, s.p("a", domain.Eq, 1))
	s.ErrorIs(err, errAddr)
	fn.AssertExpectations(s.T())

	errField := errors.New("field error")
	fn = new(fieldNavigatorMock)
	fn.On("GetAddress", "a").Return([]string{"a"}, nil)
	fn.On("GetField", M{"a": 1}, []string{"a"}).Return(nil, errField)

	s.mtchr = NewMatcher(WithFieldNavigator(fn)).(*Matcher)

	_, err = s.mtchr.MatchAll(M{"a": 1}, []domain.Predicate{s.p("a", domain.Eq, 1)})
	s.ErrorIs(err, errField)
	_, err = s.mtchr.MatchAny(M{"a": 1}, []domain.Predicate{s.p("a", domain.Eq, 1)})
	s.ErrorIs(err, errField)
	_, err = s.mtchr.MatchFields(M{"a": 1}, M{"a": 1})
	s.ErrorIs(err, errField)
	fn.AssertExpectations(s.T())
}

func (s *MatcherTestSuite) Matches(matches bool, err error) {
	s.NoError(err)
	s.True(matches)
}

func (s *MatcherTestSuite) NotMatches(matches bool, err error) {
	s.NoError(err)
	s.False(matches)
}

func (s *MatcherTestSuite) SetupTest() {
	s.mtchr = NewMatcher().(*Matcher)
}

func TestMatcherTestSuite(t *testing.T) {
	suite.Run(t, new(MatcherTestSuite))
}
