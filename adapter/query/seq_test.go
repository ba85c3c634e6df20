package query

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

type pair struct {
	key  int
	name string
}

type SeqTestSuite struct {
	suite.Suite
	seq Seq[pair]
}

func (s *SeqTestSuite) SetupTest() {
	s.seq = From([]pair{
		{key: 2, name: "b"},
		{key: 1, name: "a"},
		{key: 2, name: "c"},
		{key: 1, name: "d"},
	})
}

func (s *SeqTestSuite) TestFromCopies() {
	items := []int{1, 2, 3}
	seq := From(items)
	items[0] = 9
	s.Equal([]int{1, 2, 3}, seq.Slice())

	out := seq.Slice()
	out[0] = 9
	s.Equal([]int{1, 2, 3}, seq.Slice())
}

func (s *SeqTestSuite) TestOrderByIsStable() {
	res := OrderBy(s.seq, func(p pair) int { return p.key })
	s.Equal([]pair{{1, "a"}, {1, "d"}, {2, "b"}, {2, "c"}}, res.Slice())

	res = OrderByDescending(s.seq, func(p pair) int { return p.key })
	s.Equal([]pair{{2, "b"}, {2, "c"}, {1, "a"}, {1, "d"}}, res.Slice())

	// receiver is untouched
	s.Equal("b", s.seq.Slice()[0].name)
}

func (s *SeqTestSuite) TestOrderByFunc() {
	byName := func(a, b pair) int { return strings.Compare(a.name, b.name) }

	res := s.seq.OrderByFunc(byName)
	s.Equal([]string{"a", "b", "c", "d"}, Select(res, func(p pair) string { return p.name }).Slice())

	res = s.seq.OrderByDescendingFunc(byName)
	s.Equal([]string{"d", "c", "b", "a"}, Select(res, func(p pair) string { return p.name }).Slice())
}

func (s *SeqTestSuite) TestWhereAndLen() {
	res := s.seq.Where(func(p pair) bool { return p.key == 2 })
	s.Equal(2, res.Len())
	s.Equal(4, s.seq.Len())
	s.Equal(0, s.seq.Where(func(pair) bool { return false }).Len())
}

func (s *SeqTestSuite) TestFirstOrDefault() {
	first, ok := s.seq.FirstOrDefault()
	s.True(ok)
	s.Equal(pair{2, "b"}, first)

	first, ok = s.seq.FirstOrDefault(func(p pair) bool { return p.key == 1 })
	s.True(ok)
	s.Equal(pair{1, "a"}, first)

	first, ok = s.seq.FirstOrDefault(
		func(p pair) bool { return p.key == 1 },
		func(p pair) bool { return p.name != "a" },
	)
	s.True(ok)
	s.Equal(pair{1, "d"}, first)

	first, ok = s.seq.FirstOrDefault(func(p pair) bool { return p.key == 3 })
	s.False(ok)
	s.Zero(first)

	doc, ok := From[domain.Document](nil).FirstOrDefault()
	s.False(ok)
	s.Nil(doc)
}

func (s *SeqTestSuite) TestSelectKeepsOrder() {
	res := Select(s.seq, func(p pair) int { return p.key * 10 })
	s.Equal([]int{20, 10, 20, 10}, res.Slice())
}

func (s *SeqTestSuite) TestAll() {
	s.Equal(s.seq.Slice(), slices.Collect(s.seq.All()))
}

func (s *SeqTestSuite) TestByFieldUndefinedFirst() {
	docs := From([]domain.Document{M{"a": 2}, M{}, M{"a": 1}})
	res := docs.OrderByFunc(ByField("a"))
	s.Equal([]domain.Document{M{}, M{"a": 1}, M{"a": 2}}, res.Slice())

	res = docs.OrderByFunc(ByField(""))
	s.Equal(docs.Slice(), res.Slice())
}

func TestSeqTestSuite(t *testing.T) {
	suite.Run(t, new(SeqTestSuite))
}
