package cursor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/data"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

type M = data.M

type decoderMock struct{ mock.Mock }

// Decode implements [domain.Decoder].
func (d *decoderMock) Decode(src any, tgt any) error {
	return d.Called(src, tgt).Error(0)
}

type Person struct {
	ID  string `bucketdb:"id"`
	Age int    `bucketdb:"age"`
}

type CursorTestSuite struct {
	suite.Suite
	docs []domain.Document
}

func (s *CursorTestSuite) SetupSuite() {
	s.docs = make([]domain.Document, 100)
	for n := range s.docs {
		s.docs[n] = M{"id": string(rune('a' + n%26)), "age": n}
	}
}

func (s *CursorTestSuite) TestEmpty() {
	for _, docs := range [][]domain.Document{nil, {}} {
		cur, err := NewCursor(context.Background(), docs)
		s.NoError(err)
		s.False(cur.Next())
		s.NoError(cur.Err())
	}
}

func (s *CursorTestSuite) TestScanStructs() {
	cur, err := NewCursor(context.Background(), s.docs)
	s.NoError(err)

	count := 0
	for cur.Next() {
		var p Person
		s.NoError(cur.Scan(context.Background(), &p))
		s.Equal(count, p.Age)
		count++
	}
	s.Equal(len(s.docs), count)
	s.NoError(cur.Err())
}

func (s *CursorTestSuite) TestScanDocument() {
	cur, err := NewCursor(context.Background(), s.docs[:1])
	s.NoError(err)
	s.True(cur.Next())

	var doc domain.Document
	s.NoError(cur.Scan(context.Background(), &doc))
	s.Equal(s.docs[0], doc)

	doc.Set("age", -1)
	s.Equal(0, s.docs[0].Get("age"))
}

func (s *CursorTestSuite) TestReadClosed() {
	cur, err := NewCursor(context.Background(), s.docs)
	s.NoError(err)

	s.NoError(cur.Close())
	s.False(cur.Next())
	s.ErrorIs(cur.Err(), domain.ErrCursorClosed)
	s.ErrorIs(cur.Scan(context.Background(), new(Person)), domain.ErrCursorClosed)
	s.ErrorIs(cur.Close(), domain.ErrCursorClosed)
}

func (s *CursorTestSuite) TestCreateClosedContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cur, err := NewCursor(ctx, s.docs)
	s.ErrorIs(err, context.Canceled)
	s.Nil(cur)
}

func (s *CursorTestSuite) TestCancelAfterCreation() {
	ctx, cancel := context.WithCancel(context.Background())

	cur, err := NewCursor(ctx, s.docs)
	s.NoError(err)

	cancel()
	s.False(cur.Next())
	s.ErrorIs(cur.Err(), context.Canceled)
}

func (s *CursorTestSuite) TestScanClosedContext() {
	cur, err := NewCursor(context.Background(), s.docs)
	s.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.True(cur.Next())
	s.ErrorIs(cur.Scan(ctx, new(Person)), context.Canceled)
}

func (s *CursorTestSuite) TestScanWithoutNext() {
	cur, err := NewCursor(context.Background(), s.docs)
	s.NoError(err)

	err = cur.Scan(context.Background(), new(struct{}))
	s.ErrorIs(err, domain.ErrScanBeforeNext)
}

func (s *CursorTestSuite) TestCustomDecoder() {
	dec := new(decoderMock)
	dec.On("Decode", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args[1].(*Person).Age = -1
		}).
		Return(nil)

	cur, err := NewCursor(context.Background(), s.docs[:3], domain.WithCursorDecoder(dec))
	s.NoError(err)

	for cur.Next() {
		var p Person
		s.NoError(cur.Scan(context.Background(), &p))
		s.Equal(-1, p.Age)
	}
	dec.AssertNumberOfCalls(s.T(), "Decode", 3)
}

func TestCursorTestSuite(t *testing.T) {
	suite.Run(t, new(CursorTestSuite))
}
