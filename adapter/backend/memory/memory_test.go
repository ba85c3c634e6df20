package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/data"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

type M = data.M

type MemoryTestSuite struct {
	suite.Suite
	b   *Backend
	ctx context.Context
}

func (s *MemoryTestSuite) SetupTest() {
	s.b = NewBackend()
	s.ctx = context.Background()
}

func (s *MemoryTestSuite) ids(bucket string) []any {
	docs, err := s.b.ListAll(s.ctx, bucket)
	s.Require().NoError(err)
	res := make([]any, len(docs))
	for n, doc := range docs {
		res[n] = doc.ID()
	}
	return res
}

func (s *MemoryTestSuite) TestBuckets() {
	s.NoError(s.b.CreateBucket(s.ctx, "b"))
	s.NoError(s.b.CreateBucket(s.ctx, "a"))
	s.NoError(s.b.CreateBucket(s.ctx, "b"))

	names, err := s.b.ListBuckets(s.ctx)
	s.NoError(err)
	s.Equal([]string{"b", "a"}, names)

	s.NoError(s.b.DeleteBucket(s.ctx, "b"))
	s.NoError(s.b.DeleteBucket(s.ctx, "missing"))

	names, err = s.b.ListBuckets(s.ctx)
	s.NoError(err)
	s.Equal([]string{"a"}, names)
}

func (s *MemoryTestSuite) TestPutGetDelete() {
	s.NoError(s.b.CreateBucket(s.ctx, "users"))

	_, err := s.b.Put(s.ctx, "users", M{"id": "1", "name": "Alice"})
	s.NoError(err)

	doc, err := s.b.Get(s.ctx, "users", "1")
	s.NoError(err)
	s.Equal(M{"id": "1", "name": "Alice"}, doc)

	doc, err = s.b.Get(s.ctx, "users", "2")
	s.NoError(err)
	s.Nil(doc)

	doc, err = s.b.Get(s.ctx, "missing", "1")
	s.NoError(err)
	s.Nil(doc)

	deleted, err := s.b.Delete(s.ctx, "users", "1")
	s.NoError(err)
	s.True(deleted)

	deleted, err = s.b.Delete(s.ctx, "users", "1")
	s.NoError(err)
	s.False(deleted)

	deleted, err = s.b.Delete(s.ctx, "missing", "1")
	s.NoError(err)
	s.False(deleted)
}

func (s *MemoryTestSuite) TestPutMissingBucket() {
	_, err := s.b.Put(s.ctx, "users", M{"id": "1"})
	s.ErrorAs(err, &domain.ErrBucketNotFound{})
}

func (s *MemoryTestSuite) TestNumericIDs() {
	s.NoError(s.b.CreateBucket(s.ctx, "n"))
	_, err := s.b.Put(s.ctx, "n", M{"id": 3, "v": "a"})
	s.NoError(err)
	_, err = s.b.Put(s.ctx, "n", M{"id": int64(3), "v": "b"})
	s.NoError(err)

	doc, err := s.b.Get(s.ctx, "n", 3.0)
	s.NoError(err)
	s.Equal("b", doc.Get("v"))
	s.Len(s.ids("n"), 1)

	_, err = s.b.Get(s.ctx, "n", M{})
	s.ErrorIs(err, domain.ErrInvalidID)
}

func (s *MemoryTestSuite) TestReplaceKeepsPosition() {
	s.NoError(s.b.CreateBucket(s.ctx, "users"))
	for _, id := range []string{"1", "2", "3"} {
		_, err := s.b.Put(s.ctx, "users", M{"id": id})
		s.NoError(err)
	}
	_, err := s.b.Put(s.ctx, "users", M{"id": "1", "v": true})
	s.NoError(err)

	s.Equal([]any{"1", "2", "3"}, s.ids("users"))
}

func (s *MemoryTestSuite) TestCopies() {
	s.NoError(s.b.CreateBucket(s.ctx, "users"))
	in := M{"id": "1", "nested": M{"v": 1}}
	_, err := s.b.Put(s.ctx, "users", in)
	s.NoError(err)
	in.D("nested").Set("v", 2)

	doc, err := s.b.Get(s.ctx, "users", "1")
	s.NoError(err)
	s.Equal(1, doc.D("nested").Get("v"))
	doc.D("nested").Set("v", 3)

	docs, err := s.b.ListAll(s.ctx, "users")
	s.NoError(err)
	s.Equal(1, docs[0].D("nested").Get("v"))
}

func (s *MemoryTestSuite) TestCommitBatch() {
	s.NoError(s.b.CreateBucket(s.ctx, "a"))
	s.NoError(s.b.CreateBucket(s.ctx, "b"))
	_, err := s.b.Put(s.ctx, "a", M{"id": "old"})
	s.NoError(err)

	err = s.b.CommitBatch(s.ctx, []string{"a", "b"}, []domain.Operation{
		{Type: domain.OpPut, Bucket: "a", Doc: M{"id": "1"}},
		{Type: domain.OpPut, Bucket: "b", Doc: M{"id": "2"}},
		{Type: domain.OpDelete, Bucket: "a", ID: "old"},
	})
	s.NoError(err)
	s.Equal([]any{"1"}, s.ids("a"))
	s.Equal([]any{"2"}, s.ids("b"))
}

func (s *MemoryTestSuite) TestCommitBatchValidation() {
	s.NoError(s.b.CreateBucket(s.ctx, "a"))

	err := s.b.CommitBatch(s.ctx, []string{"a", "missing"}, nil)
	s.ErrorAs(err, &domain.ErrBucketNotFound{})

	err = s.b.CommitBatch(s.ctx, []string{"a"}, []domain.Operation{
		{Type: domain.OpPut, Bucket: "a", Doc: M{"id": "1"}},
		{Type: domain.OpPut, Bucket: "other", Doc: M{"id": "2"}},
	})
	s.ErrorAs(err, &domain.ErrBucketNotFound{})
	s.Empty(s.ids("a"))
}

func (s *MemoryTestSuite) TestCommitBatchRollback() {
	s.b = NewBackend(WithQuota(3))
	s.NoError(s.b.CreateBucket(s.ctx, "a"))
	for _, id := range []string{"1", "2"} {
		_, err := s.b.Put(s.ctx, "a", M{"id": id, "v": 0})
		s.NoError(err)
	}

	err := s.b.CommitBatch(s.ctx, []string{"a"}, []domain.Operation{
		{Type: domain.OpDelete, Bucket: "a", ID: "1"},
		{Type: domain.OpPut, Bucket: "a", Doc: M{"id": "2", "v": 1}},
		{Type: domain.OpPut, Bucket: "a", Doc: M{"id": "3"}},
		{Type: domain.OpPut, Bucket: "a", Doc: M{"id": "4"}},
		{Type: domain.OpPut, Bucket: "a", Doc: M{"id": "5"}},
	})
	s.ErrorIs(err, ErrQuotaExceeded)

	docs, err := s.b.ListAll(s.ctx, "a")
	s.NoError(err)
	s.Equal([]domain.Document{M{"id": "1", "v": 0}, M{"id": "2", "v": 0}}, docs)

	// quota accounting is restored too
	_, err = s.b.Put(s.ctx, "a", M{"id": "3"})
	s.NoError(err)
	_, err = s.b.Put(s.ctx, "a", M{"id": "4"})
	s.ErrorIs(err, ErrQuotaExceeded)
}

func (s *MemoryTestSuite) TestCanceledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	s.ErrorIs(s.b.CreateBucket(ctx, "a"), context.Canceled)
	_, err := s.b.ListAll(ctx, "a")
	s.ErrorIs(err, context.Canceled)
}

func TestMemoryTestSuite(t *testing.T) {
	suite.Run(t, new(MemoryTestSuite))
}
