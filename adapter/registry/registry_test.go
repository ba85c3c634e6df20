package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/backend/memory"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/datastore"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

type backendMock struct {
	mock.Mock
	*memory.Backend
}

// Close implements [domain.Backend].
func (b *backendMock) Close() error {
	return b.Called().Error(0)
}

type RegistryTestSuite struct {
	suite.Suite
	ctx     context.Context
	created []string
}

func (s *RegistryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.created = nil
}

func (s *RegistryTestSuite) factory(_ context.Context, name string) (domain.Store, error) {
	s.created = append(s.created, name)
	return datastore.NewDatastore(), nil
}

func (s *RegistryTestSuite) TestOpenSharesStore() {
	r := New(s.factory)

	a, err := r.Open(s.ctx, "a")
	s.NoError(err)
	again, err := r.Open(s.ctx, "a")
	s.NoError(err)
	b, err := r.Open(s.ctx, "b")
	s.NoError(err)

	s.Same(a, again)
	s.NotSame(a, b)
	s.Equal([]string{"a", "b"}, s.created)
	s.Equal([]string{"a", "b"}, r.Names())

	_, err = a.Insert(s.ctx, "users", map[string]any{"id": "1"})
	s.NoError(err)
	doc, err := again.Get(s.ctx, "users", "1")
	s.NoError(err)
	s.NotNil(doc)
}

func (s *RegistryTestSuite) TestFactoryError() {
	boom := errors.New("boom")
	r := New(func(context.Context, string) (domain.Store, error) { return nil, boom })

	_, err := r.Open(s.ctx, "a")
	s.ErrorIs(err, boom)
	s.Empty(r.Names())
}

func (s *RegistryTestSuite) TestClose() {
	r := New(s.factory)
	first, err := r.Open(s.ctx, "a")
	s.NoError(err)

	s.NoError(r.Close("a"))
	s.NoError(r.Close("a"))
	s.Empty(r.Names())

	second, err := r.Open(s.ctx, "a")
	s.NoError(err)
	s.NotSame(first, second)
}

func (s *RegistryTestSuite) TestCloseAll() {
	closeErr := errors.New("close failed")
	failing := &backendMock{Backend: memory.NewBackend()}
	failing.On("Close").Return(closeErr).Once()

	r := New(func(_ context.Context, name string) (domain.Store, error) {
		if name == "bad" {
			return datastore.NewDatastore(datastore.WithBackend(failing)), nil
		}
		return datastore.NewDatastore(), nil
	})
	for _, name := range []string{"good", "bad"} {
		_, err := r.Open(s.ctx, name)
		s.Require().NoError(err)
	}

	err := r.CloseAll()
	s.ErrorIs(err, closeErr)
	s.Empty(r.Names())
	failing.AssertExpectations(s.T())
}

func (s *RegistryTestSuite) TestCanceledOpen() {
	r := New(s.factory)
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := r.Open(ctx, "a")
	s.ErrorIs(err, context.Canceled)
	s.Empty(s.created)
}

func TestRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}
