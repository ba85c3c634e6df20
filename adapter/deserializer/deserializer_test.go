package deserializer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/data"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/serializer"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

var ctx = context.Background()

type M = data.M

type DeserializerTestSuite struct {
	suite.Suite
	d *Deserializer
}

func (s *DeserializerTestSuite) SetupTest() {
	s.d = NewDeserializer().(*Deserializer)
}

func (s *DeserializerTestSuite) TestSnapshot() {
	snap, err := s.d.Deserialize(ctx, []byte(`{
		"users": [
			{"id": "1", "name": "Alice", "age": 28, "ratio": 0.5},
			{"id": 2, "address": {"city": "London", "tags": ["a", null]}}
		],
		"empty": []
	}`))
	s.NoError(err)
	s.Equal(domain.Snapshot{
		"users": {
			M{"id": "1", "name": "Alice", "age": int64(28), "ratio": 0.5},
			M{"id": int64(2), "address": M{"city": "London", "tags": []any{"a", nil}}},
		},
		"empty": {},
	}, snap)
}

func (s *DeserializerTestSuite) TestMalformed() {
	inputs := []string{
		``,
		`{`,
		`null`,
		`[]`,
		`"text"`,
		`{"users": {"id": 1}}`,
		`{"users": [1, 2]}`,
		`{"users": [[]]}`,
		`{"users": []} {"more": []}`,
		`{"users": []} trailing`,
	}

	for _, input := range inputs {
		_, err := s.d.Deserialize(ctx, []byte(input))
		s.ErrorAs(err, &domain.ErrParse{}, "input %q", input)
	}
}

func (s *DeserializerTestSuite) TestYAML() {
	s.d = NewDeserializer(WithFormat(serializer.YAML)).(*Deserializer)

	snap, err := s.d.Deserialize(ctx, []byte("users:\n  - id: \"1\"\n    address:\n      city: London\n"))
	s.NoError(err)
	s.Len(snap["users"], 1)
	doc := snap["users"][0]
	s.Equal("1", doc.ID())
	s.Equal("London", doc.D("address").Get("city"))

	_, err = s.d.Deserialize(ctx, []byte("- a\n- b\n"))
	s.ErrorAs(err, &domain.ErrParse{})
}

func (s *DeserializerTestSuite) TestRoundTrip() {
	orig := domain.Snapshot{"a": {M{"id": "x", "n": M{"v": []any{true, "s"}}}}}
	for _, f := range []serializer.Format{serializer.JSON, serializer.YAML} {
		b, err := serializer.NewSerializer(serializer.WithFormat(f)).Serialize(ctx, orig)
		s.NoError(err)

		snap, err := NewDeserializer(WithFormat(f)).Deserialize(ctx, b)
		s.NoError(err)
		s.Equal(orig, snap, f.String())
	}
}

func (s *DeserializerTestSuite) TestCanceledContext() {
	cctx, cancel := context.WithCancel(ctx)
	cancel()

	_, err := s.d.Deserialize(cctx, []byte(`{}`))
	s.ErrorIs(err, context.Canceled)
}

func TestDeserializerTestSuite(t *testing.T) {
	suite.Run(t, new(DeserializerTestSuite))
}
