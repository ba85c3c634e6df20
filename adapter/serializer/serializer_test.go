package serializer

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/bucketdb/adapter/data"
	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

var ctx = context.Background()

type M = data.M

type SerializerTestSuite struct {
	suite.Suite
	s *Serializer
}

func (s *SerializerTestSuite) SetupTest() {
	s.s = NewSerializer().(*Serializer)
}

func (s *SerializerTestSuite) TestTopLevelShape() {
	snap := domain.Snapshot{
		"users": {M{"id": "1", "name": "Alice"}, M{"id": "2", "name": "Bob"}},
		"empty": {},
	}

	b, err := s.s.Serialize(ctx, snap)
	s.NoError(err)
	s.JSONEq(`{
		"users": [{"id": "1", "name": "Alice"}, {"id": "2", "name": "Bob"}],
		"empty": []
	}`, string(b))
}

func (s *SerializerTestSuite) TestNestedValues() {
	when := time.Date(2024, 1, 2, 3, 4, 5, 6000000, time.UTC)
	snap := domain.Snapshot{
		"b": {M{
			"id":      3,
			"address": M{"city": "London", "tags": []any{"a", M{"x": nil}}},
			"flag":    true,
			"ratio":   1.5,
			"when":    when,
		}},
	}

	b, err := s.s.Serialize(ctx, snap)
	s.NoError(err)
	s.JSONEq(`{"b": [{
		"id": 3,
		"address": {"city": "London", "tags": ["a", {"x": null}]},
		"flag": true,
		"ratio": 1.5,
		"when": "2024-01-02T03:04:05.006Z"
	}]}`, string(b))
}

func (s *SerializerTestSuite) TestIndent() {
	s.s = NewSerializer(WithIndent("  ")).(*Serializer)

	b, err := s.s.Serialize(ctx, domain.Snapshot{"a": {M{"id": 1}}})
	s.NoError(err)
	s.Equal("{\n  \"a\": [\n    {\n      \"id\": 1\n    }\n  ]\n}", string(b))
}

func (s *SerializerTestSuite) TestYAML() {
	s.s = NewSerializer(WithFormat(YAML)).(*Serializer)

	b, err := s.s.Serialize(ctx, domain.Snapshot{
		"users": {M{"id": "1", "address": M{"city": "London"}}},
	})
	s.NoError(err)

	var out map[string]any
	s.NoError(yaml.Unmarshal(b, &out))
	users := out["users"].([]any)
	s.Len(users, 1)
	user := users[0].(map[string]any)
	s.Equal("1", user["id"])
	s.Equal(map[string]any{"city": "London"}, user["address"])
}

func (s *SerializerTestSuite) TestUnsupportedValue() {
	_, err := s.s.Serialize(ctx, domain.Snapshot{"a": {M{"n": math.NaN()}}})
	s.Error(err)

	var unsupported *json.UnsupportedValueError
	s.ErrorAs(err, &unsupported)
}

func (s *SerializerTestSuite) TestCanceledContext() {
	cctx, cancel := context.WithCancel(ctx)
	cancel()

	_, err := s.s.Serialize(cctx, domain.Snapshot{})
	s.ErrorIs(err, context.Canceled)
}

func (s *SerializerTestSuite) TestFormats() {
	for _, name := range []string{"", "json"} {
		f, err := ParseFormat(name)
		s.NoError(err)
		s.Equal(JSON, f)
	}
	f, err := ParseFormat("yml")
	s.NoError(err)
	s.Equal(YAML, f)
	s.Equal("yaml", f.String())

	_, err = ParseFormat("xml")
	s.Error(err)
	s.Equal("Format(9)", Format(9).String())
}

func TestSerializerTestSuite(t *testing.T) {
	suite.Run(t, new(SerializerTestSuite))
}
