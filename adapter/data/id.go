package data

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

// IDKey returns the canonical storage key of a document id. Strings and
// numbers are accepted; numbers with the same value map to the same key
// whatever their Go type, so 3, int64(3) and 3.0 are the same id.
func IDKey(id any) (string, error) {
	switch t := id.(type) {
	case string:
		return "s:" + t, nil
	case int:
		return "n:" + strconv.FormatInt(int64(t), 10), nil
	case int8:
		return "n:" + strconv.FormatInt(int64(t), 10), nil
	case int16:
		return "n:" + strconv.FormatInt(int64(t), 10), nil
	case int32:
		return "n:" + strconv.FormatInt(int64(t), 10), nil
	case int64:
		return "n:" + strconv.FormatInt(t, 10), nil
	case uint:
		return "n:" + strconv.FormatUint(uint64(t), 10), nil
	case uint8:
		return "n:" + strconv.FormatUint(uint64(t), 10), nil
	case uint16:
		return "n:" + strconv.FormatUint(uint64(t), 10), nil
	case uint32:
		return "n:" + strconv.FormatUint(uint64(t), 10), nil
	case uint64:
		return "n:" + strconv.FormatUint(t, 10), nil
	case float32:
		return floatKey(float64(t))
	case float64:
		return floatKey(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return IDKey(i)
		}
		f, err := t.Float64()
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrInvalidID, err)
		}
		return floatKey(f)
	default:
		return "", fmt.Errorf("%w: got %T", domain.ErrInvalidID, id)
	}
}

func floatKey(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: got %v", domain.ErrInvalidID, f)
	}
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return "n:" + strconv.FormatInt(int64(f), 10), nil
	}
	return "n:" + strconv.FormatFloat(f, 'g', -1, 64), nil
}
