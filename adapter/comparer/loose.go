package comparer

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vinicius-lino-figueiredo/bucketdb/domain"
)

var decimalLit = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// LooseEqual implements domain.Comparer. Undefined and nil are only equal to
// each other. Values of different kinds are coerced: booleans become 0 or 1,
// strings compared with numbers are parsed as numbers, arrays and documents
// compared with scalars are converted to strings. NaN is never equal.
func (c *Comparer) LooseEqual(a, b any) bool {
	aSet, bSet := isSet(a), isSet(b)
	a, b = getVal(a), getVal(b)

	aNull, bNull := !aSet || a == nil, !bSet || b == nil
	if aNull || bNull {
		return aNull && bNull
	}

	switch {
	case isList(a) && isList(b), isDoc(a) && isDoc(b):
		comp, err := c.Compare(a, b)
		return err == nil && comp == 0
	case isList(a) || isDoc(a):
		return c.LooseEqual(toPrimitive(a), b)
	case isList(b) || isDoc(b):
		return c.LooseEqual(a, toPrimitive(b))
	}

	if a, ok := a.(bool); ok {
		if b, ok := b.(bool); ok {
			return a == b
		}
		return c.LooseEqual(boolNumber(a), b)
	}
	if b, ok := b.(bool); ok {
		return c.LooseEqual(a, boolNumber(b))
	}

	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as == bs
		}
	}

	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Equal(bt)
		}
		if bs, ok := b.(string); ok {
			return timeEqualsString(at, bs)
		}
	}
	if bt, ok := b.(time.Time); ok {
		if as, ok := a.(string); ok {
			return timeEqualsString(bt, as)
		}
	}

	an, aok := toNumber(a)
	bn, bok := toNumber(b)
	if !aok || !bok || an == nil || bn == nil {
		return false
	}
	return an.Cmp(bn) == 0
}

// LooseCompare implements domain.Comparer. Two strings are compared
// lexicographically, anything else is converted to a number first. The bool
// result is false when either side is undefined or not a number.
func (c *Comparer) LooseCompare(a, b any) (int, bool) {
	if !isSet(a) || !isSet(b) {
		return 0, false
	}
	a, b = getVal(a), getVal(b)
	if isList(a) || isDoc(a) {
		a = toPrimitive(a)
	}
	if isList(b) || isDoc(b) {
		b = toPrimitive(b)
	}

	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs), true
		}
	}

	an, aok := toNumber(a)
	bn, bok := toNumber(b)
	if !aok || !bok || an == nil || bn == nil {
		return 0, false
	}
	return an.Cmp(bn), true
}

func timeEqualsString(t time.Time, s string) bool {
	parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	return err == nil && parsed.Equal(t)
}

func isList(v any) bool {
	_, ok := v.([]any)
	return ok
}

func isDoc(v any) bool {
	switch v.(type) {
	case domain.Document, map[string]any:
		return true
	}
	return false
}

func boolNumber(b bool) int {
	if b {
		return 1
	}
	return 0
}

// toNumber converts a scalar into a number. The returned float is nil when
// the value converts to NaN, and ok is false for values that have no numeric
// conversion at all.
func toNumber(v any) (*big.Float, bool) {
	if n, ok := asNumber(v); ok {
		return n, true
	}
	switch t := v.(type) {
	case nil:
		return big.NewFloat(0), true
	case bool:
		return big.NewFloat(float64(boolNumber(t))), true
	case string:
		return parseNumber(t), true
	case time.Time:
		return big.NewFloat(float64(t.UnixMilli())), true
	}
	return nil, false
}

// parseNumber reads a string the way a JavaScript numeric conversion does.
// It returns nil where the conversion yields NaN.
func parseNumber(s string) *big.Float {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return big.NewFloat(0)
	case "Infinity", "+Infinity":
		return big.NewFloat(math.Inf(1))
	case "-Infinity":
		return big.NewFloat(math.Inf(-1))
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			i, ok := new(big.Int).SetString(s[2:], base)
			if !ok || strings.ContainsAny(s[2:], "+-_") {
				return nil
			}
			return new(big.Float).SetInt(i)
		}
	}

	if !decimalLit.MatchString(s) {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// out of range values are returned by ParseFloat as ±Inf
		if !math.IsInf(f, 0) {
			return nil
		}
	}
	return big.NewFloat(f)
}

// toPrimitive converts arrays and documents into the string a JavaScript
// engine would produce for them.
func toPrimitive(v any) string {
	switch t := v.(type) {
	case []any:
		parts := make([]string, len(t))
		for n, item := range t {
			parts[n] = toString(item)
		}
		return strings.Join(parts, ",")
	case domain.Document, map[string]any:
		return "[object Object]"
	}
	return toString(v)
}

func toString(v any) string {
	if !isSet(v) {
		return ""
	}
	v = getVal(v)
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case []any, domain.Document, map[string]any:
		return toPrimitive(t)
	case float32:
		return formatFloat(float64(t))
	case float64:
		return formatFloat(t)
	}
	if n, ok := asNumber(v); ok {
		return n.Text('f', -1)
	}
	return ""
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[0]
	exp = strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + string(sign) + exp
}
