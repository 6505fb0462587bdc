package wrapper

import (
	"encoding/json"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/replaylab/demobridge/internal/parser"
)

// Format is the fixed descriptor for the parse call: one code per
// positional argument, in order. Codes: s = string (valid UTF-8),
// i = int, p = bool, L = int64.
const Format = "sipLspsps"

// Arity is the exact number of positional arguments parse accepts.
const Arity = len(Format)

// ArgumentError reports a positional argument that failed conversion.
// It is the only error class the adapter raises itself; everything else
// comes from the entry point and passes through untouched.
type ArgumentError struct {
	Position int    // 1-based
	Code     byte   // expected format code
	Got      string // description of the offending value
}

func (e *ArgumentError) Error() string {
	if e.Position == 0 {
		return fmt.Sprintf("parse: %s", e.Got)
	}
	return fmt.Sprintf("parse: argument %d: expected %s, got %s",
		e.Position, codeName(e.Code), e.Got)
}

func codeName(code byte) string {
	switch code {
	case 's':
		return "string"
	case 'i':
		return "int"
	case 'p':
		return "bool"
	case 'L':
		return "int64"
	default:
		return fmt.Sprintf("%q", code)
	}
}

func arityError(got int) *ArgumentError {
	return &ArgumentError{Got: fmt.Sprintf("expected %d arguments, got %d", Arity, got)}
}

// Convert interprets args against Format and produces a typed request.
// Exactly Arity positional values are required; any arity or type
// mismatch aborts the call before the entry point is reached. String
// values are copied into the request, so callers may reuse the backing
// slice after return.
func Convert(args []any) (parser.Request, error) {
	var req parser.Request
	if len(args) != Arity {
		return req, arityError(len(args))
	}

	strs := make([]string, 0, 4)
	ints := make([]int64, 0, 2)
	bools := make([]bool, 0, 3)

	for i := 0; i < Arity; i++ {
		code := Format[i]
		switch code {
		case 's':
			s, err := asString(i+1, args[i])
			if err != nil {
				return req, err
			}
			strs = append(strs, s)
		case 'i', 'L':
			n, err := asInt64(i+1, code, args[i])
			if err != nil {
				return req, err
			}
			ints = append(ints, n)
		case 'p':
			b, ok := args[i].(bool)
			if !ok {
				return req, typeError(i+1, code, args[i])
			}
			bools = append(bools, b)
		}
	}

	req = parser.Request{
		DemoPath:        strs[0],
		ParseRate:       int(ints[0]),
		ParseFrames:     bools[0],
		TradeTime:       ints[1],
		RoundBuyStyle:   strs[1],
		DamagesRolled:   bools[1],
		DemoID:          strs[2],
		JSONIndentation: bools[2],
		OutPath:         strs[3],
	}
	return req, nil
}

func typeError(pos int, code byte, v any) *ArgumentError {
	return &ArgumentError{Position: pos, Code: code, Got: fmt.Sprintf("%T", v)}
}

func asString(pos int, v any) (string, *ArgumentError) {
	s, ok := v.(string)
	if !ok {
		return "", typeError(pos, 's', v)
	}
	if !utf8.ValidString(s) {
		return "", &ArgumentError{Position: pos, Code: 's', Got: "invalid UTF-8"}
	}
	// Copy: the incoming string may alias transport-owned memory.
	return string(append([]byte(nil), s...)), nil
}

// asInt64 accepts the integer shapes JSON transports produce. A float64
// is accepted only when it carries an integral value; 'i' additionally
// requires the value to fit in a platform int.
func asInt64(pos int, code byte, v any) (int64, *ArgumentError) {
	var n int64
	switch t := v.(type) {
	case int:
		n = int64(t)
	case int64:
		n = t
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || math.IsNaN(t) {
			return 0, &ArgumentError{Position: pos, Code: code, Got: fmt.Sprintf("non-integral number %v", t)}
		}
		n = int64(t)
	case json.Number:
		parsed, err := t.Int64()
		if err != nil {
			return 0, &ArgumentError{Position: pos, Code: code, Got: fmt.Sprintf("number %q", t.String())}
		}
		n = parsed
	default:
		return 0, typeError(pos, code, v)
	}
	if code == 'i' && (n > math.MaxInt32 || n < math.MinInt32) {
		return 0, &ArgumentError{Position: pos, Code: code, Got: fmt.Sprintf("out-of-range value %d", n)}
	}
	return n, nil
}
