package hxview

import (
	"fmt"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprEncoder is the default Encoder.
//
// Spec values are literal except for two object forms:
//
//	{expr: "item.title + '!'"}                evaluated with expr-lang
//	{timestamp: <value>, format?: "2006-01-02"} formatted as a time
//
// Other objects and arrays are encoded element by element, so attribute maps
// may mix literals and expressions. Compiled programs are cached by source.
type ExprEncoder struct {
	mu       sync.RWMutex
	programs map[string]*vm.Program
	opts     []expr.Option
}

// NewExprEncoder creates an encoder. Undefined variables evaluate to nil;
// opts are appended to the expr compile options.
func NewExprEncoder(opts ...expr.Option) *ExprEncoder {
	return &ExprEncoder{
		programs: make(map[string]*vm.Program),
		opts:     append([]expr.Option{expr.AllowUndefinedVariables()}, opts...),
	}
}

// Encode evaluates spec against ctx.
func (e *ExprEncoder) Encode(spec Expr, ctx Context) (any, error) {
	switch v := spec.(type) {
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			x, err := e.Encode(item, ctx)
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	case map[string]any:
		if src, ok := v["expr"]; ok && len(v) == 1 {
			s, ok := src.(string)
			if !ok {
				return nil, fmt.Errorf("expr must be a string, got %T", src)
			}
			return e.eval(s, ctx)
		}
		if _, ok := v["timestamp"]; ok && isTimestampSpec(v) {
			return e.timestamp(v, ctx)
		}
		out := make(map[string]any, len(v))
		for k, item := range v {
			x, err := e.Encode(item, ctx)
			if err != nil {
				return nil, err
			}
			out[k] = x
		}
		return out, nil
	}
	return spec, nil
}

func (e *ExprEncoder) eval(src string, ctx Context) (any, error) {
	prog, err := e.program(src)
	if err != nil {
		return nil, err
	}
	return expr.Run(prog, map[string]any(ctx))
}

func (e *ExprEncoder) program(src string) (*vm.Program, error) {
	e.mu.RLock()
	prog, ok := e.programs[src]
	e.mu.RUnlock()
	if ok {
		return prog, nil
	}

	prog, err := expr.Compile(src, e.opts...)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.programs[src] = prog
	e.mu.Unlock()
	return prog, nil
}

func isTimestampSpec(m map[string]any) bool {
	for k := range m {
		if k != "timestamp" && k != "format" {
			return false
		}
	}
	return true
}

// timestamp formats {timestamp, format?}. The value may be unix
// milliseconds, an RFC 3339 string or a time.Time; format defaults to
// RFC 3339 and output is in UTC.
func (e *ExprEncoder) timestamp(m map[string]any, ctx Context) (any, error) {
	v, err := e.Encode(m["timestamp"], ctx)
	if err != nil {
		return nil, err
	}
	layout := time.RFC3339
	if f, ok := m["format"]; ok {
		fv, err := e.Encode(f, ctx)
		if err != nil {
			return nil, err
		}
		if s, ok := fv.(string); ok && s != "" {
			layout = s
		}
	}

	var t time.Time
	switch tv := v.(type) {
	case time.Time:
		t = tv
	case string:
		t, err = time.Parse(time.RFC3339, tv)
		if err != nil {
			return nil, fmt.Errorf("timestamp: %w", err)
		}
	default:
		ms, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("timestamp: unsupported value %T", v)
		}
		t = time.UnixMilli(int64(ms))
	}
	return t.UTC().Format(layout), nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
