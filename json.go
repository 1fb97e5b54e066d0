package lisprt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/minio/simdjson-go"
)

// FromJSON builds a value described by a JSON literal, allocating pairs and
// vectors in h.
//
//	1, -7               integer
//	true, false         boolean
//	null                nil
//	[a, b, ...]         vector
//	{"pair": [a, b]}    pair
//	{"bad": n}          raw word n, usually one no tag matches
//	{"stuck": "desc"}   fails with Fail("desc")
func FromJSON(h *Heap, data []byte) (Word, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return 0, fmt.Errorf("json input is empty")
	}
	if (trimmed[0] != '{' && trimmed[0] != '[') || !simdjson.SupportedCPU() {
		return wordFromStdJSON(h, trimmed)
	}
	parsed, err := simdjson.Parse(trimmed, nil)
	if err != nil {
		return 0, err
	}
	it := parsed.Iter()
	if it.Advance() != simdjson.TypeRoot {
		return 0, fmt.Errorf("json root not found")
	}
	typ, root, err := it.Root(nil)
	if err != nil {
		return 0, err
	}
	return wordFromJSONIter(h, typ, root)
}

func wordFromJSONIter(h *Heap, typ simdjson.Type, it *simdjson.Iter) (Word, error) {
	switch typ {
	case simdjson.TypeNull:
		return Nil, nil
	case simdjson.TypeBool:
		v, err := it.Bool()
		if err != nil {
			return 0, err
		}
		return EncodeBool(v), nil
	case simdjson.TypeInt:
		v, err := it.Int()
		if err != nil {
			return 0, err
		}
		return intWord(v)
	case simdjson.TypeUint:
		v, err := it.Uint()
		if err != nil {
			return 0, err
		}
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d out of range", v)
		}
		return intWord(int64(v))
	case simdjson.TypeFloat:
		return 0, fmt.Errorf("floating point literals are not supported")
	case simdjson.TypeString:
		return 0, fmt.Errorf("string literals are not supported")
	case simdjson.TypeArray:
		arr, err := it.Array(nil)
		if err != nil {
			return 0, err
		}
		var elems []Word
		iter := arr.Iter()
		for {
			t := iter.Advance()
			if t == simdjson.TypeNone {
				break
			}
			elem := iter
			w, err := wordFromJSONIter(h, t, &elem)
			if err != nil {
				return 0, err
			}
			elems = append(elems, w)
		}
		return allocVector(h, elems)
	case simdjson.TypeObject:
		obj, err := it.Object(nil)
		if err != nil {
			return 0, err
		}
		var (
			count    int
			form     string
			result   Word
			parseErr error
		)
		err = obj.ForEach(func(key []byte, elem simdjson.Iter) {
			count++
			if parseErr != nil || count > 1 {
				return
			}
			form = string(key)
			result, parseErr = formFromJSONIter(h, form, &elem)
		}, nil)
		if err != nil {
			return 0, err
		}
		if count != 1 {
			return 0, fmt.Errorf("object literal must have exactly one key, got %d", count)
		}
		return result, parseErr
	default:
		return 0, fmt.Errorf("unsupported json type: %v", typ)
	}
}

func formFromJSONIter(h *Heap, form string, it *simdjson.Iter) (Word, error) {
	switch form {
	case "pair":
		if it.Type() != simdjson.TypeArray {
			return 0, fmt.Errorf("pair literal wants a two element array")
		}
		arr, err := it.Array(nil)
		if err != nil {
			return 0, err
		}
		var parts []Word
		iter := arr.Iter()
		for {
			t := iter.Advance()
			if t == simdjson.TypeNone {
				break
			}
			elem := iter
			w, err := wordFromJSONIter(h, t, &elem)
			if err != nil {
				return 0, err
			}
			parts = append(parts, w)
		}
		return allocPair(h, parts)
	case "bad":
		switch it.Type() {
		case simdjson.TypeUint:
			v, err := it.Uint()
			return Word(v), err
		case simdjson.TypeInt:
			v, err := it.Int()
			if err != nil {
				return 0, err
			}
			if v < 0 {
				return 0, fmt.Errorf("raw word must be unsigned, got %d", v)
			}
			return Word(v), nil
		default:
			return 0, fmt.Errorf("raw word must be an unsigned integer")
		}
	case "stuck":
		if it.Type() != simdjson.TypeString {
			return 0, fmt.Errorf("stuck literal wants a string description")
		}
		desc, err := it.String()
		if err != nil {
			return 0, err
		}
		return 0, Fail(desc)
	default:
		return 0, fmt.Errorf("unknown literal form %q", form)
	}
}

// wordFromStdJSON handles scalar roots, which simdjson does not accept, and
// hosts without the CPU features simdjson needs.
func wordFromStdJSON(h *Heap, data []byte) (Word, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return 0, fmt.Errorf("invalid character after top-level value")
	}
	return wordFromAny(h, v)
}

func wordFromAny(h *Heap, v any) (Word, error) {
	switch val := v.(type) {
	case nil:
		return Nil, nil
	case bool:
		return EncodeBool(val), nil
	case json.Number:
		i, err := val.Int64()
		if err != nil {
			return 0, fmt.Errorf("invalid integer literal %s", val)
		}
		return intWord(i)
	case []any:
		elems := make([]Word, 0, len(val))
		for _, e := range val {
			w, err := wordFromAny(h, e)
			if err != nil {
				return 0, err
			}
			elems = append(elems, w)
		}
		return allocVector(h, elems)
	case map[string]any:
		if len(val) != 1 {
			return 0, fmt.Errorf("object literal must have exactly one key, got %d", len(val))
		}
		for form, body := range val {
			return formFromAny(h, form, body)
		}
	case string:
		return 0, fmt.Errorf("string literals are not supported")
	}
	return 0, fmt.Errorf("unsupported json type %T", v)
}

func formFromAny(h *Heap, form string, body any) (Word, error) {
	switch form {
	case "pair":
		items, ok := body.([]any)
		if !ok {
			return 0, fmt.Errorf("pair literal wants a two element array")
		}
		parts := make([]Word, 0, len(items))
		for _, e := range items {
			w, err := wordFromAny(h, e)
			if err != nil {
				return 0, err
			}
			parts = append(parts, w)
		}
		return allocPair(h, parts)
	case "bad":
		n, ok := body.(json.Number)
		if !ok {
			return 0, fmt.Errorf("raw word must be an unsigned integer")
		}
		w, err := ParseWord(n.String())
		if err != nil {
			return 0, fmt.Errorf("raw word must be an unsigned integer: %w", err)
		}
		return w, nil
	case "stuck":
		desc, ok := body.(string)
		if !ok {
			return 0, fmt.Errorf("stuck literal wants a string description")
		}
		return 0, Fail(desc)
	default:
		return 0, fmt.Errorf("unknown literal form %q", form)
	}
}

func intWord(n int64) (Word, error) {
	if !FitsInt(n) {
		return 0, fmt.Errorf("integer %d does not fit in %d bits", n, 64-IntShift)
	}
	return EncodeInt(n), nil
}

func allocPair(h *Heap, parts []Word) (Word, error) {
	if len(parts) != 2 {
		return 0, fmt.Errorf("pair literal wants two elements, got %d", len(parts))
	}
	if h == nil {
		return 0, ErrNoHeap
	}
	return h.AllocPair(parts[0], parts[1])
}

func allocVector(h *Heap, elems []Word) (Word, error) {
	if h == nil {
		return 0, ErrNoHeap
	}
	return h.AllocVector(elems)
}
