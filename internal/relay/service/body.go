package service

import (
	"bytes"
	"encoding/json"
	"io"
)

// inbound is a leniently parsed request body. Anything that is not a single
// JSON object (empty body, malformed JSON, arrays, scalars) parses as an empty
// object, so such requests fall through to the "nothing to send" path.
type inbound struct {
	fields map[string]json.RawMessage
}

func parseBody(body []byte) inbound {
	in := inbound{fields: map[string]json.RawMessage{}}
	dec := json.NewDecoder(bytes.NewReader(body))
	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return in
	}
	// Trailing garbage makes the whole body malformed.
	if _, err := dec.Token(); err != io.EOF {
		return in
	}
	in.fields = fields
	return in
}

// raw returns the undecoded value of key, nil when absent.
func (in inbound) raw(key string) json.RawMessage {
	return in.fields[key]
}

// value decodes key into plain Go values; numbers stay json.Number.
func (in inbound) value(key string) any {
	raw, ok := in.fields[key]
	if !ok {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// truthy mirrors the loose "is there anything here" test callers rely on:
// null, false, 0, "", [] and {} all count as absent.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
