package transport

import (
	"bytes"
	"fmt"

	simplejson "github.com/bitly/go-simplejson"
)

// unwrapEnvelope recovers the upstream body from a relay response. Relays with
// no envelope field (corsproxy, codetabs) pass the body through verbatim;
// allorigins wraps it as {"contents": "<original body>"} and the string must be
// decoded again by the caller.
func unwrapEnvelope(body []byte, field string) ([]byte, error) {
	if field == "" {
		return body, nil
	}
	js, err := simplejson.NewJson(body)
	if err != nil {
		return nil, fmt.Errorf("envelope is not JSON: %w", err)
	}
	node := js.Get(field)
	if s, err := node.String(); err == nil {
		if s == "" {
			return nil, fmt.Errorf("empty %q envelope", field)
		}
		return []byte(s), nil
	}
	// some relays inline the JSON instead of string-wrapping it
	if raw, err := node.MarshalJSON(); err == nil && !bytes.Equal(raw, []byte("null")) {
		return raw, nil
	}
	return nil, fmt.Errorf("missing %q envelope field", field)
}

// LooksLikeMarkup sniffs for HTML/XML error pages that blocking relays
// substitute for the upstream body. Such payloads must never reach the
// normalizer as if they were exchange JSON.
func LooksLikeMarkup(body []byte) bool {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		return false
	}
	if trimmed[0] != '<' {
		return false
	}
	lower := bytes.ToLower(trimmed)
	return bytes.HasPrefix(lower, []byte("<!doctype")) ||
		bytes.HasPrefix(lower, []byte("<html")) ||
		bytes.HasPrefix(lower, []byte("<head")) ||
		bytes.HasPrefix(lower, []byte("<body")) ||
		bytes.HasPrefix(lower, []byte("<?xml")) ||
		bytes.HasPrefix(lower, []byte("<error"))
}
