// This file implements helpers for reading query parameters and request bodies.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// maxJSONBodySize bounds JSON request bodies.
const maxJSONBodySize = 1 << 20

var errBodyTooLarge = errors.New("request body too large")

// QueryParam returns a trimmed query value or def when it is absent or blank.
func QueryParam(query url.Values, key, def string) string {
	if v := strings.TrimSpace(query.Get(key)); v != "" {
		return v
	}
	return def
}

// ParseLimit reads a positive integer query parameter. Absent means def;
// values above max are clamped.
func ParseLimit(query url.Values, key string, def, max int) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, v)
	}
	if n > max {
		n = max
	}
	return n, nil
}

// DecodeJSON decodes a bounded JSON body into v. Trailing data after the
// first value is rejected.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return errBodyTooLarge
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		default:
			return fmt.Errorf("invalid JSON body: %w", err)
		}
	}
	if dec.More() {
		return errors.New("invalid JSON body: unexpected trailing data")
	}
	return nil
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
