// Package correlation carries the request correlation id from the HTTP edge
// to outbound calls.
package correlation

import "context"

// Header is the HTTP header the id travels in, inbound and outbound.
const Header = "X-Correlation-ID"

// maxLen bounds ids accepted from callers so they cannot bloat log lines.
const maxLen = 128

type contextKey struct{}

// WithID returns a copy of ctx carrying id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// ID returns the id stored on ctx, or "" when there is none.
func ID(ctx context.Context) string {
	v, _ := ctx.Value(contextKey{}).(string)
	return v
}

// Valid reports whether a caller-supplied id can be reused as is: non-empty,
// at most 128 bytes and made of printable ASCII only.
func Valid(id string) bool {
	if id == "" || len(id) > maxLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
