// Package bus carries typed event envelopes between reactors. Publishing is
// fire-and-forget; delivery to subscribers is at-least-once with no ordering
// guarantee.
package bus

import "context"

// Publisher publishes one event detail under a detail-type and source. The
// returned error covers hand-off to the transport only, never downstream
// processing.
type Publisher interface {
	Publish(ctx context.Context, detailType, source string, detail any) error
}

// Filter selects events by exact-match detail-type and source plus simple
// key/value predicates over top-level detail fields. Zero-value fields match
// everything.
type Filter struct {
	DetailType string
	Source     string
	Detail     map[string]string
}
