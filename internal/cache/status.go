package cache

import "context"

// Status collects the outcome of the cache lookups made underneath a single
// request. Handlers install one with WithStatus before calling the service
// and read it back afterwards for the request log.
type Status struct {
	outcome string
}

// Value returns "hit", "miss", or "" when no cache lookup happened.
func (s *Status) Value() string {
	if s == nil {
		return ""
	}
	return s.outcome
}

type statusKey struct{}

// WithStatus returns a context carrying a fresh Status recorder along with
// the recorder itself.
func WithStatus(ctx context.Context) (context.Context, *Status) {
	s := &Status{}
	return context.WithValue(ctx, statusKey{}, s), s
}

// recordStatus notes the lookup outcome if the context carries a recorder.
// A later lookup overwrites an earlier one; requests make at most one.
func recordStatus(ctx context.Context, outcome string) {
	if s, ok := ctx.Value(statusKey{}).(*Status); ok {
		s.outcome = outcome
	}
}
