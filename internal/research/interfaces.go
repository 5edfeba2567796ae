package research

import (
	"context"
	"time"
)

// Gateway performs the single outbound research call. Implementations issue
// exactly one request per invocation and classify failures into *Error; they
// never retry.
type Gateway interface {
	Send(ctx context.Context, query string) (*Result, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces request IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
