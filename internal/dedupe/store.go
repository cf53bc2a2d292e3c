package dedupe

import (
	"context"
	"time"
)

// DefaultTTL is the window within which a repeated tweet ID is suppressed.
const DefaultTTL = 24 * time.Hour

// SeenStore tracks tweet IDs that have already been relayed.
type SeenStore interface {
	HasSeen(ctx context.Context, id string) (bool, error)
	MarkSeen(ctx context.Context, id string) error
	Close() error
}

// Cleaner is implemented by stores that support an explicit expiry sweep,
// scheduled from main as a periodic job.
type Cleaner interface {
	Cleanup(ctx context.Context) (int, error)
}
