package ports

import (
	"context"

	"github.com/adventureapp/adventure-api/internal/core/domain"
)

// AdventureRepository defines persistence operations for adventures.
// Implementations must reject malformed ids with domain.ErrAdventureNotFound
// before querying, never coerce them.
type AdventureRepository interface {
	Insert(ctx context.Context, a *domain.Adventure) (string, error)
	FindByID(ctx context.Context, id string) (*domain.Adventure, error)
	// ListVisible returns every adventure owned by ownerID or marked public.
	ListVisible(ctx context.Context, ownerID string) ([]*domain.Adventure, error)
	// AppendNode appends node to the adventure's node sequence, conditional
	// on the sequence currently holding exactly expectedLen nodes. A length
	// mismatch surfaces domain.ErrConcurrentModification.
	AppendNode(ctx context.Context, id string, expectedLen int, node domain.Node) error
	// TruncateNodes replaces the node sequence with its prefix of length
	// nodeIndex. Truncating past the end is a no-op.
	TruncateNodes(ctx context.Context, id string, nodeIndex int) error
	SetCoverImage(ctx context.Context, id, bucket, key string) error
	// Delete removes the adventure document and its inline nodes. It reports
	// whether a record existed.
	Delete(ctx context.Context, id string) (bool, error)
}
