package ports

import (
	"context"
	"time"

	"github.com/adventureapp/adventure-api/internal/core/domain"
)

// StartAdventureInput carries everything needed to start a new adventure.
type StartAdventureInput struct {
	OwnerID          string
	Prompt           string
	Perspective      domain.Perspective
	MaxLevels        int
	MinWordsPerLevel int
	MaxWordsPerLevel int
	// WithCoverImage requests cover generation during start. When set, a
	// generation or upload failure aborts the whole call before anything
	// is persisted.
	WithCoverImage bool
}

// StartAdventureResult is returned after a successful start.
type StartAdventureResult struct {
	AdventureID string
	Title       string
	Synopsis    string
	CreatedAt   time.Time
	// CoverImageURL is a presigned URL for the generated cover, empty when
	// no cover was requested.
	CoverImageURL string
}

// ContinueAdventureInput identifies the branch point and the chosen option.
type ContinueAdventureInput struct {
	AdventureID    string
	Principal      domain.Principal
	StartFromNode  int
	SelectedOption int
	Outcome        domain.Outcome
}

// ContinueAdventureResult reports the position of the appended node.
type ContinueAdventureResult struct {
	AdventureID string
	NodeIndex   int
}

// AdventureSummary is the projection used in list responses; node bodies are
// omitted.
type AdventureSummary struct {
	AdventureID      string             `json:"adventure_id"`
	Title            string             `json:"title"`
	Synopsis         string             `json:"synopsis"`
	CreatedAt        time.Time          `json:"created_at"`
	Perspective      domain.Perspective `json:"perspective"`
	MaxLevels        int                `json:"max_levels"`
	MinWordsPerLevel int                `json:"min_words_per_level"`
	MaxWordsPerLevel int                `json:"max_words_per_level"`
	NumNodes         int                `json:"num_nodes"`
}

// CloneAdventureResult summarizes a freshly created clone.
type CloneAdventureResult struct {
	AdventureID string
	Title       string
	Synopsis    string
	CreatedAt   time.Time
	CloneOf     string
}

// AdventureService drives the story-tree lifecycle.
type AdventureService interface {
	Start(ctx context.Context, in StartAdventureInput) (*StartAdventureResult, error)
	Continue(ctx context.Context, in ContinueAdventureInput) (*ContinueAdventureResult, error)
	Truncate(ctx context.Context, adventureID string, p domain.Principal, nodeIndex int) error
	Delete(ctx context.Context, adventureID string, p domain.Principal) error
	Clone(ctx context.Context, adventureID string, p domain.Principal) (*CloneAdventureResult, error)
	List(ctx context.Context, ownerID string) ([]AdventureSummary, error)
	// GetNodes returns the full node sequence, subject to the read-access
	// ownership check.
	GetNodes(ctx context.Context, adventureID string, p domain.Principal) (*domain.Adventure, error)
}
