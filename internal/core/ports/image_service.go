package ports

import (
	"context"

	"github.com/adventureapp/adventure-api/internal/core/domain"
)

// CropAnchor is one of the nine fixed crop positions for thumbnails.
type CropAnchor string

const (
	AnchorCenter      CropAnchor = "center"
	AnchorTop         CropAnchor = "top"
	AnchorBottom      CropAnchor = "bottom"
	AnchorLeft        CropAnchor = "left"
	AnchorRight       CropAnchor = "right"
	AnchorTopLeft     CropAnchor = "top-left"
	AnchorTopRight    CropAnchor = "top-right"
	AnchorBottomLeft  CropAnchor = "bottom-left"
	AnchorBottomRight CropAnchor = "bottom-right"
)

// UpdateCoverInput controls cover attachment and regeneration.
type UpdateCoverInput struct {
	AdventureID string
	Principal   domain.Principal
	// ForceRegenerate calls the image generator even when a cover already
	// exists. When false and a cover exists, a fresh presigned URL for the
	// stored object is returned without generating.
	ForceRegenerate bool
	// CustomPrompt overrides the adventure's original prompt when non-empty.
	CustomPrompt string
}

// ThumbnailInput carries the thumbnail parameters. Width/Height are capped
// at 2000, Quality at [1,100], Anchor must be one of the nine positions.
type ThumbnailInput struct {
	AdventureID string
	Principal   domain.Principal
	Width       int
	Height      int
	Anchor      CropAnchor
	Quality     int
	UseCache    bool
}

// ThumbnailResult is the encoded thumbnail plus its content type.
type ThumbnailResult struct {
	Data        []byte
	ContentType string
	FromCache   bool
}

// ImageService manages cover images and thumbnails.
type ImageService interface {
	// CoverURL returns a presigned URL for the existing cover image.
	CoverURL(ctx context.Context, adventureID string, p domain.Principal) (string, error)
	// UpdateCover attaches or regenerates the cover and returns a presigned
	// URL. Failures surface hard; no ambiguous partial state is left behind.
	UpdateCover(ctx context.Context, in UpdateCoverInput) (string, error)
	Thumbnail(ctx context.Context, in ThumbnailInput) (*ThumbnailResult, error)
}
