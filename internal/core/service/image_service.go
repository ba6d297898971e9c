package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adventureapp/adventure-api/internal/core/domain"
	"github.com/adventureapp/adventure-api/internal/core/ports"
)

const (
	maxThumbDimension = 2000
	minThumbQuality   = 1
	maxThumbQuality   = 100
)

var cropAnchors = map[ports.CropAnchor]imaging.Anchor{
	ports.AnchorCenter:      imaging.Center,
	ports.AnchorTop:         imaging.Top,
	ports.AnchorBottom:      imaging.Bottom,
	ports.AnchorLeft:        imaging.Left,
	ports.AnchorRight:       imaging.Right,
	ports.AnchorTopLeft:     imaging.TopLeft,
	ports.AnchorTopRight:    imaging.TopRight,
	ports.AnchorBottomLeft:  imaging.BottomLeft,
	ports.AnchorBottomRight: imaging.BottomRight,
}

// coverPipeline runs the generate → download → upload sequence for cover
// images and issues presigned URLs for stored objects.
type coverPipeline struct {
	images     ports.ImageGenerator
	fetcher    ports.ImageFetcher
	storage    ports.ObjectStorage
	bucket     string
	presignTTL time.Duration
	genTimeout time.Duration
}

func NewCoverPipeline(
	images ports.ImageGenerator,
	fetcher ports.ImageFetcher,
	storage ports.ObjectStorage,
	bucket string,
	presignTTL time.Duration,
	genTimeout time.Duration,
) *coverPipeline {
	if presignTTL <= 0 {
		presignTTL = time.Hour
	}
	return &coverPipeline{
		images:     images,
		fetcher:    fetcher,
		storage:    storage,
		bucket:     bucket,
		presignTTL: presignTTL,
		genTimeout: genTimeout,
	}
}

// generateAndStore produces a cover image for prompt, downloads it from the
// generator's transient URL, and uploads it to object storage. Nothing is
// persisted to the adventure record here.
func (p *coverPipeline) generateAndStore(ctx context.Context, prompt string) (bucket, key string, err error) {
	genCtx := ctx
	if p.genTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, p.genTimeout)
		defer cancel()
	}

	url, err := p.images.Generate(genCtx, prompt, ports.ImageSizePortrait)
	if err != nil {
		return "", "", wrapGeneratorErr("cover image", err)
	}

	data, ext, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", "", fmt.Errorf("%w: download cover image: %v", domain.ErrGeneratorFailure, err)
	}

	key = "covers/" + uuid.NewString() + ext
	contentType := "image/png"
	if ext == ".jpg" {
		contentType = "image/jpeg"
	}
	if err := p.storage.Upload(ctx, p.bucket, key, data, contentType); err != nil {
		return "", "", fmt.Errorf("%w: upload cover image: %v", domain.ErrStorageFailure, err)
	}

	return p.bucket, key, nil
}

func (p *coverPipeline) presign(ctx context.Context, bucket, key string) (string, error) {
	url, err := p.storage.PresignedURL(ctx, bucket, key, p.presignTTL)
	if err != nil {
		return "", fmt.Errorf("%w: presign %s/%s: %v", domain.ErrStorageFailure, bucket, key, err)
	}
	return url, nil
}

// ImageService manages cover images and thumbnail rendering.
type ImageService struct {
	repo   ports.AdventureRepository
	guard  *ownershipGuard
	covers *coverPipeline
	cache  ports.ThumbnailCache
	tasks  ports.TaskQueue
	logger zerolog.Logger
}

func NewImageService(
	repo ports.AdventureRepository,
	auth adminChecker,
	covers *coverPipeline,
	cache ports.ThumbnailCache,
	tasks ports.TaskQueue,
	logger zerolog.Logger,
) *ImageService {
	return &ImageService{
		repo:   repo,
		guard:  &ownershipGuard{repo: repo, auth: auth},
		covers: covers,
		cache:  cache,
		tasks:  tasks,
		logger: logger,
	}
}

// CoverURL issues a fresh presigned URL for the existing cover image.
func (s *ImageService) CoverURL(ctx context.Context, adventureID string, p domain.Principal) (string, error) {
	adventure, err := s.guard.forRead(ctx, adventureID, p)
	if err != nil {
		return "", err
	}
	if !adventure.HasCoverImage() {
		return "", domain.ErrNoCoverImage
	}
	return s.covers.presign(ctx, adventure.ImageBucket, adventure.ImageKey)
}

// UpdateCover attaches or regenerates the cover image. When a cover already
// exists and regeneration is not forced, the stored object is presigned and
// returned without calling the generator. Generation and upload failures
// surface hard; the adventure record is only updated after a successful
// upload, so no ambiguous partial state is left behind.
func (s *ImageService) UpdateCover(ctx context.Context, in ports.UpdateCoverInput) (string, error) {
	adventure, err := s.guard.forRead(ctx, in.AdventureID, in.Principal)
	if err != nil {
		return "", err
	}

	if adventure.HasCoverImage() && !in.ForceRegenerate {
		return s.covers.presign(ctx, adventure.ImageBucket, adventure.ImageKey)
	}

	// Regeneration mutates the record, so the stricter gate applies.
	if _, err := s.guard.forMutate(ctx, in.AdventureID, in.Principal); err != nil {
		return "", err
	}

	prompt := in.CustomPrompt
	if prompt == "" {
		prompt = adventure.UserPrompt
	}
	if prompt == "" {
		return "", domain.ErrNoPromptAvailable
	}

	bucket, key, err := s.covers.generateAndStore(ctx, prompt)
	if err != nil {
		return "", err
	}

	if err := s.repo.SetCoverImage(ctx, in.AdventureID, bucket, key); err != nil {
		return "", err
	}

	s.logger.Info().Str("adventure_id", in.AdventureID).Str("image_key", key).Msg("cover image updated")
	return s.covers.presign(ctx, bucket, key)
}

// Thumbnail renders the cover image at the requested size: crop to the
// target aspect ratio anchored at the requested position, resize, encode as
// JPEG at the requested quality. Results are cached under a deterministic
// key derived from the source object key and all four parameters.
func (s *ImageService) Thumbnail(ctx context.Context, in ports.ThumbnailInput) (*ports.ThumbnailResult, error) {
	if in.Width <= 0 || in.Width > maxThumbDimension || in.Height <= 0 || in.Height > maxThumbDimension {
		return nil, fmt.Errorf("%w: dimensions must be between 1 and %d", domain.ErrInvalidParameter, maxThumbDimension)
	}
	if in.Quality < minThumbQuality || in.Quality > maxThumbQuality {
		return nil, fmt.Errorf("%w: quality must be between %d and %d", domain.ErrInvalidParameter, minThumbQuality, maxThumbQuality)
	}
	anchor, ok := cropAnchors[in.Anchor]
	if !ok {
		return nil, fmt.Errorf("%w: unknown crop anchor %q", domain.ErrInvalidParameter, in.Anchor)
	}

	adventure, err := s.guard.forRead(ctx, in.AdventureID, in.Principal)
	if err != nil {
		return nil, err
	}
	if !adventure.HasCoverImage() {
		return nil, domain.ErrNoCoverImage
	}

	cacheKey := ThumbnailCacheKey(adventure.ImageKey, in.Width, in.Height, in.Anchor, in.Quality)

	if in.UseCache {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil && len(data) > 0 {
			return &ports.ThumbnailResult{Data: data, ContentType: "image/jpeg", FromCache: true}, nil
		}
	}

	source, err := s.covers.storage.Fetch(ctx, adventure.ImageBucket, adventure.ImageKey)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch cover image: %v", domain.ErrStorageFailure, err)
	}

	img, err := imaging.Decode(bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("%w: decode cover image: %v", domain.ErrStorageFailure, err)
	}

	thumb := imaging.Fill(img, in.Width, in.Height, anchor, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(in.Quality)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	data := buf.Bytes()

	if in.UseCache {
		s.tasks.Submit(cacheKey, func(ctx context.Context) error {
			if err := s.cache.Set(ctx, cacheKey, data); err != nil {
				s.logger.Warn().Err(err).Str("cache_key", cacheKey).Msg("failed to cache thumbnail")
			}
			return nil
		})
	}

	return &ports.ThumbnailResult{Data: data, ContentType: "image/jpeg"}, nil
}

// ThumbnailCacheKey derives the deterministic cache key for one rendering of
// a source image. Identical arguments always produce identical keys.
func ThumbnailCacheKey(imageKey string, width, height int, anchor ports.CropAnchor, quality int) string {
	return fmt.Sprintf("thumb:%s:%dx%d:%s:q%d", imageKey, width, height, anchor, quality)
}
