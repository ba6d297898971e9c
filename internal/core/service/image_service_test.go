package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"github.com/adventureapp/adventure-api/internal/core/domain"
	"github.com/adventureapp/adventure-api/internal/core/ports"
)

type stubStorage struct {
	objects map[string][]byte

	uploads   int
	fetches   int
	presigned int
}

func newStubStorage() *stubStorage {
	return &stubStorage{objects: make(map[string][]byte)}
}

func (s *stubStorage) Upload(_ context.Context, bucket, key string, data []byte, _ string) error {
	s.uploads++
	s.objects[bucket+"/"+key] = data
	return nil
}

func (s *stubStorage) PresignedURL(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	s.presigned++
	return "https://signed.example/" + bucket + "/" + key, nil
}

func (s *stubStorage) Fetch(_ context.Context, bucket, key string) ([]byte, error) {
	s.fetches++
	data, ok := s.objects[bucket+"/"+key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (s *stubStorage) Exists(_ context.Context, bucket, key string) (bool, error) {
	_, ok := s.objects[bucket+"/"+key]
	return ok, nil
}

type stubImageGenerator struct {
	url     string
	err     error
	calls   int
	prompts []string
}

func (g *stubImageGenerator) Generate(_ context.Context, prompt string, _ ports.ImageSize) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.url, nil
}

type stubImageFetcher struct {
	data []byte
	ext  string
	err  error
}

func (f *stubImageFetcher) Fetch(_ context.Context, _ string) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.data, f.ext, nil
}

type stubThumbCache struct {
	entries map[string][]byte
	getErr  error
}

func newStubThumbCache() *stubThumbCache {
	return &stubThumbCache{entries: make(map[string][]byte)}
}

// Get mirrors the cache adapter contract: a miss is (nil, nil), never an
// error.
func (c *stubThumbCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[key], nil
}

func (c *stubThumbCache) Set(_ context.Context, key string, data []byte) error {
	c.entries[key] = data
	return nil
}

type imageFixture struct {
	repo    *stubAdventureRepo
	storage *stubStorage
	gen     *stubImageGenerator
	cache   *stubThumbCache
	tasks   *syncTasks
	svc     *ImageService
}

func newImageFixture() *imageFixture {
	repo := newStubAdventureRepo()
	storage := newStubStorage()
	gen := &stubImageGenerator{url: "https://img.example/generated"}
	fetcher := &stubImageFetcher{data: encodeTestImage(64, 64), ext: ".png"}
	cache := newStubThumbCache()
	tasks := &syncTasks{}

	covers := NewCoverPipeline(gen, fetcher, storage, "covers-bucket", time.Hour, 0)
	svc := NewImageService(repo, &stubAdmins{}, covers, cache, tasks, zerolog.Nop())

	return &imageFixture{repo: repo, storage: storage, gen: gen, cache: cache, tasks: tasks, svc: svc}
}

// seedAdventure inserts an adventure directly, optionally with a stored
// cover object.
func (f *imageFixture) seedAdventure(ownerID, prompt string, withCover bool) string {
	a := &domain.Adventure{
		OwnerID:    ownerID,
		UserPrompt: prompt,
		CreatedAt:  time.Now().UTC(),
		Nodes:      []domain.Node{},
	}
	if withCover {
		a.ImageBucket = "covers-bucket"
		a.ImageKey = "covers/seed.png"
		f.storage.objects["covers-bucket/covers/seed.png"] = encodeTestImage(100, 80)
	}
	id, _ := f.repo.Insert(context.Background(), a)
	return id
}

func encodeTestImage(w, h int) []byte {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), imaging.PNG); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func thumbInput(id string, p domain.Principal) ports.ThumbnailInput {
	return ports.ThumbnailInput{
		AdventureID: id,
		Principal:   p,
		Width:       40,
		Height:      40,
		Anchor:      ports.AnchorCenter,
		Quality:     85,
		UseCache:    true,
	}
}

func TestThumbnailCacheKey_Deterministic(t *testing.T) {
	a := ThumbnailCacheKey("covers/x.png", 100, 50, ports.AnchorTop, 80)
	b := ThumbnailCacheKey("covers/x.png", 100, 50, ports.AnchorTop, 80)
	if a != b {
		t.Fatalf("identical inputs must yield identical keys: %q vs %q", a, b)
	}
	if a == ThumbnailCacheKey("covers/x.png", 100, 50, ports.AnchorTop, 81) {
		t.Fatalf("quality must be part of the key")
	}
	if a == ThumbnailCacheKey("covers/y.png", 100, 50, ports.AnchorTop, 80) {
		t.Fatalf("image key must be part of the key")
	}
}

func TestImageService_Thumbnail_Validation(t *testing.T) {
	f := newImageFixture()
	id := f.seedAdventure("user_1", "a castle", true)
	p := userPrincipal("user_1")

	cases := []ports.ThumbnailInput{
		{AdventureID: id, Principal: p, Width: 0, Height: 40, Anchor: ports.AnchorCenter, Quality: 85},
		{AdventureID: id, Principal: p, Width: 40, Height: 2001, Anchor: ports.AnchorCenter, Quality: 85},
		{AdventureID: id, Principal: p, Width: 40, Height: 40, Anchor: ports.AnchorCenter, Quality: 0},
		{AdventureID: id, Principal: p, Width: 40, Height: 40, Anchor: ports.AnchorCenter, Quality: 101},
		{AdventureID: id, Principal: p, Width: 40, Height: 40, Anchor: "middle", Quality: 85},
	}
	for i, in := range cases {
		if _, err := f.svc.Thumbnail(context.Background(), in); !errors.Is(err, domain.ErrInvalidParameter) {
			t.Fatalf("case %d: expected ErrInvalidParameter, got %v", i, err)
		}
	}
}

func TestImageService_Thumbnail_NoCover(t *testing.T) {
	f := newImageFixture()
	id := f.seedAdventure("user_1", "a castle", false)

	_, err := f.svc.Thumbnail(context.Background(), thumbInput(id, userPrincipal("user_1")))
	if !errors.Is(err, domain.ErrNoCoverImage) {
		t.Fatalf("expected ErrNoCoverImage, got %v", err)
	}
}

func TestImageService_Thumbnail_Renders(t *testing.T) {
	f := newImageFixture()
	id := f.seedAdventure("user_1", "a castle", true)

	result, err := f.svc.Thumbnail(context.Background(), thumbInput(id, userPrincipal("user_1")))
	if err != nil {
		t.Fatalf("Thumbnail returned error: %v", err)
	}
	if result.FromCache {
		t.Fatalf("first render must not come from cache")
	}
	if result.ContentType != "image/jpeg" {
		t.Fatalf("expected jpeg content type, got %q", result.ContentType)
	}

	img, err := imaging.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("thumbnail does not decode: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 40 || bounds.Dy() != 40 {
		t.Fatalf("expected 40x40 thumbnail, got %dx%d", bounds.Dx(), bounds.Dy())
	}

	if f.tasks.submitted != 1 {
		t.Fatalf("expected one cache write task, got %d", f.tasks.submitted)
	}
	key := ThumbnailCacheKey("covers/seed.png", 40, 40, ports.AnchorCenter, 85)
	if len(f.cache.entries[key]) == 0 {
		t.Fatalf("expected rendered thumbnail to be cached")
	}
}

func TestImageService_Thumbnail_CacheHit(t *testing.T) {
	f := newImageFixture()
	id := f.seedAdventure("user_1", "a castle", true)

	key := ThumbnailCacheKey("covers/seed.png", 40, 40, ports.AnchorCenter, 85)
	f.cache.entries[key] = []byte("cached-bytes")

	result, err := f.svc.Thumbnail(context.Background(), thumbInput(id, userPrincipal("user_1")))
	if err != nil {
		t.Fatalf("Thumbnail returned error: %v", err)
	}
	if !result.FromCache {
		t.Fatalf("expected cache hit")
	}
	if string(result.Data) != "cached-bytes" {
		t.Fatalf("unexpected cached payload %q", result.Data)
	}
	if f.storage.fetches != 0 {
		t.Fatalf("cache hit must not touch storage, got %d fetches", f.storage.fetches)
	}
}

func TestImageService_Thumbnail_CacheBypass(t *testing.T) {
	f := newImageFixture()
	id := f.seedAdventure("user_1", "a castle", true)

	key := ThumbnailCacheKey("covers/seed.png", 40, 40, ports.AnchorCenter, 85)
	f.cache.entries[key] = []byte("stale")

	in := thumbInput(id, userPrincipal("user_1"))
	in.UseCache = false

	result, err := f.svc.Thumbnail(context.Background(), in)
	if err != nil {
		t.Fatalf("Thumbnail returned error: %v", err)
	}
	if result.FromCache {
		t.Fatalf("cache bypass must render fresh")
	}
	if f.tasks.submitted != 0 {
		t.Fatalf("cache bypass must not schedule cache writes, got %d", f.tasks.submitted)
	}
}

func TestImageService_CoverURL(t *testing.T) {
	f := newImageFixture()
	id := f.seedAdventure("user_1", "a castle", true)

	url, err := f.svc.CoverURL(context.Background(), id, userPrincipal("user_1"))
	if err != nil {
		t.Fatalf("CoverURL returned error: %v", err)
	}
	if !strings.Contains(url, "covers/seed.png") {
		t.Fatalf("expected presigned URL for stored object, got %q", url)
	}

	bare := f.seedAdventure("user_1", "a castle", false)
	if _, err := f.svc.CoverURL(context.Background(), bare, userPrincipal("user_1")); !errors.Is(err, domain.ErrNoCoverImage) {
		t.Fatalf("expected ErrNoCoverImage, got %v", err)
	}

	if _, err := f.svc.CoverURL(context.Background(), "missing", userPrincipal("user_1")); !errors.Is(err, domain.ErrAdventureNotFound) {
		t.Fatalf("expected ErrAdventureNotFound, got %v", err)
	}
}

func TestImageService_UpdateCover_ExistingWithoutForce(t *testing.T) {
	f := newImageFixture()
	id := f.seedAdventure("user_1", "a castle", true)

	url, err := f.svc.UpdateCover(context.Background(), ports.UpdateCoverInput{
		AdventureID: id, Principal: userPrincipal("user_1"),
	})
	if err != nil {
		t.Fatalf("UpdateCover returned error: %v", err)
	}
	if !strings.Contains(url, "covers/seed.png") {
		t.Fatalf("expected URL of existing cover, got %q", url)
	}
	if f.gen.calls != 0 {
		t.Fatalf("existing cover without force must not call the generator")
	}
}

func TestImageService_UpdateCover_ForceRegenerates(t *testing.T) {
	f := newImageFixture()
	id := f.seedAdventure("user_1", "a castle", true)

	url, err := f.svc.UpdateCover(context.Background(), ports.UpdateCoverInput{
		AdventureID: id, Principal: userPrincipal("user_1"), ForceRegenerate: true,
	})
	if err != nil {
		t.Fatalf("UpdateCover returned error: %v", err)
	}
	if f.gen.calls != 1 {
		t.Fatalf("expected one generator call, got %d", f.gen.calls)
	}
	if f.gen.prompts[0] != "a castle" {
		t.Fatalf("expected original prompt, got %q", f.gen.prompts[0])
	}
	if f.storage.uploads != 1 {
		t.Fatalf("expected one upload, got %d", f.storage.uploads)
	}

	stored := f.repo.adventures[id]
	if stored.ImageKey == "covers/seed.png" {
		t.Fatalf("expected a new image key after regeneration")
	}
	if !strings.HasPrefix(stored.ImageKey, "covers/") {
		t.Fatalf("unexpected image key %q", stored.ImageKey)
	}
	if !strings.Contains(url, stored.ImageKey) {
		t.Fatalf("returned URL %q does not reference stored key %q", url, stored.ImageKey)
	}
}

func TestImageService_UpdateCover_CustomPrompt(t *testing.T) {
	f := newImageFixture()
	id := f.seedAdventure("user_1", "a castle", false)

	if _, err := f.svc.UpdateCover(context.Background(), ports.UpdateCoverInput{
		AdventureID: id, Principal: userPrincipal("user_1"), CustomPrompt: "a dragon at dusk",
	}); err != nil {
		t.Fatalf("UpdateCover returned error: %v", err)
	}
	if f.gen.prompts[0] != "a dragon at dusk" {
		t.Fatalf("expected custom prompt to win, got %q", f.gen.prompts[0])
	}
}

func TestImageService_UpdateCover_NoPrompt(t *testing.T) {
	f := newImageFixture()
	id := f.seedAdventure("user_1", "", false)

	_, err := f.svc.UpdateCover(context.Background(), ports.UpdateCoverInput{
		AdventureID: id, Principal: userPrincipal("user_1"),
	})
	if !errors.Is(err, domain.ErrNoPromptAvailable) {
		t.Fatalf("expected ErrNoPromptAvailable, got %v", err)
	}
	if f.gen.calls != 0 {
		t.Fatalf("generator must not run without a prompt")
	}
}

func TestImageService_UpdateCover_PublicReaderCannotRegenerate(t *testing.T) {
	f := newImageFixture()
	id := f.seedAdventure("owner_1", "a castle", true)
	f.repo.adventures[id].IsPublic = true

	_, err := f.svc.UpdateCover(context.Background(), ports.UpdateCoverInput{
		AdventureID: id, Principal: userPrincipal("reader_1"), ForceRegenerate: true,
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if f.gen.calls != 0 {
		t.Fatalf("forbidden caller must not trigger generation")
	}
}

func TestImageService_UpdateCover_GeneratorFailure(t *testing.T) {
	f := newImageFixture()
	id := f.seedAdventure("user_1", "a castle", false)
	f.gen.err = errors.New("model unavailable")

	_, err := f.svc.UpdateCover(context.Background(), ports.UpdateCoverInput{
		AdventureID: id, Principal: userPrincipal("user_1"),
	})
	if !errors.Is(err, domain.ErrGeneratorFailure) {
		t.Fatalf("expected ErrGeneratorFailure, got %v", err)
	}
	if f.repo.adventures[id].HasCoverImage() {
		t.Fatalf("failed generation must not attach a cover")
	}
}
