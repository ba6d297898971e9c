package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/adventureapp/adventure-api/internal/core/domain"
	"github.com/adventureapp/adventure-api/internal/core/ports"
)

type stubImageService struct {
	url    string
	result *ports.ThumbnailResult
	err    error

	updateInput ports.UpdateCoverInput
	thumbInput  ports.ThumbnailInput
}

func (s *stubImageService) CoverURL(context.Context, string, domain.Principal) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

func (s *stubImageService) UpdateCover(_ context.Context, in ports.UpdateCoverInput) (string, error) {
	s.updateInput = in
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

func (s *stubImageService) Thumbnail(_ context.Context, in ports.ThumbnailInput) (*ports.ThumbnailResult, error) {
	s.thumbInput = in
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestImageHandler_GetCover(t *testing.T) {
	svc := &stubImageService{url: "https://signed.example/covers/x.png"}
	h := NewImageHandler(svc)

	c, rec := newRequestContext(http.MethodGet, "/v1/adventures/adv_1/cover", "", testPrincipal())
	c.SetParamNames("id")
	c.SetParamValues("adv_1")

	if err := h.GetCover(c); err != nil {
		t.Fatalf("GetCover returned error: %v", err)
	}

	var resp coverImageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response does not decode: %v", err)
	}
	if resp.AdventureID != "adv_1" || resp.CoverImageURL != svc.url {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestImageHandler_GetCover_NoCover(t *testing.T) {
	h := NewImageHandler(&stubImageService{err: domain.ErrNoCoverImage})

	c, _ := newRequestContext(http.MethodGet, "/v1/adventures/adv_1/cover", "", testPrincipal())
	c.SetParamNames("id")
	c.SetParamValues("adv_1")

	if err := h.GetCover(c); !errors.Is(err, domain.ErrNoCoverImage) {
		t.Fatalf("expected ErrNoCoverImage, got %v", err)
	}
}

func TestImageHandler_UpdateCover(t *testing.T) {
	svc := &stubImageService{url: "https://signed.example/covers/new.png"}
	h := NewImageHandler(svc)

	c, rec := newRequestContext(http.MethodPut, "/v1/adventures/adv_1/cover",
		`{"force_regenerate":true,"custom_prompt":"a dragon"}`, testPrincipal())
	c.SetParamNames("id")
	c.SetParamValues("adv_1")

	if err := h.UpdateCover(c); err != nil {
		t.Fatalf("UpdateCover returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	in := svc.updateInput
	if !in.ForceRegenerate || in.CustomPrompt != "a dragon" || in.AdventureID != "adv_1" {
		t.Fatalf("request fields not forwarded: %+v", in)
	}
}

func TestImageHandler_Thumbnail_Defaults(t *testing.T) {
	svc := &stubImageService{
		result: &ports.ThumbnailResult{Data: []byte("jpeg-bytes"), ContentType: "image/jpeg"},
	}
	h := NewImageHandler(svc)

	c, rec := newRequestContext(http.MethodGet, "/v1/adventures/adv_1/cover/thumbnail", "", testPrincipal())
	c.SetParamNames("id")
	c.SetParamValues("adv_1")

	if err := h.Thumbnail(c); err != nil {
		t.Fatalf("Thumbnail returned error: %v", err)
	}

	in := svc.thumbInput
	if in.Width != 256 || in.Height != 256 || in.Quality != 85 {
		t.Fatalf("defaults not applied: %+v", in)
	}
	if in.Anchor != ports.AnchorCenter || !in.UseCache {
		t.Fatalf("defaults not applied: %+v", in)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Fatalf("expected jpeg content type, got %q", ct)
	}
	if rec.Body.String() != "jpeg-bytes" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestImageHandler_Thumbnail_QueryParams(t *testing.T) {
	svc := &stubImageService{
		result: &ports.ThumbnailResult{Data: []byte("x"), ContentType: "image/jpeg"},
	}
	h := NewImageHandler(svc)

	c, _ := newRequestContext(http.MethodGet,
		"/v1/adventures/adv_1/cover/thumbnail?width=100&height=50&anchor=top-left&quality=60&use_cache=false",
		"", testPrincipal())
	c.SetParamNames("id")
	c.SetParamValues("adv_1")

	if err := h.Thumbnail(c); err != nil {
		t.Fatalf("Thumbnail returned error: %v", err)
	}

	in := svc.thumbInput
	if in.Width != 100 || in.Height != 50 || in.Quality != 60 {
		t.Fatalf("query params not forwarded: %+v", in)
	}
	if in.Anchor != ports.AnchorTopLeft || in.UseCache {
		t.Fatalf("query params not forwarded: %+v", in)
	}
}

func TestImageHandler_Thumbnail_UnparsableDimension(t *testing.T) {
	// A non-numeric width is forwarded as an out-of-range value so the
	// service rejects it instead of silently falling back to the default.
	svc := &stubImageService{err: domain.ErrInvalidParameter}
	h := NewImageHandler(svc)

	c, _ := newRequestContext(http.MethodGet,
		"/v1/adventures/adv_1/cover/thumbnail?width=abc", "", testPrincipal())
	c.SetParamNames("id")
	c.SetParamValues("adv_1")

	if err := h.Thumbnail(c); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if svc.thumbInput.Width != -1 {
		t.Fatalf("expected sentinel width -1, got %d", svc.thumbInput.Width)
	}
}
