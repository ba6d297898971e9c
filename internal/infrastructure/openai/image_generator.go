package openai

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/adventureapp/adventure-api/internal/core/ports"
)

// ImageGenerator produces cover images and returns the transient source URL
// the provider hosts them on.
type ImageGenerator struct {
	client *goopenai.Client
	model  string
}

func NewImageGenerator(client *goopenai.Client, model string) *ImageGenerator {
	return &ImageGenerator{client: client, model: model}
}

func (g *ImageGenerator) Generate(ctx context.Context, prompt string, size ports.ImageSize) (string, error) {
	resp, err := g.client.CreateImage(ctx, goopenai.ImageRequest{
		Model:          g.model,
		Prompt:         prompt,
		Size:           string(size),
		N:              1,
		ResponseFormat: goopenai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", fmt.Errorf("image generation: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", fmt.Errorf("image generation returned no url")
	}
	return resp.Data[0].URL, nil
}
