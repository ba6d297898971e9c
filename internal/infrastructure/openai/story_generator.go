package openai

import (
	"context"
	"encoding/json"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/adventureapp/adventure-api/internal/core/ports"
)

// StoryGenerator produces structured narrative JSON via chat completions.
type StoryGenerator struct {
	client *goopenai.Client
	model  string
}

func NewStoryGenerator(client *goopenai.Client, model string) *StoryGenerator {
	return &StoryGenerator{client: client, model: model}
}

// NewStory requests a fresh story opening with title, synopsis, text and
// forward options.
func (g *StoryGenerator) NewStory(ctx context.Context, messages []ports.Message) (*ports.NewStory, error) {
	var story ports.NewStory
	if err := g.complete(ctx, messages, &story); err != nil {
		return nil, err
	}
	if story.Text == "" {
		return nil, fmt.Errorf("story generator returned empty text")
	}
	if story.Options == nil {
		story.Options = []string{}
	}
	return &story, nil
}

// NextNode requests a continuation chapter.
func (g *StoryGenerator) NextNode(ctx context.Context, messages []ports.Message) (*ports.StoryNode, error) {
	var node ports.StoryNode
	if err := g.complete(ctx, messages, &node); err != nil {
		return nil, err
	}
	if node.Text == "" {
		return nil, fmt.Errorf("story generator returned empty text")
	}
	if node.Options == nil {
		node.Options = []string{}
	}
	return &node, nil
}

func (g *StoryGenerator) complete(ctx context.Context, messages []ports.Message, out any) error {
	resp, err := g.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:    g.model,
		Messages: toChatMessages(messages),
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("chat completion returned no choices")
	}

	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("decode completion payload: %w", err)
	}
	return nil
}

func toChatMessages(messages []ports.Message) []goopenai.ChatCompletionMessage {
	out := make([]goopenai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := goopenai.ChatMessageRoleUser
		switch m.Role {
		case ports.RoleDeveloper:
			role = goopenai.ChatMessageRoleSystem
		case ports.RoleAssistant:
			role = goopenai.ChatMessageRoleAssistant
		}
		out = append(out, goopenai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}
