package ports

import "context"

// MessageRole tags a generator message with its conversational role.
type MessageRole string

const (
	RoleDeveloper MessageRole = "developer"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one entry of the role-tagged sequence sent to the story
// generator.
type Message struct {
	Role    MessageRole
	Content string
}

// NewStory is the structured result of a new-story generation.
type NewStory struct {
	Title    string   `json:"title"`
	Synopsis string   `json:"synopsis"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
}

// StoryNode is the structured result of a continuation generation.
type StoryNode struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// StoryGenerator produces structured narrative content from a role-tagged
// message sequence.
type StoryGenerator interface {
	NewStory(ctx context.Context, messages []Message) (*NewStory, error)
	NextNode(ctx context.Context, messages []Message) (*StoryNode, error)
}

// ImageSize is the target pixel-size enum of the image generator.
type ImageSize string

const (
	ImageSizeSquare   ImageSize = "1024x1024"
	ImageSizeWide     ImageSize = "1792x1024"
	ImageSizePortrait ImageSize = "1024x1792"
)

// ImageGenerator produces an image for a text prompt and returns a transient
// source URL that expires shortly after generation.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, size ImageSize) (string, error)
}

// ImageFetcher downloads a transient image URL. It returns the raw bytes and
// the file extension derived from the content type (".jpg" or ".png").
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}
