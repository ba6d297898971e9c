// Package sanitize provides input sanitization for user-supplied text:
// prompts, emails, names and story content.
package sanitize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Maximum lengths guard against oversized payloads.
const (
	MaxPromptLength = 2000
	MaxEmailLength  = 254
	MaxNameLength   = 100
	MaxStoryLength  = 50000
)

var (
	// strict strips every tag and attribute.
	strict = bluemonday.StrictPolicy()
	// story keeps minimal formatting for narrative text.
	story = newStoryPolicy()

	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z0-9\s\-_]+$`)

	suspiciousPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
		regexp.MustCompile(`(?i)javascript:`),
		regexp.MustCompile(`(?i)data:text/html`),
		regexp.MustCompile(`(?i)vbscript:`),
		regexp.MustCompile(`(?i)on\w+\s*=`),
	}
)

func newStoryPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em", "u")
	return p
}

// Prompt cleans a user-provided story prompt. HTML tags are removed entirely
// and common injection patterns are rejected.
func Prompt(prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt cannot be empty")
	}
	if len(prompt) > MaxPromptLength {
		return "", fmt.Errorf("prompt too long, maximum %d characters allowed", MaxPromptLength)
	}
	for _, re := range suspiciousPatterns {
		if re.MatchString(prompt) {
			return "", errors.New("prompt contains forbidden content")
		}
	}
	return strict.Sanitize(prompt), nil
}

// Email normalizes an email address to lowercase and validates its format.
func Email(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", errors.New("email cannot be empty")
	}
	if len(email) > MaxEmailLength {
		return "", fmt.Errorf("email too long, maximum %d characters allowed", MaxEmailLength)
	}
	if !emailPattern.MatchString(email) {
		return "", errors.New("invalid email format")
	}
	return email, nil
}

// Name cleans short identifiers such as API key names and scopes. Only
// letters, digits, spaces, hyphens and underscores are allowed.
func Name(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return "", fmt.Errorf("name too long, maximum %d characters allowed", MaxNameLength)
	}
	name = strings.TrimSpace(strict.Sanitize(name))
	if !namePattern.MatchString(name) {
		return "", errors.New("name contains invalid characters")
	}
	return name, nil
}

// StoryContent cleans generated narrative text while preserving basic
// formatting tags.
func StoryContent(content string) (string, error) {
	if content == "" {
		return "", nil
	}
	if len(content) > MaxStoryLength {
		return "", fmt.Errorf("story content too long, maximum %d characters allowed", MaxStoryLength)
	}
	return story.Sanitize(content), nil
}
