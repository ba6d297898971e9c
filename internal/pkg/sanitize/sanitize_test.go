package sanitize

import (
	"strings"
	"testing"
)

func TestPrompt_StripsTags(t *testing.T) {
	out, err := Prompt("a knight <b>rides</b> north")
	if err != nil {
		t.Fatalf("Prompt returned error: %v", err)
	}
	if strings.Contains(out, "<b>") {
		t.Fatalf("expected tags stripped, got %q", out)
	}
	if !strings.Contains(out, "rides") {
		t.Fatalf("expected text preserved, got %q", out)
	}
}

func TestPrompt_Empty(t *testing.T) {
	if _, err := Prompt("   "); err == nil {
		t.Fatalf("expected error for empty prompt")
	}
}

func TestPrompt_TooLong(t *testing.T) {
	if _, err := Prompt(strings.Repeat("a", MaxPromptLength+1)); err == nil {
		t.Fatalf("expected error for oversized prompt")
	}
}

func TestPrompt_RejectsInjection(t *testing.T) {
	cases := []string{
		"<script>alert(1)</script>",
		"click javascript:alert(1)",
		"data:text/html,hello",
		"vbscript:msgbox",
		"x onload=evil()",
	}
	for _, in := range cases {
		if _, err := Prompt(in); err == nil {
			t.Fatalf("expected rejection for %q", in)
		}
	}
}

func TestEmail_Normalizes(t *testing.T) {
	out, err := Email("  Alice@Example.COM ")
	if err != nil {
		t.Fatalf("Email returned error: %v", err)
	}
	if out != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", out)
	}
}

func TestEmail_InvalidFormat(t *testing.T) {
	for _, in := range []string{"", "not-an-email", "a@b", "a b@example.com"} {
		if _, err := Email(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestName_AllowsBasicCharacters(t *testing.T) {
	out, err := Name("ci-worker_01")
	if err != nil {
		t.Fatalf("Name returned error: %v", err)
	}
	if out != "ci-worker_01" {
		t.Fatalf("unexpected result %q", out)
	}
}

func TestName_RejectsSpecialCharacters(t *testing.T) {
	if _, err := Name("key; drop table"); err == nil {
		t.Fatalf("expected error for special characters")
	}
}

func TestStoryContent_KeepsFormattingTags(t *testing.T) {
	out, err := StoryContent("<p>The cave <script>x</script>was <em>dark</em>.</p>")
	if err != nil {
		t.Fatalf("StoryContent returned error: %v", err)
	}
	if !strings.Contains(out, "<em>dark</em>") {
		t.Fatalf("expected em preserved, got %q", out)
	}
	if strings.Contains(out, "script") {
		t.Fatalf("expected script removed, got %q", out)
	}
}

func TestStoryContent_EmptyIsAllowed(t *testing.T) {
	out, err := StoryContent("")
	if err != nil {
		t.Fatalf("StoryContent returned error: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty result, got %q", out)
	}
}
