package domain

import (
	"errors"
	"time"
)

// Perspective is the narrative voice a story is told in.
type Perspective string

const (
	FirstPerson  Perspective = "First Person"
	SecondPerson Perspective = "Second Person"
	ThirdPerson  Perspective = "Third Person"
)

// Outcome shapes the instruction given to the story generator when a
// continuation is requested.
type Outcome string

const (
	// OutcomeContinue asks for a next chapter with 2-3 forward options.
	OutcomeContinue Outcome = "continue"
	// OutcomeFinish asks for a concluding chapter with a positive ending.
	OutcomeFinish Outcome = "finish"
	// OutcomeDead asks for a concluding chapter in which the protagonist dies.
	OutcomeDead Outcome = "dead"
)

var ErrAdventureNotFound = errors.New("adventure not found")
var ErrForbidden = errors.New("access forbidden")
var ErrNodeIndexOutOfRange = errors.New("node index out of range")
var ErrOptionIndexOutOfRange = errors.New("option index out of range")
var ErrNoPromptAvailable = errors.New("no prompt available for image generation")
var ErrNoCoverImage = errors.New("adventure has no cover image")
var ErrInvalidParameter = errors.New("invalid parameter")
var ErrConcurrentModification = errors.New("adventure was modified concurrently")
var ErrGeneratorFailure = errors.New("generator failure")
var ErrGeneratorTimeout = errors.New("generator timed out")
var ErrStorageFailure = errors.New("storage failure")

// ValidPerspective reports whether p is one of the supported perspectives.
func ValidPerspective(p Perspective) bool {
	return p == FirstPerson || p == SecondPerson || p == ThirdPerson
}

// ValidOutcome reports whether o is a known continuation outcome.
func ValidOutcome(o Outcome) bool {
	return o == OutcomeContinue || o == OutcomeFinish || o == OutcomeDead
}

// Node is one chapter of a narrative. The first node of an adventure has a
// nil PrevOptionIndex. An empty Options slice denotes a terminal branch.
type Node struct {
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	PrevOptionIndex *int      `json:"prev_option_index" bson:"prev_option_index"`
	PrevOptionText  string    `json:"prev_option_text,omitempty" bson:"prev_option_text,omitempty"`
	Text            string    `json:"text" bson:"text"`
	Options         []string  `json:"options" bson:"options"`
}

// Adventure is the aggregate root: a branching narrative stored as one
// linear node sequence. Nodes are append-only except for explicit
// truncation, which discards a suffix permanently.
type Adventure struct {
	ID               string      `json:"id" bson:"_id,omitempty"`
	OwnerID          string      `json:"owner_id" bson:"owner_id"`
	Title            string      `json:"title" bson:"title"`
	Synopsis         string      `json:"synopsis" bson:"synopsis"`
	UserPrompt       string      `json:"user_prompt" bson:"user_prompt"`
	CreatedAt        time.Time   `json:"created_at" bson:"created_at"`
	Perspective      Perspective `json:"perspective" bson:"perspective"`
	MaxLevels        int         `json:"max_levels" bson:"max_levels"`
	MinWordsPerLevel int         `json:"min_words_per_level" bson:"min_words_per_level"`
	MaxWordsPerLevel int         `json:"max_words_per_level" bson:"max_words_per_level"`
	IsPublic         bool        `json:"is_public" bson:"is_public"`
	ImageBucket      string      `json:"image_bucket,omitempty" bson:"image_bucket,omitempty"`
	ImageKey         string      `json:"image_key,omitempty" bson:"image_key,omitempty"`
	CloneOf          string      `json:"clone_of,omitempty" bson:"clone_of,omitempty"`
	Nodes            []Node      `json:"nodes" bson:"nodes"`
}

// HasCoverImage reports whether a stored cover image is attached.
func (a *Adventure) HasCoverImage() bool {
	return a.ImageBucket != "" && a.ImageKey != ""
}

// CanRead implements the ownership invariant for read access:
// admins, public adventures, and owners.
func (a *Adventure) CanRead(actorID string, isAdmin bool) bool {
	return isAdmin || a.IsPublic || a.OwnerID == actorID
}

// CanMutate gates destructive operations (delete, truncate, cover
// regeneration): owners and admins only. A public flag grants reading,
// never mutation.
func (a *Adventure) CanMutate(actorID string, isAdmin bool) bool {
	return isAdmin || a.OwnerID == actorID
}
