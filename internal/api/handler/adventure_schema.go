package handler

import (
	"time"

	"github.com/adventureapp/adventure-api/internal/core/domain"
	"github.com/adventureapp/adventure-api/internal/core/ports"
)

// --- Request types ---

type startAdventureRequest struct {
	Prompt           string `json:"prompt" validate:"required"`
	Perspective      string `json:"perspective" validate:"omitempty,oneof='First Person' 'Second Person' 'Third Person'"`
	MaxLevels        int    `json:"max_levels" validate:"omitempty,gte=1"`
	MinWordsPerLevel int    `json:"min_words_per_level" validate:"omitempty,gte=1"`
	MaxWordsPerLevel int    `json:"max_words_per_level" validate:"omitempty,gte=1"`
	WithCoverImage   bool   `json:"with_cover_image"`
}

type continueAdventureRequest struct {
	StartFromNode  int    `json:"start_from_node" validate:"gte=0"`
	SelectedOption int    `json:"selected_option" validate:"gte=0"`
	Outcome        string `json:"outcome" validate:"omitempty,oneof=continue finish dead"`
}

type truncateAdventureRequest struct {
	NodeIndex int `json:"node_index" validate:"gte=0"`
}

// --- Response types ---

type startAdventureResponse struct {
	AdventureID   string    `json:"adventure_id"`
	Title         string    `json:"title"`
	Synopsis      string    `json:"synopsis"`
	CreatedAt     time.Time `json:"created_at"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
}

type continueAdventureResponse struct {
	AdventureID string `json:"adventure_id"`
	NodeIndex   int    `json:"node_index"`
}

type cloneAdventureResponse struct {
	AdventureID string    `json:"adventure_id"`
	Title       string    `json:"title"`
	Synopsis    string    `json:"synopsis"`
	CreatedAt   time.Time `json:"created_at"`
	CloneOf     string    `json:"clone_of"`
}

type adventureNodesResponse struct {
	AdventureID string        `json:"adventure_id"`
	Title       string        `json:"title"`
	Synopsis    string        `json:"synopsis"`
	Perspective string        `json:"perspective"`
	IsPublic    bool          `json:"is_public"`
	Nodes       []domain.Node `json:"nodes"`
}

type listAdventuresResponse struct {
	Adventures []ports.AdventureSummary `json:"adventures"`
}

type coverImageResponse struct {
	AdventureID   string `json:"adventure_id"`
	CoverImageURL string `json:"cover_image_url"`
}
