package entities

import (
	"cardboard/domain/core/valueobjects"
)

// CardType represents the kind of content a card carries
type CardType string

const (
	CardTypeMarkdown CardType = "markdown"
	CardTypeAsset    CardType = "asset"
	CardTypeTodo     CardType = "todo"
)

// TodoState represents the checked state of a todo card
type TodoState string

const (
	TodoStateOpen TodoState = "todo"
	TodoStateDone TodoState = "done"
)

// Card is a movable content unit on the board. Its field layout mirrors the
// persisted JSON payload exactly; the codec marshals cards as-is.
type Card struct {
	ID        valueobjects.EntityID  `json:"id" validate:"required"`
	Content   string                 `json:"content"`
	Width     *float64               `json:"width,omitempty"`
	Pos       valueobjects.Position  `json:"pos"`
	UpdatedAt valueobjects.Timestamp `json:"updatedAt"`
	Type      CardType               `json:"type" validate:"required,oneof=markdown asset todo"`
	TodoState TodoState              `json:"todoState,omitempty" validate:"omitempty,oneof=todo done"`
}

// Clone returns a deep copy, safe to keep as a history snapshot while the
// original keeps mutating.
func (c *Card) Clone() *Card {
	clone := *c
	if c.Width != nil {
		w := *c.Width
		clone.Width = &w
	}
	return &clone
}

// IsTodo reports whether the card is a todo card
func (c *Card) IsTodo() bool {
	return c.Type == CardTypeTodo
}
