package validators

import (
	"fmt"

	"cardboard/domain/core/aggregates"
	"cardboard/domain/core/valueobjects"
	pkgerrors "cardboard/pkg/errors"
)

// BoardValidator checks the cross-entity consistency rules of a board
// snapshot: rules the codec cannot express as per-entity struct tags.
// Dangling connection endpoints can legitimately occur in hand-edited
// documents, so the validator reports them instead of the codec rejecting
// the file outright.
type BoardValidator struct{}

// NewBoardValidator creates a validator with default rules
func NewBoardValidator() *BoardValidator {
	return &BoardValidator{}
}

// Validate reports every consistency violation in the snapshot. An empty
// slice means the board is internally consistent.
func (v *BoardValidator) Validate(snap aggregates.Snapshot) []error {
	var problems []error

	seen := map[string]bool{}
	cardIDs := map[string]bool{}

	for _, card := range snap.Cards {
		if card == nil {
			continue
		}
		id := card.ID.String()
		if seen[id] {
			problems = append(problems, pkgerrors.NewValidationError(
				fmt.Sprintf("duplicate id %q", id)))
		}
		seen[id] = true
		cardIDs[id] = true

		if card.TodoState != "" && !card.IsTodo() {
			problems = append(problems, pkgerrors.NewValidationError(
				fmt.Sprintf("card %q has a todo state but is not a todo card", id)))
		}
	}

	for _, conn := range snap.Connections {
		if conn == nil {
			continue
		}
		id := conn.ID.String()
		if seen[id] {
			problems = append(problems, pkgerrors.NewValidationError(
				fmt.Sprintf("duplicate id %q", id)))
		}
		seen[id] = true

		problems = append(problems, v.checkEndpoint(cardIDs, conn.ID, "start", conn.Start)...)
		problems = append(problems, v.checkEndpoint(cardIDs, conn.ID, "end", conn.End)...)
	}

	return problems
}

func (v *BoardValidator) checkEndpoint(cardIDs map[string]bool, connID valueobjects.EntityID, side string, endpoint valueobjects.EntityID) []error {
	if cardIDs[endpoint.String()] {
		return nil
	}
	return []error{pkgerrors.NewValidationError(
		fmt.Sprintf("connection %q %s references missing card %q", connID.String(), side, endpoint.String()))}
}
