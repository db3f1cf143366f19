package actions

import (
	"cardboard/domain/core/entities"
	"cardboard/domain/core/valueobjects"
)

// Record is one entry on the undo or redo stack: a tagged snapshot of an
// entity as it existed before the mutation the record describes. For the
// New* variants the snapshot is the created entity itself, so that undo can
// remove it again.
//
// The interface is sealed; the five concrete types below are the only
// possible history actions. There is no record for connection updates
// because the action layer exposes no operation that updates a connection.
type Record interface {
	// entityID is the id of the entity the record snapshots, used by the
	// coalescing policy
	entityID() valueobjects.EntityID
}

// NewCard records that a card was created
type NewCard struct {
	Card *entities.Card
}

// UpdatedCard records a card's state before an update
type UpdatedCard struct {
	Card *entities.Card
}

// DeletedCard records a card's state before removal, together with the
// connections that were cascade-removed with it. Undo restores both.
type DeletedCard struct {
	Card     *entities.Card
	Cascaded []*entities.Connection
}

// NewConnection records that a connection was created
type NewConnection struct {
	Connection *entities.Connection
}

// DeletedConnection records a connection's state before removal
type DeletedConnection struct {
	Connection *entities.Connection
}

func (r NewCard) entityID() valueobjects.EntityID     { return r.Card.ID }
func (r UpdatedCard) entityID() valueobjects.EntityID { return r.Card.ID }
func (r DeletedCard) entityID() valueobjects.EntityID { return r.Card.ID }
func (r NewConnection) entityID() valueobjects.EntityID {
	return r.Connection.ID
}
func (r DeletedConnection) entityID() valueobjects.EntityID {
	return r.Connection.ID
}

