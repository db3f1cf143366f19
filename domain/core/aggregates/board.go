package aggregates

import (
	"cardboard/domain/core/entities"
	"cardboard/domain/core/valueobjects"
)

// Board is the aggregate root for one open document: the current card list
// and connection list, in persisted order. It is the single source of truth
// for board state; all mutation goes through the action layer, which owns
// the consistency rules (cascades, history bookkeeping). Board itself only
// provides the primitive operations.
//
// Cards keep insertion order (new cards append); connections keep reverse
// insertion order (new connections prepend). The codec serializes both
// slices as-is, so order is part of the persisted format.
type Board struct {
	cards       []*entities.Card
	connections []*entities.Connection
}

// NewBoard creates an empty board
func NewBoard() *Board {
	return &Board{
		cards:       []*entities.Card{},
		connections: []*entities.Connection{},
	}
}

// Snapshot is the persisted shape of a board: what the codec writes into
// the document's fenced JSON block.
type Snapshot struct {
	Cards       []*entities.Card       `json:"cards"`
	Connections []*entities.Connection `json:"connections"`
}

// Load replaces the board's contents wholesale. Nil entries are dropped,
// matching how sparse arrays in hand-edited documents are tolerated.
func (b *Board) Load(cards []*entities.Card, connections []*entities.Connection) {
	b.cards = b.cards[:0]
	for _, c := range cards {
		if c != nil {
			b.cards = append(b.cards, c)
		}
	}
	b.connections = b.connections[:0]
	for _, c := range connections {
		if c != nil {
			b.connections = append(b.connections, c)
		}
	}
}

// Clear empties the board
func (b *Board) Clear() {
	b.cards = b.cards[:0]
	b.connections = b.connections[:0]
}

// Snapshot returns a deep copy of the current state, safe to hand to a
// deferred save while the board keeps mutating.
func (b *Board) Snapshot() Snapshot {
	snap := Snapshot{
		Cards:       make([]*entities.Card, 0, len(b.cards)),
		Connections: make([]*entities.Connection, 0, len(b.connections)),
	}
	for _, c := range b.cards {
		snap.Cards = append(snap.Cards, c.Clone())
	}
	for _, c := range b.connections {
		snap.Connections = append(snap.Connections, c.Clone())
	}
	return snap
}

// FindCard returns the card with the given id, or nil
func (b *Board) FindCard(id valueobjects.EntityID) *entities.Card {
	for _, c := range b.cards {
		if c.ID.Equals(id) {
			return c
		}
	}
	return nil
}

// HasCard reports whether a card with the given id exists
func (b *Board) HasCard(id valueobjects.EntityID) bool {
	return b.FindCard(id) != nil
}

// AddCard appends a card to the board
func (b *Board) AddCard(card *entities.Card) {
	b.cards = append(b.cards, card)
}

// RemoveCard removes the card with the given id and returns it, or nil if
// no such card exists. Connections referencing the card are not touched;
// cascading is the action layer's job.
func (b *Board) RemoveCard(id valueobjects.EntityID) *entities.Card {
	for i, c := range b.cards {
		if c.ID.Equals(id) {
			b.cards = append(b.cards[:i], b.cards[i+1:]...)
			return c
		}
	}
	return nil
}

// FindConnection returns the connection with the given id, or nil
func (b *Board) FindConnection(id valueobjects.EntityID) *entities.Connection {
	for _, c := range b.connections {
		if c.ID.Equals(id) {
			return c
		}
	}
	return nil
}

// AddConnection prepends a connection to the board
func (b *Board) AddConnection(conn *entities.Connection) {
	b.connections = append([]*entities.Connection{conn}, b.connections...)
}

// RemoveConnection removes the connection with the given id and returns it,
// or nil if no such connection exists.
func (b *Board) RemoveConnection(id valueobjects.EntityID) *entities.Connection {
	for i, c := range b.connections {
		if c.ID.Equals(id) {
			b.connections = append(b.connections[:i], b.connections[i+1:]...)
			return c
		}
	}
	return nil
}

// RemoveConnectionsReferencing removes every connection whose start or end
// is the given card id, returning the removed connections in board order.
func (b *Board) RemoveConnectionsReferencing(id valueobjects.EntityID) []*entities.Connection {
	removed := []*entities.Connection{}
	kept := b.connections[:0]
	for _, c := range b.connections {
		if c.References(id) {
			removed = append(removed, c)
		} else {
			kept = append(kept, c)
		}
	}
	b.connections = kept
	return removed
}

// CardCount returns the number of cards on the board
func (b *Board) CardCount() int {
	return len(b.cards)
}

// ConnectionCount returns the number of connections on the board
func (b *Board) ConnectionCount() int {
	return len(b.connections)
}
