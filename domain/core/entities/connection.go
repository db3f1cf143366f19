package entities

import (
	"cardboard/domain/core/valueobjects"
)

// Connection is a directed link between two cards. Parallel connections
// between the same pair are permitted.
type Connection struct {
	ID        valueobjects.EntityID  `json:"id" validate:"required"`
	Start     valueobjects.EntityID  `json:"start" validate:"required"`
	End       valueobjects.EntityID  `json:"end" validate:"required"`
	UpdatedAt valueobjects.Timestamp `json:"updatedAt"`
}

// Clone returns a copy safe to keep as a history snapshot
func (c *Connection) Clone() *Connection {
	clone := *c
	return &clone
}

// References reports whether the connection touches the given card id as
// either endpoint.
func (c *Connection) References(id valueobjects.EntityID) bool {
	return c.Start.Equals(id) || c.End.Equals(id)
}
