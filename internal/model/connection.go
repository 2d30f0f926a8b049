package model

import "time"

// ConnectionStatus is the lifecycle state of a connection between two users.
//
// STATE MACHINE:
//
//	pending → accepted   (target accepts the request)
//	pending → rejected   (target rejects the request)
//
// Both transitions are one-way. A connection in any status blocks a new
// request for the same pair — the existing record must be removed first.
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

// Connection is an undirected relationship between two users.
//
// User1ID/User2ID are stored in request order (requester first), but the
// pair is logically unordered: a request from B to A is a duplicate of an
// existing A↔B record. RequesterID disambiguates who initiated the request,
// which matters for accept/reject (only the target may act) and for routing
// the accepted/rejected notifications back to the requester.
type Connection struct {
	ID          string           `json:"id"`
	User1ID     string           `json:"user1Id"`
	User2ID     string           `json:"user2Id"`
	RequesterID string           `json:"requesterId"`
	Status      ConnectionStatus `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Involves reports whether the given user is one of the two parties.
func (c *Connection) Involves(userID string) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OtherUser returns the party that is not the given user.
// Callers must check Involves first.
func (c *Connection) OtherUser(userID string) string {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// ConnectionView is the enriched shape returned from connection listings:
// the connection id plus the OTHER party's current profile fields.
//
// Unlike post author snapshots, this view is joined against the live user
// record at read time, so renames and new profile images show up immediately.
type ConnectionView struct {
	ID        string      `json:"id"`
	User      UserSummary `json:"user"`
	CreatedAt time.Time   `json:"createdAt"`
}
