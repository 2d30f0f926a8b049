// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered member of the network.
//
// WHY ID string (not int)?
// IDs are generated with xid, which encodes the creation time in its first
// bytes. That makes IDs roughly sortable by registration time without a
// separate counter, and keeps them opaque to clients.
//
// PasswordHash holds the bcrypt output (salt included) and must never reach
// a client — hence `json:"-"`. Handlers serialize the struct directly and
// rely on that tag.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"` // unique handle, used for login
	Email        string    `json:"email"`    // unique
	PasswordHash string    `json:"-"`
	GitHubURL    string    `json:"githubUrl,omitempty"`
	LinkedinURL  string    `json:"linkedinUrl,omitempty"`
	GitHubID     int64     `json:"githubId,omitempty"` // set only for OAuth-created accounts
	ProfileImage string    `json:"profileImage"`       // path under /uploads or an external URL
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSummary is the subset of User embedded in other records and returned
// from joins (connection lists, author snapshots). It never carries the
// password hash or email.
type UserSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username,omitempty"`
	ProfileImage string `json:"profileImage"`
	GitHubURL    string `json:"githubUrl,omitempty"`
}

// Summary returns the embeddable view of a user, read from the current record.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		ProfileImage: u.ProfileImage,
		GitHubURL:    u.GitHubURL,
	}
}
