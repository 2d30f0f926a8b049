package model

import "time"

// AuthorSnapshot is a denormalized copy of the author's display fields,
// taken at write time.
//
// This is a deliberate design choice, not an oversight: a post shows the
// author's name and picture AS THEY WERE when the post was created. Later
// profile edits do not rewrite old posts. Connection lists are the opposite —
// they join against the live user record. Keeping the snapshot as its own
// type makes the distinction visible at every use site.
type AuthorSnapshot struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ProfileImage string `json:"profileImage"`
}

// Like records one user's like on a post. A post's Likes slice is ordered by
// like time and contains at most one entry per user.
type Like struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// Comment is a single comment on a post, with its own author snapshot.
type Comment struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Author    AuthorSnapshot `json:"user"`
	Timestamp time.Time      `json:"timestamp"`
}

// Post is a feed entry: free text plus an optional uploaded image and an
// optional GitHub repository link.
type Post struct {
	ID         string         `json:"id"`
	Content    string         `json:"content"`
	ImageURL   string         `json:"imageUrl,omitempty"`
	GitHubRepo string         `json:"githubRepo,omitempty"`
	Likes      []Like         `json:"likes"`
	Comments   []Comment      `json:"comments"`
	Author     AuthorSnapshot `json:"user"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Snapshot captures a user's current display fields for embedding in a post
// or comment.
func (u *User) Snapshot() AuthorSnapshot {
	return AuthorSnapshot{
		ID:           u.ID,
		Name:         u.Name,
		ProfileImage: u.ProfileImage,
	}
}

// LikedBy reports whether the given user currently has a like on the post.
func (p *Post) LikedBy(userID string) bool {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}
