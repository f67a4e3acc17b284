package entity

import "time"

// Blog is a link to a blog post with a like counter.
// UserID is empty for blogs created without an owner (seed data).
type Blog struct {
	ID        string
	Title     string
	Author    string
	URL       string
	Likes     int
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BlogPatch carries the fields of a partial update. Nil fields are left untouched.
type BlogPatch struct {
	Title  *string
	Author *string
	URL    *string
	Likes  *int
}

// Empty reports whether the patch would change nothing.
func (p BlogPatch) Empty() bool {
	return p.Title == nil && p.Author == nil && p.URL == nil && p.Likes == nil
}
