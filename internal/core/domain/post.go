package domain

import "time"

// Like records that a user liked a post. At most one per user per post.
type Like struct {
	ID   string `json:"_id"`
	User string `json:"user"`
}

// Comment is a reply attached to a post.
type Comment struct {
	ID        string    `json:"_id"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"date"`
}

// Post is a status update published by a user. Likes and comments are kept
// most-recent-first.
type Post struct {
	ID        string    `json:"_id"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Likes     []Like    `json:"likes"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"date"`
}

// LikedBy reports whether userID already has a like on the post.
func (p *Post) LikedBy(userID string) bool {
	for _, l := range p.Likes {
		if l.User == userID {
			return true
		}
	}
	return false
}

// Comment returns the comment with the given id, if present.
func (p *Post) Comment(id string) (*Comment, bool) {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i], true
		}
	}
	return nil, false
}
