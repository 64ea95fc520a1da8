package domain

import "time"

// Reader interaction entities. Love, Bookmark, Rating, and CommentLike are
// unique per (user, target) pair; Comments are unbounded.

// Love marks that a user loves a book.
type Love struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Bookmark marks that a user bookmarked a book.
type Bookmark struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Rating is a user's 0-5 score for a book. Resubmitting overwrites the
// value in place; only UpdatedAt records that a change happened.
type Rating struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	Value     float64   `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comment is a user's comment on a book.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentLike marks that a user liked a comment.
type CommentLike struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CommentID string    `json:"comment_id"`
	BookID    string    `json:"book_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingMin and RatingMax bound valid rating submissions, inclusive.
const (
	RatingMin = 0.0
	RatingMax = 5.0
)

// ValidRating reports whether a rating value is within the allowed range.
func ValidRating(v float64) bool {
	return v >= RatingMin && v <= RatingMax
}
