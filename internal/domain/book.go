// Package domain contains the core business entities for the EbookHub platform.
package domain

import "time"

// Book represents a published e-book in the catalog.
type Book struct {
	Syncable
	Title         string    `json:"title"`
	AuthorID      string    `json:"author_id,omitempty"` // Optional: authorship may be absent
	PublisherID   string    `json:"publisher_id"`        // Owning user
	Description   string    `json:"description,omitempty"`
	GenreIDs      []string  `json:"genre_ids,omitempty"`
	CoverPath     string    `json:"cover_path,omitempty"`
	CoverBlurHash string    `json:"cover_blurhash,omitempty"`
	DatePublished time.Time `json:"date_published"`
	FormatID      string    `json:"format_id"`
	CanFork       bool      `json:"can_fork"`
	Ongoing       bool      `json:"ongoing"`
	Rating        *float64  `json:"rating,omitempty"` // Cached mean of all ratings, nil until rated
	FilePath      string    `json:"file_path,omitempty"`
	ChapterCount  int       `json:"chapter_count"`
}

// HasCover returns true if a cover asset has been stored for this book.
func (b *Book) HasCover() bool {
	return b.CoverPath != ""
}

// Chapter represents one extracted document entry of a book.
// Chapter numbers are contiguous starting at 1 and unique within a book.
type Chapter struct {
	Syncable
	BookID        string    `json:"book_id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	ChapterNumber int       `json:"chapter_number"`
	DatePublished time.Time `json:"date_published"` // Set at creation, immutable
}

// Fork records provenance linking an original book, the user who forked
// it, and the resulting new book. A fork result can never be forked again.
type Fork struct {
	Syncable
	OriginalBookID string    `json:"original_book_id"`
	ForkedByUserID string    `json:"forked_by_user_id"`
	ForkedBookID   string    `json:"forked_book_id"`
	DateForked     time.Time `json:"date_forked"`
}
