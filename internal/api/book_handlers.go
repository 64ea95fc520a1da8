package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ebookhub/ebookhub-server/internal/domain"
	"github.com/ebookhub/ebookhub-server/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-books",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a cursor-paginated page of the catalog.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-book",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-book",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Removes a published book, its chapters, and reader interactions. Publisher only.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-publisher-books",
		Method:      http.MethodGet,
		Path:        "/api/v1/publishers/{id}",
		Summary:     "Get publisher catalog",
		Description: "Returns a publisher profile together with every book it published.",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPublisher)
}

// === DTOs ===

// BookResponse is the public representation of a book. The stored source
// file path never leaves the server.
type BookResponse struct {
	ID            string    `json:"id" doc:"Book ID"`
	Title         string    `json:"title" doc:"Title"`
	AuthorID      string    `json:"author_id,omitempty" doc:"Author ID"`
	PublisherID   string    `json:"publisher_id" doc:"Publishing user ID"`
	Description   string    `json:"description,omitempty" doc:"Description"`
	GenreIDs      []string  `json:"genre_ids,omitempty" doc:"Genre IDs"`
	HasCover      bool      `json:"has_cover" doc:"Whether a cover asset exists"`
	CoverBlurHash string    `json:"cover_blurhash,omitempty" doc:"BlurHash placeholder for the cover"`
	DatePublished time.Time `json:"date_published" doc:"Publication date"`
	FormatID      string    `json:"format_id" doc:"File format ID"`
	CanFork       bool      `json:"can_fork" doc:"Whether the book may be forked"`
	Ongoing       bool      `json:"ongoing" doc:"Whether the book is still being written"`
	Rating        *float64  `json:"rating,omitempty" doc:"Aggregate rating, absent until first rated"`
	ChapterCount  int       `json:"chapter_count" doc:"Number of chapters"`
	CreatedAt     time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt     time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

// BookListResponse is a cursor-paginated page of books.
type BookListResponse struct {
	Items      []BookResponse `json:"items" doc:"Books in this page"`
	NextCursor string         `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool           `json:"has_more" doc:"Whether more pages exist"`
}

// BookListOutput wraps a book page for Huma.
type BookListOutput struct {
	Body BookListResponse
}

// ListBooksInput carries pagination query parameters.
type ListBooksInput struct {
	Limit  int    `query:"limit" minimum:"1" maximum:"1000" doc:"Page size"`
	Cursor string `query:"cursor" doc:"Opaque pagination cursor"`
}

// BookIDInput identifies a book by path parameter.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// PublisherOutput wraps a publisher profile with its books.
type PublisherOutput struct {
	Body PublisherResponse
}

// PublisherResponse is a publisher profile with its published books.
type PublisherResponse struct {
	ID       string         `json:"id" doc:"User ID"`
	Username string         `json:"username" doc:"Username"`
	FullName string         `json:"full_name" doc:"Full name"`
	Role     string         `json:"role" doc:"Account role"`
	Books    []BookResponse `json:"books" doc:"Published books"`
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	params := store.PaginationParams{
		Limit:  input.Limit,
		Cursor: input.Cursor,
	}
	params.Validate()

	result, err := s.services.Book.ListBooks(ctx, params)
	if err != nil {
		return nil, err
	}

	return &BookListOutput{
		Body: BookListResponse{
			Items:      mapBooks(result.Items),
			NextCursor: result.NextCursor,
			HasMore:    result.HasMore,
		},
	}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Book.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBook(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*MessageOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Book.DeleteBook(ctx, input.ID, user); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

func (s *Server) handleGetPublisher(ctx context.Context, input *struct {
	ID string `path:"id" doc:"Publisher user ID"`
}) (*PublisherOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	publisher, err := s.services.Catalog.GetPublisher(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Book.ListPublisherBooks(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &PublisherOutput{
		Body: PublisherResponse{
			ID:       publisher.ID,
			Username: publisher.Username,
			FullName: publisher.FullName,
			Role:     string(publisher.Role),
			Books:    mapBooks(books),
		},
	}, nil
}

// === Helpers ===

func mapBook(book *domain.Book) BookResponse {
	return BookResponse{
		ID:            book.ID,
		Title:         book.Title,
		AuthorID:      book.AuthorID,
		PublisherID:   book.PublisherID,
		Description:   book.Description,
		GenreIDs:      book.GenreIDs,
		HasCover:      book.HasCover(),
		CoverBlurHash: book.CoverBlurHash,
		DatePublished: book.DatePublished,
		FormatID:      book.FormatID,
		CanFork:       book.CanFork,
		Ongoing:       book.Ongoing,
		Rating:        book.Rating,
		ChapterCount:  book.ChapterCount,
		CreatedAt:     book.CreatedAt,
		UpdatedAt:     book.UpdatedAt,
	}
}

func mapBooks(books []*domain.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for _, book := range books {
		out = append(out, mapBook(book))
	}
	return out
}
