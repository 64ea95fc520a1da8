package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerForkRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "fork-book",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/{id}/fork",
		Summary:       "Fork book",
		Description:   "Copies a forkable book into a new book owned by the requesting writer.",
		Tags:          []string{"Forks"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleForkBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-user-forked-books",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/forked-books",
		Summary:     "List forked books",
		Description: "Returns the books a user created by forking.",
		Tags:        []string{"Forks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUserForkedBooks)
}

// === DTOs ===

// ForkRecord describes the provenance of a fork.
type ForkRecord struct {
	ID             string    `json:"id" doc:"Fork record ID"`
	OriginalBookID string    `json:"original_book_id" doc:"Book that was forked"`
	ForkedByUserID string    `json:"forked_by_user_id" doc:"User who forked it"`
	ForkedBookID   string    `json:"forked_book_id" doc:"Resulting book ID"`
	DateForked     time.Time `json:"date_forked" doc:"When the fork happened"`
}

// ForkResponse pairs the new book with its provenance record.
type ForkResponse struct {
	Book BookResponse `json:"book" doc:"The new forked book"`
	Fork ForkRecord   `json:"fork" doc:"Provenance record"`
}

// ForkOutput wraps a fork response for Huma.
type ForkOutput struct {
	Body ForkResponse
}

// === Handlers ===

func (s *Server) handleForkBook(ctx context.Context, input *BookIDInput) (*ForkOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Fork.Fork(ctx, input.ID, user)
	if err != nil {
		return nil, err
	}

	return &ForkOutput{
		Body: ForkResponse{
			Book: mapBook(result.Book),
			Fork: ForkRecord{
				ID:             result.Fork.ID,
				OriginalBookID: result.Fork.OriginalBookID,
				ForkedByUserID: result.Fork.ForkedByUserID,
				ForkedBookID:   result.Fork.ForkedBookID,
				DateForked:     result.Fork.DateForked,
			},
		},
	}, nil
}

func (s *Server) handleListUserForkedBooks(ctx context.Context, input *struct {
	ID string `path:"id" doc:"User ID"`
}) (*BookListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	books, err := s.services.Fork.ListUserForkedBooks(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookListOutput{Body: BookListResponse{Items: mapBooks(books)}}, nil
}
