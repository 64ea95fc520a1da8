package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ebookhub/ebookhub-server/internal/domain"
	"github.com/ebookhub/ebookhub-server/internal/service"
)

func (s *Server) registerReaderRoutes() {
	// Loves
	huma.Register(s.api, huma.Operation{
		OperationID:   "love-book",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/{id}/loves",
		Summary:       "Love book",
		Tags:          []string{"Reader"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleLoveBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "unlove-book",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}/loves",
		Summary:     "Remove love",
		Tags:        []string{"Reader"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnloveBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-book-loves",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/loves",
		Summary:     "List book loves",
		Tags:        []string{"Reader"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBookLoves)

	// Bookmarks
	huma.Register(s.api, huma.Operation{
		OperationID:   "bookmark-book",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/{id}/bookmarks",
		Summary:       "Bookmark book",
		Tags:          []string{"Reader"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleBookmarkBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "unbookmark-book",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}/bookmarks",
		Summary:     "Remove bookmark",
		Tags:        []string{"Reader"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnbookmarkBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-book-bookmarks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/bookmarks",
		Summary:     "List book bookmarks",
		Tags:        []string{"Reader"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBookBookmarks)

	// Ratings
	huma.Register(s.api, huma.Operation{
		OperationID: "rate-book",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/ratings",
		Summary:     "Rate book",
		Description: "Submits a 0-5 rating. Resubmitting overwrites the previous value.",
		Tags:        []string{"Reader"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-book-ratings",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/ratings",
		Summary:     "List book ratings",
		Tags:        []string{"Reader"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBookRatings)

	// Comments
	huma.Register(s.api, huma.Operation{
		OperationID:   "comment-on-book",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/{id}/comments",
		Summary:       "Comment on book",
		Tags:          []string{"Reader"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCommentOnBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-book-comments",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/comments",
		Summary:     "List book comments",
		Tags:        []string{"Reader"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBookComments)

	// Comment likes
	huma.Register(s.api, huma.Operation{
		OperationID:   "like-comment",
		Method:        http.MethodPost,
		Path:          "/api/v1/comments/{id}/comment-likes",
		Summary:       "Like comment",
		Tags:          []string{"Reader"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleLikeComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-comment-likes",
		Method:      http.MethodGet,
		Path:        "/api/v1/comments/{id}/comment-likes",
		Summary:     "List comment likes",
		Tags:        []string{"Reader"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCommentLikes)

	// Per-user interaction listings
	huma.Register(s.api, huma.Operation{
		OperationID: "list-user-loved-books",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/loved-books",
		Summary:     "List loved books",
		Tags:        []string{"Reader"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUserLovedBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-user-bookmarked-books",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/bookmarked-books",
		Summary:     "List bookmarked books",
		Tags:        []string{"Reader"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUserBookmarkedBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-user-rated-books",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/rated-books",
		Summary:     "List rated books",
		Tags:        []string{"Reader"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUserRatedBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-user-commented-books",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/commented-books",
		Summary:     "List commented books",
		Tags:        []string{"Reader"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUserCommentedBooks)
}

// === DTOs ===

// InteractionResponse is the shared shape for loves and bookmarks.
type InteractionResponse struct {
	ID        string    `json:"id" doc:"Interaction ID"`
	UserID    string    `json:"user_id" doc:"User ID"`
	BookID    string    `json:"book_id" doc:"Book ID"`
	CreatedAt time.Time `json:"created_at" doc:"Creation timestamp"`
}

// InteractionOutput wraps a single interaction for Huma.
type InteractionOutput struct {
	Body InteractionResponse
}

// InteractionListOutput wraps an interaction listing for Huma.
type InteractionListOutput struct {
	Body []InteractionResponse
}

// RateBookInput wraps a rating submission.
type RateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body struct {
		Rating float64 `json:"rating" minimum:"0" maximum:"5" doc:"Rating value, 0 to 5"`
	}
}

// RatingResponse is a stored rating.
type RatingResponse struct {
	ID        string    `json:"id" doc:"Rating ID"`
	UserID    string    `json:"user_id" doc:"User ID"`
	BookID    string    `json:"book_id" doc:"Book ID"`
	Rating    float64   `json:"rating" doc:"Rating value"`
	CreatedAt time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// RateBookResponse pairs the stored rating with the book's new aggregate.
type RateBookResponse struct {
	Rating     RatingResponse `json:"rating" doc:"Stored rating"`
	BookRating float64        `json:"book_rating" doc:"Recomputed aggregate rating"`
}

// RateBookOutput wraps a rating submission result for Huma.
type RateBookOutput struct {
	Body RateBookResponse
}

// RatingListOutput wraps a rating listing for Huma.
type RatingListOutput struct {
	Body []RatingResponse
}

// CommentInput wraps a comment submission.
type CommentInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body struct {
		Content string `json:"content" validate:"required,max=4096" doc:"Comment text"`
	}
}

// CommentResponse is a stored comment.
type CommentResponse struct {
	ID        string    `json:"id" doc:"Comment ID"`
	UserID    string    `json:"user_id" doc:"User ID"`
	BookID    string    `json:"book_id" doc:"Book ID"`
	Content   string    `json:"content" doc:"Comment text"`
	CreatedAt time.Time `json:"created_at" doc:"Creation timestamp"`
}

// CommentOutput wraps a single comment for Huma.
type CommentOutput struct {
	Body CommentResponse
}

// CommentListOutput wraps a comment listing for Huma.
type CommentListOutput struct {
	Body []CommentResponse
}

// CommentLikeResponse is a stored comment like.
type CommentLikeResponse struct {
	ID        string    `json:"id" doc:"Like ID"`
	UserID    string    `json:"user_id" doc:"User ID"`
	CommentID string    `json:"comment_id" doc:"Comment ID"`
	BookID    string    `json:"book_id" doc:"Book the comment belongs to"`
	CreatedAt time.Time `json:"created_at" doc:"Creation timestamp"`
}

// CommentLikeOutput wraps a single comment like for Huma.
type CommentLikeOutput struct {
	Body CommentLikeResponse
}

// CommentLikeListOutput wraps a comment like listing for Huma.
type CommentLikeListOutput struct {
	Body []CommentLikeResponse
}

// UserIDInput identifies a user by path parameter.
type UserIDInput struct {
	ID string `path:"id" doc:"User ID"`
}

// === Handlers ===

func (s *Server) handleLoveBook(ctx context.Context, input *BookIDInput) (*InteractionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	love, err := s.services.Reader.LoveBook(ctx, input.ID, userID)
	if err != nil {
		return nil, err
	}

	return &InteractionOutput{Body: InteractionResponse{
		ID:        love.ID,
		UserID:    love.UserID,
		BookID:    love.BookID,
		CreatedAt: love.CreatedAt,
	}}, nil
}

func (s *Server) handleUnloveBook(ctx context.Context, input *BookIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Reader.UnloveBook(ctx, input.ID, userID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Love removed"}}, nil
}

func (s *Server) handleListBookLoves(ctx context.Context, input *BookIDInput) (*InteractionListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	loves, err := s.services.Reader.ListBookLoves(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	out := make([]InteractionResponse, 0, len(loves))
	for _, love := range loves {
		out = append(out, InteractionResponse{
			ID:        love.ID,
			UserID:    love.UserID,
			BookID:    love.BookID,
			CreatedAt: love.CreatedAt,
		})
	}
	return &InteractionListOutput{Body: out}, nil
}

func (s *Server) handleBookmarkBook(ctx context.Context, input *BookIDInput) (*InteractionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	bookmark, err := s.services.Reader.BookmarkBook(ctx, input.ID, userID)
	if err != nil {
		return nil, err
	}

	return &InteractionOutput{Body: InteractionResponse{
		ID:        bookmark.ID,
		UserID:    bookmark.UserID,
		BookID:    bookmark.BookID,
		CreatedAt: bookmark.CreatedAt,
	}}, nil
}

func (s *Server) handleUnbookmarkBook(ctx context.Context, input *BookIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Reader.UnbookmarkBook(ctx, input.ID, userID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Bookmark removed"}}, nil
}

func (s *Server) handleListBookBookmarks(ctx context.Context, input *BookIDInput) (*InteractionListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	bookmarks, err := s.services.Reader.ListBookBookmarks(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	out := make([]InteractionResponse, 0, len(bookmarks))
	for _, bookmark := range bookmarks {
		out = append(out, InteractionResponse{
			ID:        bookmark.ID,
			UserID:    bookmark.UserID,
			BookID:    bookmark.BookID,
			CreatedAt: bookmark.CreatedAt,
		})
	}
	return &InteractionListOutput{Body: out}, nil
}

func (s *Server) handleRateBook(ctx context.Context, input *RateBookInput) (*RateBookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	rating, book, err := s.services.Reader.RateBook(ctx, input.ID, userID, service.RateRequest{
		Rating: input.Body.Rating,
	})
	if err != nil {
		return nil, err
	}

	resp := RateBookResponse{Rating: mapRating(rating)}
	if book.Rating != nil {
		resp.BookRating = *book.Rating
	}
	return &RateBookOutput{Body: resp}, nil
}

func (s *Server) handleListBookRatings(ctx context.Context, input *BookIDInput) (*RatingListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	ratings, err := s.services.Reader.ListBookRatings(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	out := make([]RatingResponse, 0, len(ratings))
	for _, rating := range ratings {
		out = append(out, mapRating(rating))
	}
	return &RatingListOutput{Body: out}, nil
}

func (s *Server) handleCommentOnBook(ctx context.Context, input *CommentInput) (*CommentOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	comment, err := s.services.Reader.CommentOnBook(ctx, input.ID, userID, service.CommentRequest{
		Content: input.Body.Content,
	})
	if err != nil {
		return nil, err
	}

	return &CommentOutput{Body: mapComment(comment)}, nil
}

func (s *Server) handleListBookComments(ctx context.Context, input *BookIDInput) (*CommentListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	comments, err := s.services.Reader.ListBookComments(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	out := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		out = append(out, mapComment(comment))
	}
	return &CommentListOutput{Body: out}, nil
}

func (s *Server) handleLikeComment(ctx context.Context, input *struct {
	ID string `path:"id" doc:"Comment ID"`
}) (*CommentLikeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	like, err := s.services.Reader.LikeComment(ctx, input.ID, userID)
	if err != nil {
		return nil, err
	}

	return &CommentLikeOutput{Body: CommentLikeResponse{
		ID:        like.ID,
		UserID:    like.UserID,
		CommentID: like.CommentID,
		BookID:    like.BookID,
		CreatedAt: like.CreatedAt,
	}}, nil
}

func (s *Server) handleListCommentLikes(ctx context.Context, input *struct {
	ID string `path:"id" doc:"Comment ID"`
}) (*CommentLikeListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	likes, err := s.services.Reader.ListCommentLikes(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	out := make([]CommentLikeResponse, 0, len(likes))
	for _, like := range likes {
		out = append(out, CommentLikeResponse{
			ID:        like.ID,
			UserID:    like.UserID,
			CommentID: like.CommentID,
			BookID:    like.BookID,
			CreatedAt: like.CreatedAt,
		})
	}
	return &CommentLikeListOutput{Body: out}, nil
}

func (s *Server) handleListUserLovedBooks(ctx context.Context, input *UserIDInput) (*BookListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	books, err := s.services.Reader.ListUserLovedBooks(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: BookListResponse{Items: mapBooks(books)}}, nil
}

func (s *Server) handleListUserBookmarkedBooks(ctx context.Context, input *UserIDInput) (*BookListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	books, err := s.services.Reader.ListUserBookmarkedBooks(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: BookListResponse{Items: mapBooks(books)}}, nil
}

func (s *Server) handleListUserRatedBooks(ctx context.Context, input *UserIDInput) (*BookListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	books, err := s.services.Reader.ListUserRatedBooks(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: BookListResponse{Items: mapBooks(books)}}, nil
}

func (s *Server) handleListUserCommentedBooks(ctx context.Context, input *UserIDInput) (*BookListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	books, err := s.services.Reader.ListUserCommentedBooks(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: BookListResponse{Items: mapBooks(books)}}, nil
}

// === Helpers ===

func mapRating(rating *domain.Rating) RatingResponse {
	return RatingResponse{
		ID:        rating.ID,
		UserID:    rating.UserID,
		BookID:    rating.BookID,
		Rating:    rating.Value,
		CreatedAt: rating.CreatedAt,
		UpdatedAt: rating.UpdatedAt,
	}
}

func mapComment(comment *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		UserID:    comment.UserID,
		BookID:    comment.BookID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}
