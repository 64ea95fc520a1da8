package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ebookhub/ebookhub-server/internal/domain"
	"github.com/ebookhub/ebookhub-server/internal/service"
)

func (s *Server) registerChapterRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-book-chapters",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/chapters",
		Summary:     "List chapters",
		Description: "Returns a book's chapters in reading order, capped at 20 unless a limit is given.",
		Tags:        []string{"Chapters"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBookChapters)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-chapter",
		Method:      http.MethodGet,
		Path:        "/api/v1/chapters/{id}",
		Summary:     "Get chapter",
		Tags:        []string{"Chapters"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetChapter)

	huma.Register(s.api, huma.Operation{
		OperationID:   "create-chapter",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/{id}/chapters",
		Summary:       "Append chapter",
		Description:   "Appends a chapter to a book. Publishing writer only.",
		Tags:          []string{"Chapters"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateChapter)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-chapter",
		Method:      http.MethodPut,
		Path:        "/api/v1/chapters/{id}",
		Summary:     "Update chapter",
		Description: "Replaces a chapter's title and content. Publishing writer only.",
		Tags:        []string{"Chapters"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateChapter)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-chapter",
		Method:      http.MethodDelete,
		Path:        "/api/v1/chapters/{id}",
		Summary:     "Delete chapter",
		Tags:        []string{"Chapters"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteChapter)
}

// === DTOs ===

// ChapterResponse is the public representation of a chapter.
type ChapterResponse struct {
	ID            string    `json:"id" doc:"Chapter ID"`
	BookID        string    `json:"book_id" doc:"Owning book ID"`
	Title         string    `json:"title" doc:"Chapter title"`
	Content       string    `json:"content" doc:"Chapter content (HTML)"`
	ChapterNumber int       `json:"chapter_number" doc:"Position in reading order, 1-based"`
	DatePublished time.Time `json:"date_published" doc:"Publication date"`
	UpdatedAt     time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// ChapterOutput wraps a single chapter for Huma.
type ChapterOutput struct {
	Body ChapterResponse
}

// ChapterListOutput wraps a chapter listing for Huma.
type ChapterListOutput struct {
	Body []ChapterResponse
}

// ListChaptersInput identifies a book and an optional page size.
type ListChaptersInput struct {
	ID    string `path:"id" doc:"Book ID"`
	Limit int    `query:"limit" minimum:"1" maximum:"500" doc:"Maximum chapters to return (default 20)"`
}

// ChapterIDInput identifies a chapter by path parameter.
type ChapterIDInput struct {
	ID string `path:"id" doc:"Chapter ID"`
}

// ChapterRequest contains chapter content for create and update calls.
type ChapterRequest struct {
	Title   string `json:"title" validate:"required,max=500" doc:"Chapter title"`
	Content string `json:"content" validate:"required" doc:"Chapter content (HTML)"`
}

// CreateChapterInput wraps a chapter creation request.
type CreateChapterInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body ChapterRequest
}

// UpdateChapterInput wraps a chapter update request.
type UpdateChapterInput struct {
	ID   string `path:"id" doc:"Chapter ID"`
	Body ChapterRequest
}

// === Handlers ===

func (s *Server) handleListBookChapters(ctx context.Context, input *ListChaptersInput) (*ChapterListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	chapters, err := s.services.Chapter.ListBookChapters(ctx, input.ID, input.Limit)
	if err != nil {
		return nil, err
	}

	return &ChapterListOutput{Body: mapChapters(chapters)}, nil
}

func (s *Server) handleGetChapter(ctx context.Context, input *ChapterIDInput) (*ChapterOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	chapter, err := s.services.Chapter.GetChapter(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ChapterOutput{Body: mapChapter(chapter)}, nil
}

func (s *Server) handleCreateChapter(ctx context.Context, input *CreateChapterInput) (*ChapterOutput, error) {
	user, err := s.RequireWriter(ctx)
	if err != nil {
		return nil, err
	}

	chapter, err := s.services.Chapter.CreateChapter(ctx, input.ID, user, service.ChapterRequest{
		Title:   input.Body.Title,
		Content: input.Body.Content,
	})
	if err != nil {
		return nil, err
	}

	return &ChapterOutput{Body: mapChapter(chapter)}, nil
}

func (s *Server) handleUpdateChapter(ctx context.Context, input *UpdateChapterInput) (*ChapterOutput, error) {
	user, err := s.RequireWriter(ctx)
	if err != nil {
		return nil, err
	}

	chapter, err := s.services.Chapter.UpdateChapter(ctx, input.ID, user, service.ChapterRequest{
		Title:   input.Body.Title,
		Content: input.Body.Content,
	})
	if err != nil {
		return nil, err
	}

	return &ChapterOutput{Body: mapChapter(chapter)}, nil
}

func (s *Server) handleDeleteChapter(ctx context.Context, input *ChapterIDInput) (*MessageOutput, error) {
	user, err := s.RequireWriter(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Chapter.DeleteChapter(ctx, input.ID, user); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Chapter deleted"}}, nil
}

// === Helpers ===

func mapChapter(chapter *domain.Chapter) ChapterResponse {
	return ChapterResponse{
		ID:            chapter.ID,
		BookID:        chapter.BookID,
		Title:         chapter.Title,
		Content:       chapter.Content,
		ChapterNumber: chapter.ChapterNumber,
		DatePublished: chapter.DatePublished,
		UpdatedAt:     chapter.UpdatedAt,
	}
}

func mapChapters(chapters []*domain.Chapter) []ChapterResponse {
	out := make([]ChapterResponse, 0, len(chapters))
	for _, chapter := range chapters {
		out = append(out, mapChapter(chapter))
	}
	return out
}
