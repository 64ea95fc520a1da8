package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ebookhub/ebookhub-server/internal/service"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-author",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors/{id}",
		Summary:     "Get author",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-author-books",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors/{id}/books",
		Summary:     "List author books",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListAuthorBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-genre",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres/{id}",
		Summary:     "Get genre",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-catalog-names",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog",
		Summary:     "List catalog names",
		Description: "Returns the display names of all books, authors, or genres.",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCatalogNames)
}

// === DTOs ===

// AuthorResponse is the public representation of an author.
type AuthorResponse struct {
	ID        string    `json:"id" doc:"Author ID"`
	Name      string    `json:"name" doc:"Author name"`
	Bio       string    `json:"bio,omitempty" doc:"Author biography"`
	CreatedAt time.Time `json:"created_at" doc:"Creation timestamp"`
}

// AuthorOutput wraps an author for Huma.
type AuthorOutput struct {
	Body AuthorResponse
}

// GenreResponse is the public representation of a genre.
type GenreResponse struct {
	ID   string `json:"id" doc:"Genre ID"`
	Name string `json:"name" doc:"Title-cased genre name"`
}

// GenreOutput wraps a genre for Huma.
type GenreOutput struct {
	Body GenreResponse
}

// CatalogNamesInput selects which catalog names to list.
type CatalogNamesInput struct {
	Type string `query:"type" enum:"books,authors,genres" required:"true" doc:"Catalog entity type"`
}

// CatalogNamesOutput wraps a name listing for Huma.
type CatalogNamesOutput struct {
	Body []string
}

// === Handlers ===

func (s *Server) handleGetAuthor(ctx context.Context, input *struct {
	ID string `path:"id" doc:"Author ID"`
}) (*AuthorOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	author, err := s.services.Catalog.GetAuthor(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &AuthorOutput{
		Body: AuthorResponse{
			ID:        author.ID,
			Name:      author.Name,
			Bio:       author.Bio,
			CreatedAt: author.CreatedAt,
		},
	}, nil
}

func (s *Server) handleListAuthorBooks(ctx context.Context, input *struct {
	ID string `path:"id" doc:"Author ID"`
}) (*BookListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	books, err := s.services.Catalog.ListAuthorBooks(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookListOutput{Body: BookListResponse{Items: mapBooks(books)}}, nil
}

func (s *Server) handleGetGenre(ctx context.Context, input *struct {
	ID string `path:"id" doc:"Genre ID"`
}) (*GenreOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	genre, err := s.services.Catalog.GetGenre(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &GenreOutput{
		Body: GenreResponse{
			ID:   genre.ID,
			Name: genre.Name,
		},
	}, nil
}

func (s *Server) handleListCatalogNames(ctx context.Context, input *CatalogNamesInput) (*CatalogNamesOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	names, err := s.services.Catalog.ListNames(ctx, service.CatalogType(input.Type))
	if err != nil {
		return nil, err
	}

	return &CatalogNamesOutput{Body: names}, nil
}
