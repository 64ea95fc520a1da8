package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/ebookhub/ebookhub-server/internal/errors"
	"github.com/ebookhub/ebookhub-server/internal/http/response"
	"github.com/ebookhub/ebookhub-server/internal/service"
)

// handleUploadBook handles new book uploads.
// POST /api/v1/books/upload
// Content-Type: multipart/form-data with "file", optional "cover_image",
// and metadata fields: title, author, genre, description, can_fork, ongoing.
func (s *Server) handleUploadBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := GetUserID(ctx)
	if err != nil {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		response.Unauthorized(w, "User not found", s.logger)
		return
	}
	if !user.IsWriter() {
		response.Forbidden(w, "Writer role required", s.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize+s.maxCoverSize)
	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		response.BadRequest(w, "Failed to parse form data", s.logger)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "No file uploaded. Use 'file' field in multipart form", s.logger)
		return
	}
	defer file.Close()

	if header.Size > s.maxUploadSize {
		response.BadRequest(w, fmt.Sprintf("File too large. Maximum size is %d bytes", s.maxUploadSize), s.logger)
		return
	}

	epubData, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("Failed to read uploaded file", "error", err)
		response.InternalError(w, "Failed to read uploaded file", s.logger)
		return
	}

	var coverData []byte
	if coverFile, coverHeader, err := r.FormFile("cover_image"); err == nil {
		defer coverFile.Close()
		if coverHeader.Size > s.maxCoverSize {
			response.BadRequest(w, fmt.Sprintf("Cover too large. Maximum size is %d bytes", s.maxCoverSize), s.logger)
			return
		}
		coverData, err = io.ReadAll(coverFile)
		if err != nil {
			s.logger.Error("Failed to read cover image", "error", err)
			response.InternalError(w, "Failed to read cover image", s.logger)
			return
		}
	}

	req := service.IngestRequest{
		Title:       r.FormValue("title"),
		AuthorName:  r.FormValue("author"),
		Genres:      r.FormValue("genre"),
		Description: r.FormValue("description"),
		PublisherID: userID,
		CanFork:     parseFormBool(r.FormValue("can_fork")),
		Ongoing:     parseFormBool(r.FormValue("ongoing")),
		EPUB:        epubData,
		Cover:       coverData,
	}

	book, err := s.services.Ingest.Ingest(ctx, req)
	if err != nil {
		// Extraction failures leave the book behind without chapters, so
		// report the partial result instead of a generic error.
		var domainErr *domainerrors.Error
		if errors.As(err, &domainErr) && domainErr.Code == domainerrors.CodeExtraction && book != nil {
			s.logger.Error("Chapter extraction failed after book creation",
				"book_id", book.ID, "error", err)
			response.Error(w, http.StatusInternalServerError,
				"Book was created but chapter extraction failed: "+domainErr.Message, s.logger)
			return
		}
		response.HandleError(w, err, s.logger)
		return
	}

	s.logger.Info("Book uploaded",
		"book_id", book.ID,
		"title", book.Title,
		"publisher_id", userID,
		"size", header.Size,
	)

	response.Created(w, mapBook(book), s.logger)
}

// handleGetCover serves a book's stored cover image.
// GET /api/v1/books/{id}/cover
func (s *Server) handleGetCover(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")
	if bookID == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	data, err := s.services.Book.GetCover(r.Context(), bookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.Write(data)
}

func parseFormBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}
