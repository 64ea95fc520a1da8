package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ebookhub/ebookhub-server/internal/domain"
	domainerrors "github.com/ebookhub/ebookhub-server/internal/errors"
	"github.com/ebookhub/ebookhub-server/internal/extract"
	"github.com/ebookhub/ebookhub-server/internal/id"
	"github.com/ebookhub/ebookhub-server/internal/media/images"
	"github.com/ebookhub/ebookhub-server/internal/store"
)

// IngestService runs the EPUB ingestion pipeline: reference resolution,
// book creation, media storage, and chapter extraction.
type IngestService struct {
	store   *store.Store
	covers  *images.Storage
	sources *images.Storage
	logger  *slog.Logger
}

// NewIngestService creates a new ingestion service.
func NewIngestService(
	store *store.Store,
	covers *images.Storage,
	sources *images.Storage,
	logger *slog.Logger,
) *IngestService {
	return &IngestService{
		store:   store,
		covers:  covers,
		sources: sources,
		logger:  logger,
	}
}

// IngestRequest contains an uploaded book and its descriptive metadata.
// Genres is a whitespace-separated list of genre tags.
type IngestRequest struct {
	Title       string `json:"title" validate:"required"`
	AuthorName  string `json:"author" validate:"required"`
	Genres      string `json:"genre" validate:"required"`
	Description string `json:"description" validate:"required"`
	PublisherID string `json:"publisher_id" validate:"required"`
	CanFork     bool   `json:"can_fork"`
	Ongoing     bool   `json:"ongoing"`
	EPUB        []byte `json:"-"`
	Cover       []byte `json:"-"` // Optional cover image
}

// Ingest validates the request, resolves author/genre/format references,
// creates the book with its media assets, and extracts chapters from the
// EPUB in spine order.
//
// Extraction runs after the book row is written. If the archive turns out
// to be unreadable partway through, the book and any chapters persisted so
// far remain, and the extraction error is returned for the caller to
// surface.
func (s *IngestService) Ingest(ctx context.Context, req IngestRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if len(req.EPUB) == 0 {
		return nil, domainerrors.Validation("file is required")
	}

	publisher, err := s.store.GetUser(ctx, req.PublisherID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("publisher not found")
		}
		return nil, fmt.Errorf("lookup publisher: %w", err)
	}

	author, err := s.resolveAuthor(ctx, req.AuthorName)
	if err != nil {
		return nil, err
	}

	genreIDs, err := s.resolveGenres(ctx, req.Genres)
	if err != nil {
		return nil, err
	}

	format, err := s.resolveFormat(ctx)
	if err != nil {
		return nil, err
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		Syncable: domain.Syncable{
			ID: bookID,
		},
		Title:         strings.TrimSpace(req.Title),
		AuthorID:      author.ID,
		PublisherID:   publisher.ID,
		Description:   req.Description,
		GenreIDs:      genreIDs,
		DatePublished: time.Now(),
		FormatID:      format.ID,
		CanFork:       req.CanFork,
		Ongoing:       req.Ongoing,
	}
	book.InitTimestamps()

	if err := s.sources.Save(bookID, req.EPUB); err != nil {
		return nil, fmt.Errorf("save source file: %w", err)
	}
	book.FilePath = s.sources.Path(bookID)

	if len(req.Cover) > 0 {
		if err := s.attachCover(book, req.Cover); err != nil {
			return nil, err
		}
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	if err := s.extractChapters(ctx, book, req.EPUB); err != nil {
		if s.logger != nil {
			s.logger.Error("Chapter extraction failed",
				"book_id", bookID,
				"error", err,
			)
		}
		// The book row already exists. Return it alongside the error so
		// callers can surface the partial result.
		return book, err
	}

	if s.logger != nil {
		s.logger.Info("Book ingested",
			"book_id", bookID,
			"title", book.Title,
			"chapters", book.ChapterCount,
		)
	}

	return book, nil
}

// resolveAuthor looks up an author by exact name, creating the record if
// no author with that name exists yet.
func (s *IngestService) resolveAuthor(ctx context.Context, name string) (*domain.Author, error) {
	name = strings.TrimSpace(name)

	author, err := s.store.Authors.GetByIndex(ctx, "name", name)
	if err == nil {
		return author, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup author: %w", err)
	}

	authorID, err := id.Generate("author")
	if err != nil {
		return nil, fmt.Errorf("generate author ID: %w", err)
	}

	author = &domain.Author{
		Syncable: domain.Syncable{
			ID: authorID,
		},
		Name: name,
	}
	author.InitTimestamps()

	if err := s.store.Authors.Create(ctx, authorID, author); err != nil {
		return nil, fmt.Errorf("create author: %w", err)
	}
	return author, nil
}

// resolveGenres splits a whitespace-separated tag list, canonicalizes each
// tag to title case, and looks up or creates the genre records.
func (s *IngestService) resolveGenres(ctx context.Context, tags string) ([]string, error) {
	caser := cases.Title(language.Und)

	var genreIDs []string
	seen := make(map[string]bool)
	for _, tag := range strings.Fields(tags) {
		name := titleCaseTag(caser, tag)
		if seen[name] {
			continue
		}
		seen[name] = true

		genre, err := s.store.Genres.GetByIndex(ctx, "name", name)
		if errors.Is(err, store.ErrNotFound) {
			genre, err = s.createGenre(ctx, name)
		}
		if err != nil {
			return nil, fmt.Errorf("resolve genre %q: %w", name, err)
		}
		genreIDs = append(genreIDs, genre.ID)
	}

	if len(genreIDs) == 0 {
		return nil, domainerrors.Validation("genre must contain at least one tag")
	}
	return genreIDs, nil
}

// titleCaseTag title-cases every underscore-separated segment of a tag, so
// "science_fiction" canonicalizes to "Science_Fiction".
func titleCaseTag(caser cases.Caser, tag string) string {
	parts := strings.Split(strings.ToLower(tag), "_")
	for i, part := range parts {
		parts[i] = caser.String(part)
	}
	return strings.Join(parts, "_")
}

func (s *IngestService) createGenre(ctx context.Context, name string) (*domain.Genre, error) {
	genreID, err := id.Generate("genre")
	if err != nil {
		return nil, fmt.Errorf("generate genre ID: %w", err)
	}

	genre := &domain.Genre{
		Syncable: domain.Syncable{
			ID: genreID,
		},
		Name: name,
	}
	genre.InitTimestamps()

	if err := s.store.Genres.Create(ctx, genreID, genre); err != nil {
		return nil, err
	}
	return genre, nil
}

// resolveFormat returns the default EPUB format record, creating it on
// first use.
func (s *IngestService) resolveFormat(ctx context.Context) (*domain.Format, error) {
	format, err := s.store.Formats.GetByIndex(ctx, "name", domain.FormatEPUB)
	if err == nil {
		return format, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup format: %w", err)
	}

	formatID, err := id.Generate("format")
	if err != nil {
		return nil, fmt.Errorf("generate format ID: %w", err)
	}

	format = &domain.Format{
		Syncable: domain.Syncable{
			ID: formatID,
		},
		Name: domain.FormatEPUB,
	}
	format.InitTimestamps()

	if err := s.store.Formats.Create(ctx, formatID, format); err != nil {
		return nil, fmt.Errorf("create format: %w", err)
	}
	return format, nil
}

// attachCover stores the cover image and computes its blurhash placeholder.
// A cover that cannot be decoded fails the upload before any book write.
func (s *IngestService) attachCover(book *domain.Book, data []byte) error {
	hash, err := images.ComputeBlurHash(data)
	if err != nil {
		return domainerrors.Validation("cover_image is not a supported image format").WithCause(err)
	}

	if err := s.covers.Save(book.ID, data); err != nil {
		return fmt.Errorf("save cover: %w", err)
	}

	book.CoverPath = s.covers.Path(book.ID)
	book.CoverBlurHash = hash
	return nil
}

// extractChapters walks the EPUB spine and persists one chapter per
// document entry, numbering from 1 in traversal order. The book's chapter
// count is updated after a full traversal.
func (s *IngestService) extractChapters(ctx context.Context, book *domain.Book, data []byte) error {
	entries, err := extract.Extract(data)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		chapterID, err := id.Generate("chapter")
		if err != nil {
			return fmt.Errorf("generate chapter ID: %w", err)
		}

		chapter := &domain.Chapter{
			Syncable: domain.Syncable{
				ID: chapterID,
			},
			BookID:        book.ID,
			Title:         entry.Title,
			Content:       entry.Content,
			ChapterNumber: entry.Number,
			DatePublished: time.Now(),
		}
		chapter.InitTimestamps()

		if err := s.store.CreateChapter(ctx, chapter); err != nil {
			return fmt.Errorf("create chapter %d: %w", entry.Number, err)
		}
	}

	book.ChapterCount = len(entries)
	book.Touch()
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return fmt.Errorf("update chapter count: %w", err)
	}
	return nil
}
